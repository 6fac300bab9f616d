// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/vxbase/vxtask/internal/config"
	"github.com/vxbase/vxtask/internal/runtime"
	"github.com/vxbase/vxtask/internal/tasks"

	"github.com/charmbracelet/log"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root
	// for the CLI layer; every Cobra handler receives an App reference.
	App struct {
		Config   ConfigProvider
		Tasks    *tasks.Registry
		Runtimes *runtime.Registry
		stdin    io.Reader
		stdout   io.Writer
		stderr   io.Writer
		getenv   func(string) string
		flags    rootFlags
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config   ConfigProvider
		Tasks    *tasks.Registry
		Runtimes *runtime.Registry
		Stdin    io.Reader
		Stdout   io.Writer
		Stderr   io.Writer
		Getenv   func(string) string
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// rootFlags holds the persistent flags shared by every subcommand.
	rootFlags struct {
		configFile string
		workDir    string
		runtime    string
		dryRun     bool
		echo       bool
		verbose    bool
	}
)

// NewApp builds an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:   deps.Config,
		Tasks:    deps.Tasks,
		Runtimes: deps.Runtimes,
		stdin:    deps.Stdin,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
		getenv:   deps.Getenv,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Tasks == nil {
		app.Tasks = tasks.NewDefaultRegistry()
	}
	if app.Runtimes == nil {
		app.Runtimes = runtime.NewDefaultRegistry()
	}
	if app.stdin == nil {
		app.stdin = os.Stdin
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	if app.getenv == nil {
		app.getenv = os.Getenv
	}
	return app
}

// workDir returns the absolute directory tasks run in.
func (a *App) workDir() (string, error) {
	dir := a.flags.workDir
	if dir == "" {
		return os.Getwd()
	}
	return filepath.Abs(dir)
}

// loadConfig loads the configuration for the current flags.
func (a *App) loadConfig(ctx context.Context) (*config.Config, string, error) {
	workDir, err := a.workDir()
	if err != nil {
		return nil, "", err
	}

	cfg, err := a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: a.flags.configFile,
		WorkDir:        workDir,
	})
	if err != nil {
		return nil, workDir, err
	}
	return cfg, workDir, nil
}

// newLogger creates the stderr logger; verbose lowers the level to debug.
func (a *App) newLogger(verbose bool) *log.Logger {
	logger := log.NewWithOptions(a.stderr, log.Options{
		Prefix: "vxtask",
		Level:  log.InfoLevel,
	})
	if verbose || a.flags.verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
