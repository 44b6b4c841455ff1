package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mmcdole/sbx/internal/app"
	"github.com/mmcdole/sbx/internal/config"
	"github.com/mmcdole/sbx/internal/domain"
	"github.com/mmcdole/sbx/internal/log"
	"github.com/spf13/cobra"
)

// env is the state shared by the commands of one invocation
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer
	app    *app.App
	in     *bufio.Reader

	server string
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:   "sbx",
		Short: "Terminal console for a Slicebox node",
		Long: `sbx manages a Slicebox node from the terminal.

Run without a command to open the interactive console. The commands below
do the same work from scripts.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, e)
		},
	}

	root.PersistentFlags().StringVar(&e.server, "server", "", "Slicebox node URL, overrides the config file")

	root.AddCommand(
		newLoginCmd(e),
		newLogoutCmd(e),
		newWhoamiCmd(e),
		newBoxesCmd(e),
		newOutboxCmd(e),
		newSeriesCmd(e),
		newTagCmd(e),
		newImagesCmd(e),
	)
	return root
}

// load reads the configuration and sets up logging
func (e *env) load() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if e.server != "" {
		cfg.Server.URL = e.server
	}

	logger, closer, err := log.Setup(cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	} else {
		e.closer = closer
	}
	slog.SetDefault(logger)

	e.cfg = cfg
	e.logger = logger
	logger.Info("starting sbx", "version", Version, "server", cfg.Server.URL)
	return nil
}

// open connects to the configured node once per invocation
func (e *env) open() (*app.App, error) {
	if e.app != nil {
		return e.app, nil
	}
	a, err := app.Open(e.cfg, e.logger)
	if errors.Is(err, domain.ErrNotConfigured) {
		return nil, errors.New("no Slicebox node configured, run sbx to set one up or pass --server")
	}
	if err != nil {
		return nil, err
	}
	e.app = a
	return a, nil
}

// services opens the node and reports outcomes on the command's output
func (e *env) services(cmd *cobra.Command) (app.Services, error) {
	a, err := e.open()
	if err != nil {
		return app.Services{}, err
	}
	return a.Services(printer{out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}), nil
}

// reader returns the buffered stdin shared by every prompt
func (e *env) reader(cmd *cobra.Command) *bufio.Reader {
	if e.in == nil {
		e.in = bufio.NewReader(cmd.InOrStdin())
	}
	return e.in
}

func (e *env) close() {
	if e.app != nil {
		if err := e.app.Close(); err != nil && e.logger != nil {
			e.logger.Warn("failed to close session store", "error", err)
		}
	}
	if e.closer != nil {
		e.closer.Close()
	}
}
