package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/sbx/internal/config"
	"github.com/mmcdole/sbx/internal/domain"
	"github.com/mmcdole/sbx/internal/slicebox"
	"github.com/mmcdole/sbx/internal/tui"
	"github.com/mmcdole/sbx/internal/tui/styles"
	"github.com/spf13/cobra"
)

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

// eventBuffer is how many service events may queue before the UI drains them
const eventBuffer = 64

func runTUI(cmd *cobra.Command, e *env) error {
	if !e.cfg.IsConfigured() {
		if err := runSetupFlow(cmd, e); err != nil {
			return err
		}
	}

	a, err := e.open()
	if err != nil {
		return err
	}

	sink := tui.NewEventSink(eventBuffer)
	model := tui.NewModel(a.Services(sink), sink, tui.Options{
		ServerURL:      e.cfg.Server.URL,
		Username:       e.cfg.Server.Username,
		OutboxInterval: e.cfg.Poll.OutboxInterval,
		BoxesInterval:  e.cfg.Poll.BoxesInterval,
		InfoTimeout:    e.cfg.Notify.InfoTimeout,
		ErrorTimeout:   e.cfg.Notify.ErrorTimeout,
	}, e.logger)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
	)

	e.logger.Info("starting TUI")

	final, err := p.Run()
	if m, ok := final.(tui.Model); ok {
		m.Shutdown()
	} else {
		model.Shutdown()
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		e.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	e.logger.Info("shutting down")
	return nil
}

// runSetupFlow asks for the node URL until one answers, then saves it
func runSetupFlow(cmd *cobra.Command, e *env) error {
	out := cmd.OutOrStdout()
	r := e.reader(cmd)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Welcome to sbx!")
	fmt.Fprintln(out)

	var serverURL string
	for {
		fmt.Fprint(out, "Enter your Slicebox URL (e.g., http://localhost:5000): ")
		input, err := r.ReadString('\n')
		if err != nil && input == "" {
			return fmt.Errorf("failed to read input: %w", err)
		}
		serverURL = strings.TrimSpace(input)

		if serverURL == "" {
			fmt.Fprintln(out, "Server URL cannot be empty. Please try again.")
			continue
		}

		fmt.Fprintln(out)
		if err := checkServerWithSpinner(cmd.Context(), out, serverURL, e.logger); err != nil {
			fmt.Fprintf(out, "\n✗ Could not reach the node: %v\n", err)
			fmt.Fprintln(out, "Please check the URL and try again.")
			fmt.Fprintln(out)
			continue
		}
		break
	}

	e.cfg.Server.URL = serverURL
	if err := config.SaveConfig(e.cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "✓ Configuration saved!")
	return nil
}

// checkServerWithSpinner contacts the node behind a visual spinner. An auth
// failure still proves a Slicebox node answered.
func checkServerWithSpinner(ctx context.Context, out io.Writer, serverURL string, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := slicebox.NewClient(serverURL, logger)
	if err != nil {
		return err
	}

	resultCh := make(chan error, 1)
	go func() {
		_, err := client.GetCurrentUser(ctx)
		if errors.Is(err, domain.ErrAuthFailed) {
			err = nil
		}
		resultCh <- err
	}()

	frame := 0
	fmt.Fprintf(out, "\r%s Contacting node...", styles.SpinnerFrames[frame])

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case err := <-resultCh:
			fmt.Fprint(out, clearSpinnerLine)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Found Slicebox at %s\n", client.BaseURL())
			return nil

		case <-ticker.C:
			frame++
			fmt.Fprintf(out, "\r%s Contacting node...", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])

		case <-ctx.Done():
			fmt.Fprint(out, clearSpinnerLine)
			return fmt.Errorf("timed out")
		}
	}
}
