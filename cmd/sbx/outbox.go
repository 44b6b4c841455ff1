package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/mmcdole/sbx/internal/domain"
	"github.com/mmcdole/sbx/internal/outbox"
	"github.com/mmcdole/sbx/internal/poll"
	"github.com/mmcdole/sbx/internal/tui/styles"
	"github.com/spf13/cobra"
)

// clearScreen moves the cursor home and clears the terminal
const clearScreen = "\033[H\033[2J"

func newOutboxCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "Monitor outgoing transfers",
	}
	cmd.AddCommand(newOutboxListCmd(e), newOutboxDeleteCmd(e))
	return cmd
}

func newOutboxListCmd(e *env) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List outbox transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := e.services(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if !watch {
				groups, err := svc.Outbox.Groups(ctx)
				if err != nil {
					return nodeError(err)
				}
				fmt.Fprintln(out, renderGroups(groups))
				return nil
			}
			return watchOutbox(ctx, out, svc.Outbox, e)
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep refreshing until interrupted")
	return cmd
}

// watchOutbox redraws the outbox every poll interval until ctx is done
func watchOutbox(ctx context.Context, out io.Writer, svc *outbox.Service, e *env) error {
	var (
		mu      sync.Mutex
		stopped bool
	)
	render := func() {
		groups, err := svc.Groups(ctx)

		mu.Lock()
		defer mu.Unlock()
		if stopped || ctx.Err() != nil {
			return
		}
		fmt.Fprint(out, clearScreen)
		if err != nil {
			fmt.Fprintln(out, styles.ErrorStyle.Render(domain.ErrorPayload(err)))
			return
		}
		fmt.Fprintln(out, renderGroups(groups))
	}

	render()
	ctrl := poll.NewController("outbox", e.cfg.Poll.OutboxInterval, render, nil, e.logger)
	ctrl.Start()
	<-ctx.Done()
	ctrl.Stop()

	mu.Lock()
	stopped = true
	mu.Unlock()
	return nil
}

func renderGroups(groups []domain.TransactionGroup) string {
	if len(groups) == 0 {
		return "Outbox is empty"
	}
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		status := "sending"
		if g.Failed {
			status = "failed"
		}
		rows = append(rows, []string{
			formatID(g.TransactionID),
			g.RemoteBoxName,
			fmt.Sprintf("%d of %d", g.ImagesLeft, g.TotalImageCount),
			status,
		})
	}
	return renderTable([]string{"Transaction", "Box", "Remaining", "Status"}, rows)
}

func newOutboxDeleteCmd(e *env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete TRANSACTION...",
		Short: "Delete every entry of the given transactions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			svc, err := e.services(cmd)
			if err != nil {
				return err
			}
			groups, err := svc.Outbox.Groups(cmd.Context())
			if err != nil {
				return nodeError(err)
			}
			selected, err := pick(groups, ids, func(g domain.TransactionGroup) int64 { return g.TransactionID }, "outbox transaction")
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			onError := func(payload string) {
				fmt.Fprintln(cmd.ErrOrStderr(), styles.ErrorStyle.Render("✗")+" "+payload)
			}
			opener := prompter{in: e.reader(cmd), out: out, yes: yes}
			err = svc.Outbox.Delete(cmd.Context(), selected, opener, nil, onError)
			if err == nil {
				fmt.Fprintf(out, "%d transaction(s) deleted\n", len(selected))
			}
			return bulkResult(out, err)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
