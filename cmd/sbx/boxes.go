package main

import (
	"fmt"
	"strings"

	"github.com/mmcdole/sbx/internal/boxes"
	"github.com/mmcdole/sbx/internal/domain"
	"github.com/mmcdole/sbx/internal/tui/styles"
	"github.com/spf13/cobra"
)

func newBoxesCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boxes",
		Short: "Manage box pairings",
	}
	cmd.AddCommand(
		newBoxesListCmd(e),
		newBoxesAddCmd(e),
		newBoxesGenerateURLCmd(e),
		newBoxesConnectCmd(e),
		newBoxesDeleteCmd(e),
	)
	return cmd
}

func newBoxesListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List paired boxes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := e.services(cmd)
			if err != nil {
				return err
			}
			list, err := svc.Boxes.List(cmd.Context())
			if err != nil {
				return nodeError(err)
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No boxes")
				return nil
			}

			rows := make([][]string, 0, len(list))
			for _, b := range list {
				status := "offline"
				if b.Online {
					status = "online"
				}
				rows = append(rows, []string{formatID(b.ID), b.Name, b.FormattedSendMethod(), status, b.BaseURL})
			}
			fmt.Fprintln(out, renderTable([]string{"ID", "Name", "Method", "Status", "Base URL"}, rows))
			return nil
		},
	}
}

func newBoxesAddCmd(e *env) *cobra.Command {
	var box domain.Box
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a box entity as-is",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := e.services(cmd)
			if err != nil {
				return err
			}
			box.SendMethod = strings.ToUpper(box.SendMethod)
			if err := svc.Boxes.Add(cmd.Context(), box, nil); err != nil {
				return reportedError{err}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&box.Name, "name", "", "box name")
	cmd.Flags().StringVar(&box.BaseURL, "base-url", "", "base URL of the remote box")
	cmd.Flags().StringVar(&box.SendMethod, "send-method", "PUSH", "PUSH or POLL")
	cmd.Flags().StringVar(&box.Token, "token", "", "pairing token")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newBoxesGenerateURLCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "generate-url NAME",
		Short: "Create a pending box and print the URL the remote side connects with",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := e.services(cmd)
			if err != nil {
				return err
			}
			baseURL, err := svc.Boxes.GenerateBaseURL(cmd.Context(), args[0])
			if err != nil {
				return nodeError(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, baseURL)
			fmt.Fprintln(out)
			fmt.Fprintln(out, styles.DimStyle.Render("Send this URL to the operator of "+strings.TrimSpace(args[0])+":"))
			fmt.Fprintln(out, styles.DimStyle.Render(boxes.MailtoLink(baseURL)))
			return nil
		},
	}
}

func newBoxesConnectCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "connect NAME URL",
		Short: "Pair with a remote box using the URL it generated",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := e.services(cmd)
			if err != nil {
				return err
			}
			box, err := svc.Boxes.Connect(cmd.Context(), args[0], args[1])
			if err != nil {
				return nodeError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Connected to %s (id %d)\n", box.Name, box.ID)
			return nil
		},
	}
}

func newBoxesDeleteCmd(e *env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete boxes",
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
			list, err := svc.Boxes.List(cmd.Context())
			if err != nil {
				return nodeError(err)
			}
			selected, err := pick(list, ids, func(b domain.Box) int64 { return b.ID }, "box")
			if err != nil {
				return err
			}

			opener := prompter{in: e.reader(cmd), out: cmd.OutOrStdout(), yes: yes}
			return bulkResult(cmd.OutOrStdout(), svc.Boxes.Delete(cmd.Context(), selected, opener, nil))
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// pick returns the items matching ids, in the order of ids
func pick[T any](items []T, ids []int64, key func(T) int64, noun string) ([]T, error) {
	byID := make(map[int64]T, len(items))
	for _, item := range items {
		byID[key(item)] = item
	}
	picked := make([]T, 0, len(ids))
	for _, id := range ids {
		item, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("no %s with id %d", noun, id)
		}
		picked = append(picked, item)
	}
	return picked, nil
}
