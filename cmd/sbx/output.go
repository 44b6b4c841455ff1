package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mmcdole/sbx/internal/dialog"
	"github.com/mmcdole/sbx/internal/domain"
	"github.com/mmcdole/sbx/internal/slicebox"
	"github.com/mmcdole/sbx/internal/tui/styles"
)

// printer reports service notifications as terminal lines
type printer struct {
	out    io.Writer
	errOut io.Writer
}

func (p printer) Info(message string) {
	fmt.Fprintln(p.out, styles.SuccessStyle.Render("✓")+" "+message)
}

func (p printer) Error(message string) {
	fmt.Fprintln(p.errOut, styles.ErrorStyle.Render("✗")+" "+message)
}

// prompter answers confirmation dialogs on the terminal
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	yes bool
}

func (p prompter) OpenConfirm(c dialog.Confirm) *dialog.Handle[struct{}] {
	if p.yes {
		return dialog.AutoConfirm.OpenConfirm(c)
	}

	h := dialog.NewHandle[struct{}]()
	fmt.Fprintf(p.out, "%s\n%s [y/N]: ", styles.TitleStyle.Render(c.Title), c.Message)
	line, _ := p.in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		h.Confirm(struct{}{})
	default:
		h.Close()
	}
	return h
}

// bulkResult turns a bulk pipeline error into the command's result. A
// declined prompt is not a failure.
func bulkResult(out io.Writer, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, dialog.ErrCancelled):
		fmt.Fprintln(out, styles.DimStyle.Render("Cancelled."))
		return nil
	default:
		return reportedError{err}
	}
}

// nodeError is the message shown for a failed node request. An unreachable
// node keeps its error chain so execute can suggest --server.
func nodeError(err error) error {
	if slicebox.IsOffline(err) {
		return err
	}
	return errors.New(domain.ErrorPayload(err))
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(styles.Teal).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// renderTable lays rows out under headers
func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.DimGray)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	return t.Render()
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// parseIDs converts positional arguments to entity ids
func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
