package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vzahanych/nimbus/internal/dispatcher"
)

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Look up cities interactively",
		Long:  `Reads one city per line and prints its weather. A newer search supersedes any still in flight. Type quit or exit to leave.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session := dispatcher.NewSession(application.Dispatcher, log, metrics)
			return runShell(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), session)
		},
	}
}

const emptyCityPrompt = "Please enter a city name."

// runShell is the foreground loop. Input is read on its own goroutine so
// results can be rendered while the user types; only the latest search is
// ever rendered.
func runShell(ctx context.Context, in io.Reader, out io.Writer, session *dispatcher.Session) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer session.Close()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	pending := 0
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				if pending == 0 {
					return nil
				}
				lines = nil
				continue
			}

			query := strings.TrimSpace(line)
			switch strings.ToLower(query) {
			case "quit", "exit":
				return nil
			case "":
				fmt.Fprintln(out, emptyCityPrompt)
				continue
			}

			fmt.Fprintf(out, "Fetching weather for %s...\n", query)
			session.Search(ctx, query)
			pending++

		case res := <-session.Results():
			pending--
			if session.Accept(res) {
				renderResult(out, res)
			}
			if lines == nil && pending == 0 {
				return nil
			}

		case <-ctx.Done():
			return nil
		}
	}
}
