package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/rubiojr/stusearch/pkg/controller"
	"github.com/urfave/cli/v3"
)

const shellHelp = `Type a name, surname or student ID to search.

  :show <key>           show the grouped details of a result
  :print <key> [file]   print a profile, or write its HTML document to file
  :close                close the details view
  :reset                clear the search
  :stats                show backend status and record count
  :help                 show this help
  :quit                 leave the shell
`

var shellCommands = []string{":show ", ":print ", ":close", ":reset", ":stats", ":help", ":quit"}

// ShellCommand creates the interactive shell command
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Interactive search prompt",
		Action: func(ctx context.Context, c *cli.Command) error {
			return runShell(ctx, c.String("config"))
		},
	}
}

func runShell(ctx context.Context, configPath string) error {
	s, err := openSession(ctx, configPath, os.Stdout)
	if err != nil {
		return err
	}
	defer s.Close()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(func(input string) []string {
		return completeShell(input, s.ctrl.State())
	})

	historyPath := filepath.Join(s.cfg.StorageDir, "shell_history")
	if f, err := os.Open(historyPath); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyPath); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Print(formatStatusBar(s.ctrl.State()))
	fmt.Println(metaStyle.Render("Type :help for commands."))
	s.flushNotifications()

	for {
		input, err := line.Prompt("> ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			fmt.Println()
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}

		quit := runShellLine(ctx, s, input)
		s.flushNotifications()
		if quit {
			return nil
		}
	}
}

// runShellLine executes one line of input and reports whether the shell
// should exit.
func runShellLine(ctx context.Context, s *session, input string) bool {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, ":") {
		// empty input goes through search too, which warns about it
		if err := s.search(ctx, input); !errors.Is(err, controller.ErrEmptyQuery) {
			state := s.ctrl.State()
			fmt.Print(formatStatusBar(state))
			fmt.Print(formatResults(state))
		}
		return false
	}

	fields := strings.Fields(trimmed)
	switch fields[0] {
	case ":quit", ":q", ":exit":
		return true
	case ":help":
		fmt.Print(shellHelp)
	case ":show":
		if len(fields) < 2 {
			fmt.Println("usage: :show <key>")
			return false
		}
		detail, err := s.ctrl.ShowDetails(fields[1])
		if err != nil {
			fmt.Printf("%s: %v\n", fields[1], err)
			return false
		}
		fmt.Print(formatDetail(detail))
	case ":print":
		if len(fields) < 2 {
			fmt.Println("usage: :print <key> [file]")
			return false
		}
		profile, err := s.ctrl.PrintProfile(fields[1])
		if err != nil {
			fmt.Printf("%s: %v\n", fields[1], err)
			return false
		}
		if len(fields) > 2 {
			if err := writePrintDocument(ctx, fields[2], profile); err != nil {
				fmt.Println(err)
			}
			return false
		}
		fmt.Print(formatProfile(profile))
	case ":close":
		s.ctrl.CloseDetails()
	case ":reset":
		s.ctrl.Reset()
		fmt.Print(formatStatusBar(s.ctrl.State()))
	case ":stats":
		fmt.Print(formatStats(s.ctrl.State()))
	default:
		fmt.Printf("unknown command %s, type :help\n", fields[0])
	}
	return false
}

// completeShell completes commands and, after :show or :print, the keys of
// the current results.
func completeShell(input string, state controller.State) []string {
	var out []string
	for _, prefix := range []string{":show ", ":print "} {
		if strings.HasPrefix(input, prefix) {
			partial := strings.TrimPrefix(input, prefix)
			for _, c := range state.Cards {
				if strings.HasPrefix(c.Key, partial) {
					out = append(out, prefix+c.Key)
				}
			}
			return out
		}
	}
	for _, c := range shellCommands {
		if strings.HasPrefix(c, input) {
			out = append(out, c)
		}
	}
	return out
}
