package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rubiojr/stusearch/pkg/controller"
	"github.com/urfave/cli/v3"
)

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search student records by name, surname or student ID",
		ArgsUsage: "<term>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the session state as JSON",
			},
			&cli.BoolFlag{
				Name:  "no-pager",
				Usage: "Disable pager and output directly to terminal",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			term := strings.Join(c.Args().Slice(), " ")
			return searchRecords(ctx, c.String("config"), term, c.Bool("json"), c.Bool("no-pager"))
		},
	}
}

func searchRecords(ctx context.Context, configPath, term string, asJSON, noPager bool) error {
	s, err := openSession(ctx, configPath, os.Stderr)
	if err != nil {
		return err
	}
	defer s.Close()

	err = s.search(ctx, term)
	s.flushNotifications()
	if errors.Is(err, controller.ErrEmptyQuery) {
		return err
	}

	state := s.ctrl.State()
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(state)
	}
	return display(formatStatusBar(state)+"\n"+formatResults(state), noPager)
}

// searchThenSelect runs term for the commands that act on one record of its
// results.
func searchThenSelect(ctx context.Context, s *session, term, key string) error {
	if term == "" || key == "" {
		return fmt.Errorf("both a search term and a record key are required")
	}
	err := s.search(ctx, term)
	s.flushNotifications()
	if err != nil {
		return fmt.Errorf("searching %q: %w", term, err)
	}
	return nil
}
