package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

// ShowCommand creates the show command
func ShowCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Search and show the grouped details of one record",
		ArgsUsage: "<term> <key>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-pager",
				Usage: "Disable pager and output directly to terminal",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return showRecord(ctx, c.String("config"), c.Args().Get(0), c.Args().Get(1), c.Bool("no-pager"))
		},
	}
}

func showRecord(ctx context.Context, configPath, term, key string, noPager bool) error {
	s, err := openSession(ctx, configPath, os.Stderr)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := searchThenSelect(ctx, s, term, key); err != nil {
		return err
	}

	detail, err := s.ctrl.ShowDetails(key)
	if err != nil {
		return fmt.Errorf("showing %s: %w", key, err)
	}
	return display(formatDetail(detail), noPager)
}
