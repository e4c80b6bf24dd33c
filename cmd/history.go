package cmd

import (
	"context"
	"fmt"

	"github.com/rubiojr/stusearch/pkg/config"
	"github.com/rubiojr/stusearch/pkg/history"
	"github.com/urfave/cli/v3"
)

// HistoryCommand creates the history command
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recently issued searches",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of searches to show",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "stats",
				Usage: "Show aggregate statistics instead of the list",
			},
			&cli.BoolFlag{
				Name:  "no-pager",
				Usage: "Disable pager and output directly to terminal",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return showHistory(ctx, c.String("config"), c.Int("limit"), c.Bool("stats"), c.Bool("no-pager"))
		},
	}
}

func showHistory(ctx context.Context, configPath string, limit int, stats, noPager bool) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if !cfg.History {
		fmt.Println("Search history is disabled in the configuration.")
		return nil
	}

	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Printf("Warning: failed to close history: %v\n", err)
		}
	}()

	if stats {
		st, err := store.Stats(ctx)
		if err != nil {
			return fmt.Errorf("getting history stats: %w", err)
		}
		fmt.Print(formatHistoryStats(st))
		return nil
	}

	entries, err := store.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("listing history: %w", err)
	}
	return display(formatHistory(entries), noPager)
}
