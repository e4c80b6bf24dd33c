package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

// StatsCommand creates the stats command
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show backend status, total record count and columns",
		Action: func(ctx context.Context, c *cli.Command) error {
			return showStats(ctx, c.String("config"))
		},
	}
}

func showStats(ctx context.Context, configPath string) error {
	s, err := openSession(ctx, configPath, os.Stderr)
	if err != nil {
		return err
	}
	defer s.Close()
	s.flushNotifications()

	fmt.Print(formatStats(s.ctrl.State()))
	return nil
}
