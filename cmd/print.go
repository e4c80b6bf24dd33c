package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rubiojr/stusearch/pkg/render"
	"github.com/rubiojr/stusearch/pkg/student"
	"github.com/urfave/cli/v3"
)

// PrintCommand creates the print command
func PrintCommand() *cli.Command {
	return &cli.Command{
		Name:      "print",
		Usage:     "Search and produce the printable profile of one record",
		ArgsUsage: "<term> <key>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the HTML print document to this file",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return printRecord(ctx, c.String("config"), c.Args().Get(0), c.Args().Get(1), c.String("output"))
		},
	}
}

func printRecord(ctx context.Context, configPath, term, key, output string) error {
	s, err := openSession(ctx, configPath, os.Stderr)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := searchThenSelect(ctx, s, term, key); err != nil {
		return err
	}

	profile, err := s.ctrl.PrintProfile(key)
	if err != nil {
		return fmt.Errorf("printing %s: %w", key, err)
	}

	if output == "" {
		fmt.Print(formatProfile(profile))
		return nil
	}
	return writePrintDocument(ctx, output, profile)
}

func writePrintDocument(ctx context.Context, path string, profile student.Profile) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := render.Print(profile).Render(ctx, f); err != nil {
		f.Close()
		return fmt.Errorf("rendering profile: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Printf("Profile written to %s\n", path)
	return nil
}
