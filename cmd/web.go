package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rubiojr/stusearch/pkg/config"
	"github.com/rubiojr/stusearch/pkg/history"
	"github.com/rubiojr/stusearch/pkg/log"
	"github.com/rubiojr/stusearch/pkg/web"
	"github.com/urfave/cli/v3"
)

var logger = log.ForService("cmd")

// WebCommand creates the web command
func WebCommand() *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Start the search web interface",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "port",
				Usage: "Port to listen on (overrides the config file)",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind to (overrides the config file)",
			},
			&cli.BoolFlag{
				Name:  "no-watch",
				Usage: "Do not reload the config file when it changes",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return startWebServer(ctx, c.String("config"), c.String("host"), c.String("port"), !c.Bool("no-watch"))
		},
	}
}

func startWebServer(ctx context.Context, configPath, host, port string, watch bool) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := applyListenFlags(cfg, host, port); err != nil {
		return err
	}

	opts := web.Options{Config: cfg}
	if cfg.History {
		store, err := history.Open(cfg.HistoryPath())
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warnf("failed to close history: %v", err)
			}
		}()
		opts.Recorder = store
	}

	server := web.NewServer(opts)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watch {
		if _, err := os.Stat(configPath); err == nil {
			go func() {
				err := config.Watch(ctx, configPath, func(next *config.Config) {
					if err := applyListenFlags(next, host, port); err != nil {
						logger.Warnf("ignoring reloaded config: %v", err)
						return
					}
					server.Reload(next)
				})
				if err != nil {
					logger.Warnf("config watcher stopped: %v", err)
				}
			}()
		}
	}

	logger.Infof("backend: %s", cfg.Backend.BaseURL)
	return server.Run(ctx)
}

// applyListenFlags lets --host and --port win over the config file.
func applyListenFlags(cfg *config.Config, host, port string) error {
	if host != "" {
		cfg.Web.Host = host
	}
	if port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid port %q: %w", port, err)
		}
		cfg.Web.Port = p
	}
	return cfg.Validate()
}
