package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/rubiojr/stusearch/pkg/backend"
	"github.com/rubiojr/stusearch/pkg/config"
	"github.com/rubiojr/stusearch/pkg/controller"
	"github.com/rubiojr/stusearch/pkg/history"
	"github.com/rubiojr/stusearch/pkg/notify"
	"github.com/rubiojr/stusearch/pkg/realtime"
	"github.com/schollz/progressbar/v3"
)

// session is a terminal front end: one controller plus the notifications it
// has raised since they were last printed.
type session struct {
	cfg    *config.Config
	ctrl   *controller.Controller
	store  *history.Store
	out    io.Writer
	hubID  uint64
	events <-chan realtime.Event
}

// openSession loads the config, opens the history store when enabled and
// runs the startup probes.
func openSession(ctx context.Context, configPath string, out io.Writer) (*session, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return newSession(ctx, cfg, out)
}

func newSession(ctx context.Context, cfg *config.Config, out io.Writer) (*session, error) {
	s := &session{cfg: cfg, out: out}

	opts := []controller.Option{
		controller.WithFencing(cfg.Backend.FenceStaleResponses),
		controller.WithSession("terminal"),
		controller.WithNotifyOptions(notify.WithLifetime(cfg.Notifications.Lifetime.Duration, cfg.Notifications.Exit.Duration)),
	}
	if cfg.History {
		store, err := history.Open(cfg.HistoryPath())
		if err != nil {
			return nil, fmt.Errorf("opening history: %w", err)
		}
		s.store = store
		opts = append(opts, controller.WithRecorder(store))
	}

	client := backend.NewClient(cfg.Backend.BaseURL, backend.WithTimeout(cfg.Backend.Timeout.Duration))
	s.ctrl = controller.New(client, opts...)
	s.hubID, s.events = s.ctrl.Hub().Register()

	// failures only show up in the status bar
	_ = s.ctrl.Startup(ctx)
	return s, nil
}

func (s *session) Close() {
	s.ctrl.Hub().Unregister(s.hubID)
	s.ctrl.Close()
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close history: %v\n", err)
		}
	}
}

// flushNotifications prints every notification shown since the last call.
func (s *session) flushNotifications() {
	for {
		select {
		case ev, ok := <-s.events:
			if !ok {
				return
			}
			if ev.Type == realtime.TypeNotification && ev.Notification.Phase == realtime.PhaseShown {
				fmt.Fprintln(s.out, formatNotification(*ev.Notification))
			}
		default:
			return
		}
	}
}

// search runs one search with a spinner on interactive terminals.
func (s *session) search(ctx context.Context, term string) error {
	var err error
	withSpinner("SEARCHING_DATABASE...", func() {
		err = s.ctrl.Search(ctx, term)
	})
	return err
}

func withSpinner(description string, fn func()) {
	if !isTerminal() {
		fn()
		return
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		tick := time.NewTicker(100 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-done:
				return
			case <-tick.C:
				_ = bar.Add(1)
			}
		}
	}()

	fn()
	close(done)
	wg.Wait()
	_ = bar.Finish()
}

func isTerminal() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// display writes content through a pager when stdout is a terminal.
func display(content string, noPager bool) error {
	if noPager || !isTerminal() {
		fmt.Print(content)
		return nil
	}
	return displayWithPager(content)
}

// displayWithPager displays content using a pager
func displayWithPager(content string) error {
	pagerCmd := os.Getenv("PAGER")
	if pagerCmd == "" {
		for _, pager := range []string{"less", "more", "cat"} {
			if _, err := exec.LookPath(pager); err == nil {
				pagerCmd = pager
				break
			}
		}
	}

	if pagerCmd == "" {
		fmt.Print(content)
		return nil
	}

	args := []string{}
	if strings.Contains(pagerCmd, "less") {
		args = []string{"-R", "-S", "-F", "-X"}
	}

	cmd := exec.Command(pagerCmd, args...)
	cmd.Stdin = strings.NewReader(content)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}
