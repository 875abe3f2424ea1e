package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/singleton/internal/config"
	"github.com/Iron-Ham/singleton/internal/errors"
	"github.com/Iron-Ham/singleton/internal/event"
	"github.com/Iron-Ham/singleton/internal/singleton"
	"github.com/Iron-Ham/singleton/internal/tui"
)

// DefaultToken is the application token used when --token is not given.
const DefaultToken = "singleton-demo"

var runCmd = &cobra.Command{
	Use:   "run [args...]",
	Short: "Run the demo application as a single instance",
	Long: `Run the demo application for an application token.

The first 'singleton run' for a token becomes the leader and opens a window
listing every argument batch forwarded by later launches. Later launches
forward their command line to the leader and exit immediately.

With --plain, or when stdout is not a terminal, batches are printed one per
line instead of opening the window.

Examples:
  # Start the leader
  singleton run

  # From another terminal: forward arguments to it
  singleton run --open report.pdf`,
	Args: cobra.ArbitraryArgs,
	RunE: runRun,

	// The forwarded batch is the full command line, so flags meant for the
	// application are accepted here and ignored.
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
}

var (
	runToken string
	runPlain bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runToken, "token", "t", DefaultToken, "Application token that scopes the single instance")
	runCmd.Flags().BoolVar(&runPlain, "plain", false, "Print batches instead of opening the window")
}

// window is the leader-side activator: the TUI or the plain printer.
type window interface {
	singleton.Activator
	WatchBus(bus *event.Bus) func()
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := cfg.Logging.NewLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	plain := runPlain || !isTerminal(out)

	var win window
	var app *tui.App
	if plain {
		win = tui.NewPrinter(out)
	} else {
		app = tui.New(runToken, cfg.TUI.MaxBatches, tea.WithAltScreen(), tea.WithContext(ctx))
		win = app
	}

	bus := event.NewBus(logger)
	unwatch := win.WatchBus(bus)
	defer unwatch()

	coord := singleton.New(*cfg, runToken, win,
		singleton.WithLogger(logger),
		singleton.WithBus(bus),
	)
	defer func() {
		if err := coord.Cleanup(); err != nil {
			logger.Warn("cleanup failed", "error", err.Error())
		}
	}()

	res, err := coord.Initialize(ctx)
	switch {
	case res.Role == singleton.RoleFollower:
		return reportFollower(cmd.ErrOrStderr(), out, plain, res, err)
	case res.Role == singleton.RoleNone:
		return err
	case err != nil:
		// Leader without a channel: keep running, nothing can be forwarded.
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}

	if plain {
		_, _ = fmt.Fprintf(out, "Leader for %s. Waiting for other instances (Ctrl+C to exit).\n", coord.Identity())
		<-ctx.Done()
		return nil
	}
	return ignoreKilled(app.Run())
}

func reportFollower(stderr, stdout io.Writer, plain bool, res singleton.Result, err error) error {
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Another instance is running but the arguments were not delivered (%s): %v\n", res.Delivery, err)
		return err
	}
	if !plain {
		_, _ = fmt.Fprintf(stdout, "Another instance is running. Arguments forwarded (%s).\n", res.Delivery)
	}
	return nil
}

// ignoreKilled treats a program stopped by its context as a normal exit.
func ignoreKilled(err error) error {
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
