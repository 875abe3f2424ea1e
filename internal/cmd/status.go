package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/singleton/internal/config"
	"github.com/Iron-Ham/singleton/internal/identity"
	"github.com/Iron-Ham/singleton/internal/lock"
	"github.com/Iron-Ham/singleton/internal/singleton"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a leader is running",
	Long: `Report whether a leader currently holds the single-instance lock for an
application token, along with the lock file and channel it uses.

Exits with an error only when the lock cannot be inspected.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

var statusToken string

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusToken, "token", "t", DefaultToken, "Application token to inspect")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	id, err := identity.New(statusToken)
	if err != nil {
		return err
	}

	held, err := singleton.Probe(*cfg, statusToken)
	if err != nil {
		return fmt.Errorf("failed to probe leadership: %w", err)
	}

	out := cmd.OutOrStdout()
	lockPath := singleton.LockPath(*cfg, id)

	fmt.Fprintf(out, "Identity: %s\n", id.Name())
	fmt.Fprintf(out, "Channel:  %s\n", id.ChannelName())
	fmt.Fprintf(out, "Lock:     %s\n", lockPath)
	if !held {
		fmt.Fprintln(out, "Leader:   not running")
		return nil
	}
	if pid, err := lock.ReadOwner(lockPath); err == nil {
		fmt.Fprintf(out, "Leader:   running (pid %d)\n", pid)
	} else {
		fmt.Fprintln(out, "Leader:   running")
	}
	return nil
}
