package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/haskel/studycost/internal/cli/tui"
)

var (
	refreshInterval time.Duration
	tuiSession      string
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	Long: `Launch an interactive terminal dashboard with the last prediction of a
session, its charts and the reference dataset overview.

Examples:
  studycost tui --session <id>            # Follow a session
  studycost tui --refresh 500ms           # Faster refresh rate
  studycost tui --host 10.0.0.1           # Connect to remote server`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().DurationVar(&refreshInterval, "refresh", tui.DefaultRefreshInterval, "dashboard refresh interval")
	tuiCmd.Flags().StringVar(&tuiSession, "session", "", "session ID to show")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	config := tui.Config{
		ServerURL:       GetServerURL(),
		RefreshInterval: refreshInterval,
		User:            user,
		Password:        password,
		SessionID:       tuiSession,
	}

	return tui.Run(config)
}
