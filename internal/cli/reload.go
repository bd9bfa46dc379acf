package cli

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
)

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Reload the studycost configuration and model",
	Long: `Reload the studycost server by sending SIGHUP to the process.
The server re-reads its configuration file and the model artifact it names.`,
	RunE: runReload,
}

func init() {
	reloadCmd.Flags().StringVar(&pidFile, "pid-file", "", "PID file path (overrides config)")
	rootCmd.AddCommand(reloadCmd)
}

func runReload(cmd *cobra.Command, args []string) error {
	pid, err := signalServer(syscall.SIGHUP)
	if err != nil {
		return err
	}

	if !jsonOut {
		fmt.Printf("Sent SIGHUP to process %d (reload requested)\n", pid)
	} else {
		fmt.Printf(`{"status":"reload_requested","pid":%d}`+"\n", pid)
	}

	return nil
}
