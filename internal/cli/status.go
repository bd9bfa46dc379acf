package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/haskel/studycost/internal/monitor"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Get current server status and resource metrics",
	Long:  `Query the running studycost server for host and process resource usage.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	var status monitor.Status
	if err := NewClient().getJSON("/status", &status); err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	if jsonOut {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Println("=== System Status ===")

	fmt.Printf("\nCPU:\n")
	fmt.Printf("  Usage: %.1f%% (%d cores)\n", status.CPU.UsagePercent, status.CPU.Cores)

	fmt.Printf("\nMemory:\n")
	fmt.Printf("  Usage: %.1f%%\n", status.Memory.UsagePercent)
	fmt.Printf("  Total: %.1f GB\n", float64(status.Memory.TotalBytes)/1024/1024/1024)
	fmt.Printf("  Used:  %.1f GB\n", float64(status.Memory.UsedBytes)/1024/1024/1024)

	fmt.Printf("\nProcess:\n")
	fmt.Printf("  PID:        %d\n", status.Process.PID)
	fmt.Printf("  RSS:        %.1f MB\n", float64(status.Process.RSSBytes)/1024/1024)
	fmt.Printf("  CPU:        %.1f%%\n", status.Process.CPUPercent)
	fmt.Printf("  Threads:    %d\n", status.Process.Threads)
	fmt.Printf("  Goroutines: %d\n", status.Process.Goroutines)
	fmt.Printf("  Uptime:     %s\n", time.Duration(status.Process.UptimeSeconds)*time.Second)

	return nil
}
