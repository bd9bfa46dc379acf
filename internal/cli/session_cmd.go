package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/haskel/studycost/internal/server"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage estimate sessions",
}

var sessionNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a session and print its ID",
	Long: `Create a session on the running server. Pass the ID to
"estimate --session" and "tui --session" to keep and view the last result.`,
	RunE: runSessionNew,
}

var sessionForgetCmd = &cobra.Command{
	Use:   "forget <id>",
	Short: "Delete the stored result of a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionForget,
}

func init() {
	sessionCmd.AddCommand(sessionNewCmd, sessionForgetCmd)
	rootCmd.AddCommand(sessionCmd)
}

func runSessionNew(cmd *cobra.Command, args []string) error {
	data, status, err := NewClient().Post("/v1/sessions", nil)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	var resp server.SessionResponse
	if err := decodeResponse(data, status, &resp); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	if jsonOut {
		fmt.Printf(`{"id":%q}`+"\n", resp.ID)
	} else {
		fmt.Println(resp.ID)
	}
	return nil
}

func runSessionForget(cmd *cobra.Command, args []string) error {
	c := NewClient()
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+"/v1/sessions/"+args[0], nil)
	if err != nil {
		return err
	}

	data, status, err := c.do(req)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if err := decodeResponse(data, status, nil); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if !jsonOut {
		fmt.Printf("Session %s cleared\n", args[0])
	}
	return nil
}
