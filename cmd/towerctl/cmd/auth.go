package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication for towerctl",
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Obtain a client-credentials token and persist it",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := sdk.Auth.ClientCredentialsToken(cmd.Context())
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		fmt.Printf("Login successful, token valid for %d seconds.\n", resp.ExpiresIn)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Invalidate the session and clear stored tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := sdk.Auth.Logout(cmd.Context(), nil); err != nil {
			return fmt.Errorf("logout failed: %w", err)
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the identity of the stored user token",
	RunE: func(cmd *cobra.Command, args []string) error {
		user := sdk.Tokens.CurrentUser(cmd.Context(), "")
		if user == nil {
			fmt.Println("No user identity stored. Authenticated via client credentials or not at all.")
			return nil
		}
		fmt.Printf("%s <%s> (tenant %s)\n", user.Name, user.Email, user.TenantID)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether a valid token is available for the tenant",
	RunE: func(cmd *cobra.Command, args []string) error {
		if sdk.Tokens.IsAuthenticated(cmd.Context(), "") {
			fmt.Println("Authenticated.")
		} else {
			fmt.Println("Not authenticated.")
		}
		return nil
	},
}

func init() {
	authCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, statusCmd)
	rootCmd.AddCommand(authCmd)
}
