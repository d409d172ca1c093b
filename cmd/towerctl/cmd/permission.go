package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.pilab.hu/tower"
)

var permissionCmd = &cobra.Command{
	Use:   "permission",
	Short: "Manage the permissions of the current tenant",
}

var permissionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List permissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		page := tower.NewPage(permissionListLimit, 0)
		resp, err := sdk.Permissions.List(cmd.Context(), &page)
		if err != nil {
			return err
		}

		var permissions []tower.Permission
		if err := resp.Decode(&permissions); err != nil {
			return fmt.Errorf("failed to decode permission list: %w", err)
		}
		for _, p := range permissions {
			fmt.Printf("%s\t%s\t%s\n", p.ID, p.Name, p.Description)
		}
		return nil
	},
}

var permissionCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a permission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		permission, err := sdk.Permissions.Create(cmd.Context(), tower.CreatePermissionRequest{
			Name:        args[0],
			Description: permissionDescription,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created permission %s.\n", permission.ID)
		return nil
	},
}

var permissionDeleteCmd = &cobra.Command{
	Use:   "delete <permission-id>",
	Short: "Delete a permission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := sdk.Permissions.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Deleted.")
		return nil
	},
}

var (
	permissionListLimit   int
	permissionDescription string
)

func init() {
	permissionListCmd.Flags().IntVar(&permissionListLimit, "limit", 50, "page size")
	permissionCreateCmd.Flags().StringVar(&permissionDescription, "description", "", "permission description")
	permissionCmd.AddCommand(permissionListCmd, permissionCreateCmd, permissionDeleteCmd)
	rootCmd.AddCommand(permissionCmd)
}
