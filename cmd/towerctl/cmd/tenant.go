package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.pilab.hu/tower"
)

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Manage tenants",
}

var tenantListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tenants",
	RunE: func(cmd *cobra.Command, args []string) error {
		page := tower.NewPage(tenantListLimit, tenantListOffset)
		resp, err := sdk.Tenants.List(cmd.Context(), &page)
		if err != nil {
			return err
		}

		var tenants []tower.Tenant
		if err := resp.Decode(&tenants); err != nil {
			return fmt.Errorf("failed to decode tenant list: %w", err)
		}
		for _, t := range tenants {
			fmt.Printf("%s\t%s\n", t.ID, t.Name)
		}
		fmt.Printf("(%d of %d, page %d/%d)\n", len(tenants), resp.Total, resp.CurrentPage(), resp.TotalPages())
		return nil
	},
}

var tenantGetCmd = &cobra.Command{
	Use:   "get <tenant-id>",
	Short: "Show a single tenant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tenant, err := sdk.Tenants.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("ID:          %s\nName:        %s\nDescription: %s\nProviders:   %v\n",
			tenant.ID, tenant.Name, tenant.Description, tenant.AuthProviders)
		return nil
	},
}

var tenantSwitchCmd = &cobra.Command{
	Use:   "switch <tenant-id>",
	Short: "Switch the current tenant context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sdk.Tokens.SwitchTenant(cmd.Context(), args[0])
		fmt.Printf("Current tenant is now %s.\n", args[0])
		return nil
	},
}

var (
	tenantListLimit  int
	tenantListOffset int
)

func init() {
	tenantListCmd.Flags().IntVar(&tenantListLimit, "limit", 20, "page size")
	tenantListCmd.Flags().IntVar(&tenantListOffset, "offset", 0, "page offset")
	tenantCmd.AddCommand(tenantListCmd, tenantGetCmd, tenantSwitchCmd)
	rootCmd.AddCommand(tenantCmd)
}
