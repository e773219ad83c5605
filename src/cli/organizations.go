package cli

import (
	"fmt"
	"strings"

	"crm-app/src/domain"

	"github.com/spf13/cobra"
)

var organizationsCmd = &cobra.Command{
	Use:   "organizations",
	Short: "Manage organizations and notes",
}

var organizationAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new organization to the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")

		app, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		organization, err := app.backend.Organizations.AddOrganization(cmd.Context(), name)
		if err != nil {
			fail(err)
			return nil
		}

		fmt.Printf("✅ Organization added: %s (ID: %d)\n", organization.Name, organization.ID)
		return nil
	},
}

var organizationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all organizations",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		organizations, err := app.backend.Organizations.ListOrganizations(cmd.Context())
		if err != nil {
			fail(err)
			return nil
		}

		if len(organizations) == 0 {
			fmt.Println("No organizations found.")
			return nil
		}

		fmt.Printf("\n🏢 All Organizations (%d):\n\n", len(organizations))
		fmt.Printf("%-6s %-40s\n", "ID", "Name")
		fmt.Println(strings.Repeat("-", 50))
		for _, o := range organizations {
			fmt.Printf("%-6d %-40s\n", o.ID, o.Name)
		}
		return nil
	},
}

var organizationTopCmd = &cobra.Command{
	Use:   "top",
	Short: "Get the top N organizations with the most notes associated with them",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		app, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		results, err := app.backend.Organizations.TopOrganizations(cmd.Context(), limit)
		if err != nil {
			fail(err)
			return nil
		}

		if len(results) == 0 {
			fmt.Println("No organizations found.")
			return nil
		}

		fmt.Printf("\n📊 Top %d Organizations by Note Count:\n\n", limit)
		fmt.Printf("%-6s %-40s %-10s\n", "ID", "Name", "Notes")
		fmt.Println(strings.Repeat("-", 60))
		for _, r := range results {
			fmt.Printf("%-6d %-40s %-10d\n", r.ID, r.Name, r.NoteCount)
		}
		return nil
	},
}

var organizationBulkAddCmd = &cobra.Command{
	Use:   "bulk-add <name>...",
	Short: "Add multiple organizations at once",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		added := []string{}
		skipped := []string{}
		for _, name := range args {
			name = strings.TrimSpace(name)
			organization, err := app.backend.Organizations.AddOrganization(cmd.Context(), name)
			if err != nil {
				if domain.IsDuplicate(err) {
					skipped = append(skipped, name)
					continue
				}
				fail(err)
				return nil
			}
			added = append(added, fmt.Sprintf("%s (ID: %d)", name, organization.ID))
		}

		if len(added) > 0 {
			fmt.Printf("✅ Added %d organization(s):\n", len(added))
			for _, name := range added {
				fmt.Printf("   • %s\n", name)
			}
		}
		if len(skipped) > 0 {
			fmt.Printf("\n⚠️  Skipped %d existing organization(s):\n", len(skipped))
			for _, name := range skipped {
				fmt.Printf("   • %s\n", name)
			}
		}
		return nil
	},
}

func init() {
	organizationAddCmd.Flags().StringP("name", "n", "", "Organization name")
	organizationAddCmd.MarkFlagRequired("name")

	organizationTopCmd.Flags().IntP("limit", "n", 10, "Number of top organizations to display")

	organizationsCmd.AddCommand(organizationAddCmd)
	organizationsCmd.AddCommand(organizationListCmd)
	organizationsCmd.AddCommand(organizationTopCmd)
	organizationsCmd.AddCommand(organizationBulkAddCmd)
	rootCmd.AddCommand(organizationsCmd)
}
