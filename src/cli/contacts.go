package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Manage contacts and notes",
}

var contactAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new contact to the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		firstName, _ := cmd.Flags().GetString("first-name")
		lastName, _ := cmd.Flags().GetString("last-name")

		app, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		contact, err := app.backend.Contacts.AddContact(cmd.Context(), firstName, lastName)
		if err != nil {
			fail(err)
			return nil
		}

		fmt.Printf("✅ Contact added: %s (ID: %d)\n", contact.FullName(), contact.ID)
		return nil
	},
}

var contactListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all contacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		contacts, err := app.backend.Contacts.ListContacts(cmd.Context())
		if err != nil {
			fail(err)
			return nil
		}

		if len(contacts) == 0 {
			fmt.Println("No contacts found.")
			return nil
		}

		fmt.Printf("\n📇 All Contacts (%d):\n\n", len(contacts))
		fmt.Printf("%-6s %-20s %-20s\n", "ID", "First Name", "Last Name")
		fmt.Println(strings.Repeat("-", 50))
		for _, c := range contacts {
			fmt.Printf("%-6d %-20s %-20s\n", c.ID, c.FirstName, c.LastName)
		}
		return nil
	},
}

var contactTopCmd = &cobra.Command{
	Use:   "top",
	Short: "Get the top N contacts with the most notes associated with them",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		app, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		results, err := app.backend.Contacts.TopContacts(cmd.Context(), limit)
		if err != nil {
			fail(err)
			return nil
		}

		if len(results) == 0 {
			fmt.Println("No contacts found.")
			return nil
		}

		fmt.Printf("\n📊 Top %d Contacts by Note Count:\n\n", limit)
		fmt.Printf("%-6s %-30s %-10s\n", "ID", "Name", "Notes")
		fmt.Println(strings.Repeat("-", 50))
		for _, r := range results {
			fmt.Printf("%-6d %-30s %-10d\n", r.ID, r.FullName(), r.NoteCount)
		}
		return nil
	},
}

var contactSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search contacts by first name, last name, or both",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := args[0]

		app, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		results, err := app.backend.Contacts.SearchContacts(cmd.Context(), query)
		if err != nil {
			fail(err)
			return nil
		}

		if len(results) == 0 {
			fmt.Printf("No contacts found matching '%s'\n", query)
			return nil
		}

		fmt.Printf("\n🔍 Found %d contact(s) matching '%s':\n\n", len(results), query)
		fmt.Printf("%-6s %-20s %-20s\n", "ID", "First Name", "Last Name")
		fmt.Println(strings.Repeat("-", 50))
		for _, c := range results {
			fmt.Printf("%-6d %-20s %-20s\n", c.ID, c.FirstName, c.LastName)
		}
		return nil
	},
}

var contactBulkAddCmd = &cobra.Command{
	Use:   "bulk-add <name>...",
	Short: "Add multiple contacts at once",
	Long: `Add multiple contacts at once.

Each name can be:
- "FirstName LastName" (both names)
- "FirstName" (first name only, last name will be empty)`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		result, err := app.backend.Contacts.BulkAddContacts(cmd.Context(), args)
		if err != nil {
			fail(err)
			return nil
		}

		if len(result.Added) > 0 {
			fmt.Printf("✅ Added %d contact(s):\n", len(result.Added))
			for _, name := range result.Added {
				fmt.Printf("   • %s\n", name)
			}
		}
		if len(result.Skipped) > 0 {
			fmt.Printf("\n⚠️  Skipped %d existing contact(s):\n", len(result.Skipped))
			for _, name := range result.Skipped {
				fmt.Printf("   • %s\n", name)
			}
		}
		return nil
	},
}

var contactInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize context: show top 10 contacts and their last 10 notes each",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		top, err := app.backend.Contacts.TopContacts(cmd.Context(), 10)
		if err != nil {
			fail(err)
			return nil
		}
		if len(top) == 0 {
			fmt.Println("No contacts found.")
			return nil
		}

		fmt.Println("\n" + strings.Repeat("=", 80))
		fmt.Println("📊 TOP 10 CONTACTS BY NOTE COUNT")
		fmt.Println(strings.Repeat("=", 80) + "\n")

		for _, r := range top {
			fmt.Printf("\n%s\n", strings.Repeat("─", 80))
			fmt.Printf("👤 %s (ID: %d) - %d note(s)\n", r.FullName(), r.ID, r.NoteCount)
			fmt.Printf("%s\n\n", strings.Repeat("─", 80))

			_, notes, err := app.backend.Contacts.GetContactWithNotes(cmd.Context(), r.ID, 10)
			if err != nil {
				fail(err)
				continue
			}
			if len(notes) == 0 {
				fmt.Println("   (no notes)")
				continue
			}
			for _, note := range notes {
				fmt.Printf("   📝 [%s] %s\n", note.CreatedAt.Format("2006-01-02"), note.Title)
			}
		}
		return nil
	},
}

func init() {
	contactAddCmd.Flags().StringP("first-name", "f", "", "Contact's first name")
	contactAddCmd.Flags().StringP("last-name", "l", "", "Contact's last name")
	contactAddCmd.MarkFlagRequired("first-name")
	contactAddCmd.MarkFlagRequired("last-name")

	contactTopCmd.Flags().IntP("limit", "n", 10, "Number of top contacts to display")

	contactsCmd.AddCommand(contactAddCmd)
	contactsCmd.AddCommand(contactListCmd)
	contactsCmd.AddCommand(contactTopCmd)
	contactsCmd.AddCommand(contactSearchCmd)
	contactsCmd.AddCommand(contactBulkAddCmd)
	contactsCmd.AddCommand(contactInitCmd)
	rootCmd.AddCommand(contactsCmd)
}
