package cli

import (
	"fmt"
	"strings"

	"crm-app/src/domain"
	"crm-app/src/usecase"
	"crm-app/src/validator"

	"github.com/spf13/cobra"
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Manage notes and their contact associations",
}

var noteAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new note with optional contact and organization references",
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		content, _ := cmd.Flags().GetString("content")
		contactIDs, _ := cmd.Flags().GetIntSlice("contacts")
		organizationIDs, _ := cmd.Flags().GetIntSlice("organizations")
		taskIDs, _ := cmd.Flags().GetIntSlice("tasks")

		app, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		cv := validator.NewCustomValidator()
		note, err := app.backend.Notes.CreateNote(cmd.Context(), usecase.CreateNoteRequest{
			Title:           cv.SanitizeInput(title),
			Content:         content,
			ContactIDs:      contactIDs,
			OrganizationIDs: organizationIDs,
			TaskIDs:         taskIDs,
		})
		if err != nil {
			fail(err)
			return nil
		}

		tags := []string{}
		if len(note.Contacts) > 0 {
			names := make([]string, 0, len(note.Contacts))
			for _, c := range note.Contacts {
				names = append(names, c.FullName())
			}
			tags = append(tags, "Contacts: "+strings.Join(names, ", "))
		}
		if len(note.Organizations) > 0 {
			names := make([]string, 0, len(note.Organizations))
			for _, o := range note.Organizations {
				names = append(names, o.Name)
			}
			tags = append(tags, "Organizations: "+strings.Join(names, ", "))
		}
		if len(note.Tasks) > 0 {
			titles := make([]string, 0, len(note.Tasks))
			for _, t := range note.Tasks {
				titles = append(titles, t.Title)
			}
			tags = append(tags, "Tasks: "+strings.Join(titles, ", "))
		}

		if len(tags) > 0 {
			fmt.Printf("✅ Note added: '%s' (ID: %d) - Tagged: %s\n", note.Title, note.ID, strings.Join(tags, " | "))
		} else {
			fmt.Printf("✅ Note added: '%s' (ID: %d)\n", note.Title, note.ID)
		}
		return nil
	},
}

var noteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes with optional filtering by contact or organization",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		contactID, _ := cmd.Flags().GetInt("contact-id")
		organizationID, _ := cmd.Flags().GetInt("organization-id")

		app, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		filter := domain.NoteFilter{Limit: limit}
		if contactID > 0 {
			filter.ContactID = &contactID
		}
		if organizationID > 0 {
			filter.OrganizationID = &organizationID
		}

		notes, err := app.backend.Notes.ListNotes(cmd.Context(), filter)
		if err != nil {
			fail(err)
			return nil
		}

		switch {
		case filter.ContactID != nil:
			fmt.Printf("\n📝 Notes for contact ID %d (showing %d):\n\n", contactID, len(notes))
		case filter.OrganizationID != nil:
			fmt.Printf("\n📝 Notes for organization ID %d (showing %d):\n\n", organizationID, len(notes))
		default:
			fmt.Printf("\n📝 Recent Notes (showing %d):\n\n", len(notes))
		}

		if len(notes) == 0 {
			fmt.Println("No notes found.")
			return nil
		}

		fmt.Printf("%-6s %-30s %-4s %-4s %-4s %-20s\n", "ID", "Title", "C", "O", "T", "Created")
		fmt.Println(strings.Repeat("-", 74))
		for _, n := range notes {
			fmt.Printf("%-6d %-30s %-4d %-4d %-4d %-20s\n",
				n.ID, truncate(n.Title, 30), len(n.Contacts), len(n.Organizations), len(n.Tasks),
				n.CreatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var noteViewCmd = &cobra.Command{
	Use:   "view <note-id>",
	Short: "View a note with full details including tagged contacts and organizations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := validator.ValidateID(args[0])
		if err != nil {
			fail(err)
			return nil
		}

		app, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		note, err := app.backend.Notes.GetNote(cmd.Context(), id)
		if err != nil {
			fail(err)
			return nil
		}

		line := strings.Repeat("=", 60)
		sep := strings.Repeat("-", 60)
		fmt.Printf("\n%s\n", line)
		fmt.Printf("📝 Note ID: %d\n", note.ID)
		fmt.Println(line)
		fmt.Printf("Title: %s\n", note.Title)
		fmt.Printf("Created: %s\n", note.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("Updated: %s\n", note.UpdatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("\n%s\nContent:\n%s\n%s\n%s\n\n", sep, sep, note.Content, sep)

		if len(note.Contacts) > 0 {
			fmt.Println("👥 Tagged Contacts:")
			for _, c := range note.Contacts {
				fmt.Printf("  • %s (ID: %d)\n", c.FullName(), c.ID)
			}
		} else {
			fmt.Println("👥 Tagged Contacts: None")
		}

		if len(note.Organizations) > 0 {
			fmt.Println("\n🏢 Tagged Organizations:")
			for _, o := range note.Organizations {
				fmt.Printf("  • %s (ID: %d)\n", o.Name, o.ID)
			}
		} else {
			fmt.Println("\n🏢 Tagged Organizations: None")
		}

		if len(note.Tasks) > 0 {
			fmt.Println("\n📋 Tagged Tasks:")
			for _, t := range note.Tasks {
				status := "⏳"
				if t.Completed {
					status = "✅"
				}
				fmt.Printf("  • %s %s (ID: %d)\n", status, t.Title, t.ID)
			}
		} else {
			fmt.Println("\n📋 Tagged Tasks: None")
		}

		fmt.Printf("\n%s\n\n", line)
		return nil
	},
}

var noteTagCmd = &cobra.Command{
	Use:   "tag <note-id>",
	Short: "Add or remove contact, organization, and task tags from a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := validator.ValidateID(args[0])
		if err != nil {
			fail(err)
			return nil
		}

		addContacts, _ := cmd.Flags().GetIntSlice("add-contact")
		removeContacts, _ := cmd.Flags().GetIntSlice("remove-contact")
		addOrganizations, _ := cmd.Flags().GetIntSlice("add-organization")
		removeOrganizations, _ := cmd.Flags().GetIntSlice("remove-organization")
		addTasks, _ := cmd.Flags().GetIntSlice("add-task")
		removeTasks, _ := cmd.Flags().GetIntSlice("remove-task")

		app, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		diff, err := app.backend.Notes.TagNote(cmd.Context(), id, domain.TagInstruction{
			AddContactIDs:         addContacts,
			RemoveContactIDs:      removeContacts,
			AddOrganizationIDs:    addOrganizations,
			RemoveOrganizationIDs: removeOrganizations,
			AddTaskIDs:            addTasks,
			RemoveTaskIDs:         removeTasks,
		})
		if err != nil {
			fail(err)
			return nil
		}

		printDiff(diff)
		return nil
	},
}

// printDiff 実際に適用された変更のみを表示する
func printDiff(diff *domain.TagDiff) {
	if len(diff.AddedContacts) > 0 {
		fmt.Printf("✅ Added contacts: %s\n", strings.Join(diff.AddedContacts, ", "))
	}
	if len(diff.RemovedContacts) > 0 {
		fmt.Printf("➖ Removed contacts: %s\n", strings.Join(diff.RemovedContacts, ", "))
	}
	if len(diff.AddedOrganizations) > 0 {
		fmt.Printf("✅ Added organizations: %s\n", strings.Join(diff.AddedOrganizations, ", "))
	}
	if len(diff.RemovedOrganizations) > 0 {
		fmt.Printf("➖ Removed organizations: %s\n", strings.Join(diff.RemovedOrganizations, ", "))
	}
	if len(diff.AddedTasks) > 0 {
		fmt.Printf("✅ Added tasks: %s\n", strings.Join(diff.AddedTasks, ", "))
	}
	if len(diff.RemovedTasks) > 0 {
		fmt.Printf("➖ Removed tasks: %s\n", strings.Join(diff.RemovedTasks, ", "))
	}
	if diff.Empty() {
		fmt.Println("ℹ️  No changes made")
	}
}

func init() {
	noteAddCmd.Flags().StringP("title", "t", "", "Note title")
	noteAddCmd.Flags().StringP("content", "c", "", "Note content")
	noteAddCmd.Flags().IntSliceP("contacts", "C", nil, "Contact IDs to tag")
	noteAddCmd.Flags().IntSliceP("organizations", "O", nil, "Organization IDs to tag")
	noteAddCmd.Flags().IntSliceP("tasks", "T", nil, "Task IDs to tag")
	noteAddCmd.MarkFlagRequired("title")
	noteAddCmd.MarkFlagRequired("content")

	noteListCmd.Flags().IntP("limit", "n", 20, "Number of notes to display")
	noteListCmd.Flags().IntP("contact-id", "c", 0, "Filter by contact ID")
	noteListCmd.Flags().IntP("organization-id", "o", 0, "Filter by organization ID")

	noteTagCmd.Flags().IntSliceP("add-contact", "a", nil, "Contact IDs to add to the note")
	noteTagCmd.Flags().IntSliceP("remove-contact", "r", nil, "Contact IDs to remove from the note")
	noteTagCmd.Flags().IntSliceP("add-organization", "A", nil, "Organization IDs to add to the note")
	noteTagCmd.Flags().IntSliceP("remove-organization", "R", nil, "Organization IDs to remove from the note")
	noteTagCmd.Flags().IntSlice("add-task", nil, "Task IDs to add to the note")
	noteTagCmd.Flags().IntSlice("remove-task", nil, "Task IDs to remove from the note")

	notesCmd.AddCommand(noteAddCmd)
	notesCmd.AddCommand(noteListCmd)
	notesCmd.AddCommand(noteViewCmd)
	notesCmd.AddCommand(noteTagCmd)
	rootCmd.AddCommand(notesCmd)
}
