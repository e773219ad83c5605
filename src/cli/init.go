package cli

import (
	"fmt"
	"strings"
	"time"

	"crm-app/src/domain"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize context: 7-day calendar, 5 urgent tasks, and top contacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		now := time.Now().UTC()

		fmt.Println("\n" + strings.Repeat("=", 80))
		fmt.Println("📅 THIS WEEK")
		fmt.Println(strings.Repeat("=", 80) + "\n")

		for i := 0; i < 7; i++ {
			date := now.AddDate(0, 0, i)
			dayName := date.Weekday().String()
			dateStr := date.Format("2006-01-02")
			if i == 0 {
				fmt.Printf("  ► %-10s %s  ← TODAY\n", dayName, dateStr)
			} else {
				fmt.Printf("    %-10s %s\n", dayName, dateStr)
			}
		}

		fmt.Println("\n" + strings.Repeat("=", 80))
		fmt.Println("⚠️  TOP 5 URGENT TASKS")
		fmt.Println(strings.Repeat("=", 80) + "\n")

		urgent, err := app.backend.Tasks.UrgentTasks(cmd.Context(), 7, domain.TaskSortUrgency)
		if err != nil {
			fail(err)
			return nil
		}
		if len(urgent) > 5 {
			urgent = urgent[:5]
		}

		if len(urgent) == 0 {
			fmt.Println("  ✅ No urgent tasks!")
			fmt.Println()
		} else {
			for _, t := range urgent {
				var status string
				switch {
				case t.DueDate.Before(now):
					status = "🔴 OVERDUE"
				case t.DueDate.Before(now.AddDate(0, 0, 1)):
					status = "🔴 TODAY"
				case t.DueDate.Before(now.AddDate(0, 0, 3)):
					status = "🟡 SOON"
				default:
					status = "🟢 THIS WEEK"
				}

				fmt.Printf("  %-15s [%d/10] %s\n", status, t.Importance, t.Title)
				fmt.Printf("  %-15s Due: %s\n", "", t.DueDate.Format("2006-01-02 15:04"))

				var tags []string
				if len(t.Contacts) > 0 {
					names := make([]string, 0, len(t.Contacts))
					for _, c := range t.Contacts {
						names = append(names, c.FullName())
					}
					tags = append(tags, "👥 "+strings.Join(names, ", "))
				}
				if len(t.Organizations) > 0 {
					names := make([]string, 0, len(t.Organizations))
					for _, o := range t.Organizations {
						names = append(names, o.Name)
					}
					tags = append(tags, "🏢 "+strings.Join(names, ", "))
				}
				if len(tags) > 0 {
					fmt.Printf("  %-15s %s\n", "", strings.Join(tags, " | "))
				}
				fmt.Println()
			}
		}

		fmt.Println(strings.Repeat("=", 80))
		fmt.Println("📊 TOP 5 CONTACTS BY NOTE COUNT")
		fmt.Println(strings.Repeat("=", 80) + "\n")

		top, err := app.backend.Contacts.TopContacts(cmd.Context(), 5)
		if err != nil {
			fail(err)
			return nil
		}

		if len(top) == 0 {
			fmt.Println("  No contacts found.")
			fmt.Println()
		} else {
			for _, c := range top {
				fmt.Printf("  👤 %s (ID: %d) - %d note(s)\n", c.FullName(), c.ID, c.NoteCount)

				// 直近3件のノートを表示する
				_, notes, err := app.backend.Contacts.GetContactWithNotes(cmd.Context(), c.ID, 3)
				if err != nil {
					fmt.Println("     (No notes)")
					fmt.Println()
					continue
				}

				if len(notes) == 0 {
					fmt.Println("     (No notes)")
				} else {
					for _, n := range notes {
						fmt.Printf("     • [%s] %s\n", n.CreatedAt.Format("2006-01-02"), n.Title)
						fmt.Printf("       %s\n", truncate(n.Content, 60))
					}
				}
				fmt.Println()
			}
		}

		fmt.Println(strings.Repeat("=", 80) + "\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
