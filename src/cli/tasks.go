package cli

import (
	"fmt"
	"strings"
	"time"

	"crm-app/src/domain"
	"crm-app/src/usecase"
	"crm-app/src/validator"

	"github.com/spf13/cobra"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage tasks with due dates and importance scores",
}

// parseDueDate 日付のみの場合は当日の終わりとして扱う
func parseDueDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t.Add(23*time.Hour + 59*time.Minute + 59*time.Second), nil
	}
	return time.Time{}, fmt.Errorf("Invalid date format: %s. Use YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS", value)
}

var taskAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new task with due date and importance",
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")
		dueDateStr, _ := cmd.Flags().GetString("due-date")
		importance, _ := cmd.Flags().GetInt("importance")
		contactIDs, _ := cmd.Flags().GetIntSlice("contact")
		organizationIDs, _ := cmd.Flags().GetIntSlice("organization")

		dueDate, err := parseDueDate(dueDateStr)
		if err != nil {
			fail(err)
			return nil
		}

		app, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		var descPtr *string
		if description != "" {
			descPtr = &description
		}

		task, err := app.backend.Tasks.CreateTask(cmd.Context(), usecase.CreateTaskRequest{
			Title:           title,
			Description:     descPtr,
			DueDate:         dueDate,
			Importance:      importance,
			ContactIDs:      contactIDs,
			OrganizationIDs: organizationIDs,
		})
		if err != nil {
			fail(err)
			return nil
		}

		fmt.Printf("✅ Task added: '%s' (ID: %d)\n", task.Title, task.ID)
		fmt.Printf("   Due: %s\n", task.DueDate.Format("2006-01-02 15:04"))
		fmt.Printf("   Importance: %d/10\n", task.Importance)

		if len(task.Contacts) > 0 {
			names := make([]string, 0, len(task.Contacts))
			for _, c := range task.Contacts {
				names = append(names, c.FullName())
			}
			fmt.Printf("   Contacts: %s\n", strings.Join(names, ", "))
		}
		if len(task.Organizations) > 0 {
			names := make([]string, 0, len(task.Organizations))
			for _, o := range task.Organizations {
				names = append(names, o.Name)
			}
			fmt.Printf("   Organizations: %s\n", strings.Join(names, ", "))
		}
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		showCompleted, _ := cmd.Flags().GetBool("show-completed")
		contactID, _ := cmd.Flags().GetInt("contact")
		organizationID, _ := cmd.Flags().GetInt("organization")

		app, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		filter := domain.TaskFilter{Limit: limit, ShowCompleted: showCompleted}
		if contactID > 0 {
			filter.ContactID = &contactID
		}
		if organizationID > 0 {
			filter.OrganizationID = &organizationID
		}

		tasks, err := app.backend.Tasks.ListTasks(cmd.Context(), filter)
		if err != nil {
			fail(err)
			return nil
		}

		if len(tasks) == 0 {
			fmt.Println("No tasks found.")
			return nil
		}

		statusText := "Incomplete"
		if showCompleted {
			statusText = "All"
		}
		fmt.Printf("\n📋 %s Tasks (showing %d):\n\n", statusText, len(tasks))
		fmt.Printf("%-6s %-40s %-22s %-4s %-4s %-4s %-3s\n", "ID", "Title", "Due Date", "Imp", "C", "O", "✓")
		fmt.Println(strings.Repeat("-", 85))

		now := time.Now().UTC()
		for _, t := range tasks {
			dueStr := t.DueDate.Format("2006-01-02 15:04")
			if t.DueDate.Before(now) {
				dueStr = "🔴 " + dueStr
			} else if t.DueDate.Before(now.AddDate(0, 0, 7)) {
				dueStr = "🟡 " + dueStr
			}

			completedMark := ""
			if t.Completed {
				completedMark = "✓"
			}

			fmt.Printf("%-6d %-40s %-22s %-4d %-4d %-4d %-3s\n",
				t.ID, truncate(t.Title, 40), dueStr, t.Importance,
				len(t.Contacts), len(t.Organizations), completedMark)
		}
		return nil
	},
}

var taskViewCmd = &cobra.Command{
	Use:   "view <task-id>",
	Short: "View detailed information about a task",
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

		task, err := app.backend.Tasks.GetTask(cmd.Context(), id)
		if err != nil {
			fail(err)
			return nil
		}

		fmt.Printf("\n📋 Task #%d: %s\n", task.ID, task.Title)
		fmt.Println(strings.Repeat("=", 80))
		status := "⏳ Incomplete"
		if task.Completed {
			status = "✅ Completed"
		}
		fmt.Printf("Status: %s\n", status)
		fmt.Printf("Due Date: %s\n", task.DueDate.Format("2006-01-02 15:04:05"))
		fmt.Printf("Importance: %d/10\n", task.Importance)
		fmt.Printf("Created: %s\n", task.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("Updated: %s\n", task.UpdatedAt.Format("2006-01-02 15:04:05"))

		if task.Description != nil && *task.Description != "" {
			fmt.Printf("\nDescription:\n%s\n", *task.Description)
		}

		if len(task.Contacts) > 0 {
			fmt.Println("\n👥 Tagged Contacts:")
			for _, c := range task.Contacts {
				fmt.Printf("  • %s (ID: %d)\n", c.FullName(), c.ID)
			}
		}
		if len(task.Organizations) > 0 {
			fmt.Println("\n🏢 Tagged Organizations:")
			for _, o := range task.Organizations {
				fmt.Printf("  • %s (ID: %d)\n", o.Name, o.ID)
			}
		}
		fmt.Println()
		return nil
	},
}

var taskUrgentCmd = &cobra.Command{
	Use:   "urgent",
	Short: "Show tasks due within a certain timeframe (default: 7 days)",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		sortBy, _ := cmd.Flags().GetString("sort-by")

		app, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		tasks, err := app.backend.Tasks.UrgentTasks(cmd.Context(), days, domain.TaskSort(sortBy))
		if err != nil {
			fail(err)
			return nil
		}

		if len(tasks) == 0 {
			fmt.Printf("✅ No urgent tasks due within %d days!\n", days)
			return nil
		}

		fmt.Printf("\n⚠️  Urgent Tasks (due within %d days, sorted by %s):\n\n", days, sortBy)
		fmt.Printf("%-6s %-40s %-28s %-4s %-4s %-4s\n", "ID", "Title", "Due Date", "Imp", "C", "O")
		fmt.Println(strings.Repeat("-", 88))

		now := time.Now().UTC()
		for _, t := range tasks {
			dueStr := t.DueDate.Format("2006-01-02 15:04")
			switch {
			case t.DueDate.Before(now):
				dueStr = "🔴 " + dueStr + " (OVERDUE)"
			case t.DueDate.Before(now.AddDate(0, 0, 1)):
				dueStr = "🔴 " + dueStr + " (today)"
			case t.DueDate.Before(now.AddDate(0, 0, 3)):
				dueStr = "🟡 " + dueStr
			}

			fmt.Printf("%-6d %-40s %-28s %-4d %-4d %-4d\n",
				t.ID, truncate(t.Title, 40), dueStr, t.Importance,
				len(t.Contacts), len(t.Organizations))
		}
		return nil
	},
}

var taskCompleteCmd = &cobra.Command{
	Use:   "complete <task-id>",
	Short: "Mark a task as completed",
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

		task, err := app.backend.Tasks.CompleteTask(cmd.Context(), id)
		if err != nil {
			fail(err)
			return nil
		}

		fmt.Printf("✅ Task completed: '%s' (ID: %d)\n", task.Title, task.ID)
		return nil
	},
}

var taskUncompleteCmd = &cobra.Command{
	Use:   "uncomplete <task-id>",
	Short: "Mark a task as incomplete",
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

		task, err := app.backend.Tasks.UncompleteTask(cmd.Context(), id)
		if err != nil {
			fail(err)
			return nil
		}

		fmt.Printf("⏳ Task marked incomplete: '%s' (ID: %d)\n", task.Title, task.ID)
		return nil
	},
}

var taskTagCmd = &cobra.Command{
	Use:   "tag <task-id>",
	Short: "Add or remove contact and organization tags from a task",
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

		app, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		diff, err := app.backend.Tasks.TagTask(cmd.Context(), id, domain.TagInstruction{
			AddContactIDs:         addContacts,
			RemoveContactIDs:      removeContacts,
			AddOrganizationIDs:    addOrganizations,
			RemoveOrganizationIDs: removeOrganizations,
		})
		if err != nil {
			fail(err)
			return nil
		}

		printDiff(diff)
		return nil
	},
}

func init() {
	taskAddCmd.Flags().StringP("title", "t", "", "Task title")
	taskAddCmd.Flags().StringP("description", "d", "", "Task description")
	taskAddCmd.Flags().StringP("due-date", "D", "", "Due date in ISO format (YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS)")
	taskAddCmd.Flags().IntP("importance", "i", 0, "Importance score (0-10)")
	taskAddCmd.Flags().IntSliceP("contact", "C", nil, "Contact ID to tag")
	taskAddCmd.Flags().IntSliceP("organization", "O", nil, "Organization ID to tag")
	taskAddCmd.MarkFlagRequired("title")
	taskAddCmd.MarkFlagRequired("due-date")

	taskListCmd.Flags().IntP("limit", "n", 20, "Number of tasks to display")
	taskListCmd.Flags().BoolP("show-completed", "c", false, "Include completed tasks in the list")
	taskListCmd.Flags().IntP("contact", "C", 0, "Filter by contact ID")
	taskListCmd.Flags().IntP("organization", "O", 0, "Filter by organization ID")

	taskUrgentCmd.Flags().IntP("days", "d", 7, "Number of days from now to consider urgent")
	taskUrgentCmd.Flags().StringP("sort-by", "s", "urgency", "Sort by urgency (due date) or importance")

	taskTagCmd.Flags().IntSliceP("add-contact", "a", nil, "Add contact ID")
	taskTagCmd.Flags().IntSliceP("add-organization", "A", nil, "Add organization ID")
	taskTagCmd.Flags().IntSliceP("remove-contact", "r", nil, "Remove contact ID")
	taskTagCmd.Flags().IntSliceP("remove-organization", "R", nil, "Remove organization ID")

	tasksCmd.AddCommand(taskAddCmd)
	tasksCmd.AddCommand(taskListCmd)
	tasksCmd.AddCommand(taskViewCmd)
	tasksCmd.AddCommand(taskUrgentCmd)
	tasksCmd.AddCommand(taskCompleteCmd)
	tasksCmd.AddCommand(taskUncompleteCmd)
	tasksCmd.AddCommand(taskTagCmd)
	rootCmd.AddCommand(tasksCmd)
}
