package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/shef088/Hospital-Management-System-sub001/internal/client"
	"github.com/shef088/Hospital-Management-System-sub001/internal/models"
	"github.com/shef088/Hospital-Management-System-sub001/internal/resources"
)

func init() {
	rootCmd.AddCommand(listCmd, getCmd, createCmd, removeCmd)

	listCmd.Flags().Int("page", 0, "page number")
	listCmd.Flags().Int("limit", 0, "page size")
	listCmd.Flags().String("search", "", "search term")
}

type listFunc func(context.Context, *client.Client, models.ListParams) (any, error)

type getFunc func(context.Context, *client.Client, string) (any, error)

type createFunc func(context.Context, *client.Client, json.RawMessage) (any, error)

type removeFunc func(context.Context, *client.Client, string) error

var listFuncs = map[string]listFunc{
	"patients": func(ctx context.Context, c *client.Client, p models.ListParams) (any, error) {
		return c.Resources.Patients.List(ctx, p)
	},
	"staff": func(ctx context.Context, c *client.Client, p models.ListParams) (any, error) {
		return c.Resources.Staff.List(ctx, p)
	},
	"departments": func(ctx context.Context, c *client.Client, p models.ListParams) (any, error) {
		return c.Resources.Departments.List(ctx, p)
	},
	"roles": func(ctx context.Context, c *client.Client, p models.ListParams) (any, error) {
		return c.Resources.Roles.List(ctx, p)
	},
	"permissions": func(ctx context.Context, c *client.Client, p models.ListParams) (any, error) {
		return c.Resources.Permissions.List(ctx, p)
	},
	"shifts": func(ctx context.Context, c *client.Client, p models.ListParams) (any, error) {
		return c.Resources.Shifts.List(ctx, p)
	},
	"tasks": func(ctx context.Context, c *client.Client, p models.ListParams) (any, error) {
		return c.Resources.Tasks.List(ctx, p)
	},
	"medical-records": func(ctx context.Context, c *client.Client, p models.ListParams) (any, error) {
		return c.Resources.MedicalRecords.List(ctx, p)
	},
	"appointments": func(ctx context.Context, c *client.Client, p models.ListParams) (any, error) {
		return c.Resources.Appointments.List(ctx, p)
	},
	"notifications": func(ctx context.Context, c *client.Client, p models.ListParams) (any, error) {
		return c.Resources.Notifications.List(ctx, p)
	},
}

var getFuncs = map[string]getFunc{
	"patients": func(ctx context.Context, c *client.Client, id string) (any, error) {
		return c.Resources.Patients.Get(ctx, id)
	},
	"staff": func(ctx context.Context, c *client.Client, id string) (any, error) {
		return c.Resources.Staff.Get(ctx, id)
	},
	"departments": func(ctx context.Context, c *client.Client, id string) (any, error) {
		return c.Resources.Departments.Get(ctx, id)
	},
	"roles": func(ctx context.Context, c *client.Client, id string) (any, error) {
		return c.Resources.Roles.Get(ctx, id)
	},
	"permissions": func(ctx context.Context, c *client.Client, id string) (any, error) {
		return c.Resources.Permissions.Get(ctx, id)
	},
	"shifts": func(ctx context.Context, c *client.Client, id string) (any, error) {
		return c.Resources.Shifts.Get(ctx, id)
	},
	"tasks": func(ctx context.Context, c *client.Client, id string) (any, error) {
		return c.Resources.Tasks.Get(ctx, id)
	},
	"medical-records": func(ctx context.Context, c *client.Client, id string) (any, error) {
		return c.Resources.MedicalRecords.Get(ctx, id)
	},
	"appointments": func(ctx context.Context, c *client.Client, id string) (any, error) {
		return c.Resources.Appointments.Get(ctx, id)
	},
	"notifications": func(ctx context.Context, c *client.Client, id string) (any, error) {
		return c.Resources.Notifications.Get(ctx, id)
	},
}

// createVia binds a resource accessor to the JSON-payload create path.
func createVia[T models.Entity, In any](pick func(*client.Client) *resources.Resource[T, In]) createFunc {
	return func(ctx context.Context, c *client.Client, raw json.RawMessage) (any, error) {
		var in In
		if err := json.Unmarshal(raw, &in); err != nil {
			return nil, fmt.Errorf("invalid payload: %w", err)
		}
		return pick(c).Create(ctx, in)
	}
}

var createFuncs = map[string]createFunc{
	"patients": createVia(func(c *client.Client) *resources.Resource[models.Patient, models.PatientInput] {
		return c.Resources.Patients
	}),
	"staff": createVia(func(c *client.Client) *resources.Resource[models.Staff, models.StaffInput] {
		return c.Resources.Staff
	}),
	"departments": createVia(func(c *client.Client) *resources.Resource[models.Department, models.DepartmentInput] {
		return c.Resources.Departments
	}),
	"roles": createVia(func(c *client.Client) *resources.Resource[models.Role, models.RoleInput] {
		return c.Resources.Roles
	}),
	"permissions": createVia(func(c *client.Client) *resources.Resource[models.Permission, models.PermissionInput] {
		return c.Resources.Permissions
	}),
	"shifts": createVia(func(c *client.Client) *resources.Resource[models.Shift, models.ShiftInput] {
		return c.Resources.Shifts
	}),
	"tasks": createVia(func(c *client.Client) *resources.Resource[models.Task, models.TaskInput] {
		return c.Resources.Tasks
	}),
	"medical-records": createVia(func(c *client.Client) *resources.Resource[models.MedicalRecord, models.MedicalRecordInput] {
		return c.Resources.MedicalRecords
	}),
	"appointments": createVia(func(c *client.Client) *resources.Resource[models.Appointment, models.AppointmentInput] {
		return c.Resources.Appointments
	}),
	"notifications": createVia(func(c *client.Client) *resources.Resource[models.Notification, models.NotificationInput] {
		return c.Resources.Notifications
	}),
}

var removeFuncs = map[string]removeFunc{
	"patients": func(ctx context.Context, c *client.Client, id string) error {
		return c.Resources.Patients.Remove(ctx, id)
	},
	"staff": func(ctx context.Context, c *client.Client, id string) error {
		return c.Resources.Staff.Remove(ctx, id)
	},
	"departments": func(ctx context.Context, c *client.Client, id string) error {
		return c.Resources.Departments.Remove(ctx, id)
	},
	"roles": func(ctx context.Context, c *client.Client, id string) error {
		return c.Resources.Roles.Remove(ctx, id)
	},
	"permissions": func(ctx context.Context, c *client.Client, id string) error {
		return c.Resources.Permissions.Remove(ctx, id)
	},
	"shifts": func(ctx context.Context, c *client.Client, id string) error {
		return c.Resources.Shifts.Remove(ctx, id)
	},
	"tasks": func(ctx context.Context, c *client.Client, id string) error {
		return c.Resources.Tasks.Remove(ctx, id)
	},
	"medical-records": func(ctx context.Context, c *client.Client, id string) error {
		return c.Resources.MedicalRecords.Remove(ctx, id)
	},
	"appointments": func(ctx context.Context, c *client.Client, id string) error {
		return c.Resources.Appointments.Remove(ctx, id)
	},
	"notifications": func(ctx context.Context, c *client.Client, id string) error {
		return c.Resources.Notifications.Remove(ctx, id)
	},
}

func resourceNames() []string {
	names := make([]string, 0, len(listFuncs))
	for name := range listFuncs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var listCmd = &cobra.Command{
	Use:   "list <resource>",
	Short: "List a resource collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fn, ok := listFuncs[args[0]]
		if !ok {
			return fmt.Errorf("unknown resource %q, expected one of %v", args[0], resourceNames())
		}
		page, _ := cmd.Flags().GetInt("page")
		limit, _ := cmd.Flags().GetInt("limit")
		search, _ := cmd.Flags().GetString("search")

		c, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		result, err := fn(cmd.Context(), c, models.ListParams{Page: page, Limit: limit, Search: search})
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var getCmd = &cobra.Command{
	Use:   "get <resource> <id>",
	Short: "Fetch one entity by id",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fn, ok := getFuncs[args[0]]
		if !ok {
			return fmt.Errorf("unknown resource %q, expected one of %v", args[0], resourceNames())
		}

		c, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		result, err := fn(cmd.Context(), c, args[1])
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var createCmd = &cobra.Command{
	Use:   "create <resource> [json]",
	Short: "Create an entity from a JSON payload",
	Long:  "Creates an entity. The payload is the second argument, or stdin when omitted.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fn, ok := createFuncs[args[0]]
		if !ok {
			return fmt.Errorf("unknown resource %q, expected one of %v", args[0], resourceNames())
		}
		payload, err := createPayload(args)
		if err != nil {
			return err
		}

		c, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		result, err := fn(cmd.Context(), c, payload)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func createPayload(args []string) (json.RawMessage, error) {
	if len(args) == 2 {
		return json.RawMessage(args[1]), nil
	}
	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("read payload from stdin: %w", err)
	}
	return json.RawMessage(raw), nil
}

var removeCmd = &cobra.Command{
	Use:   "remove <resource> <id>",
	Short: "Delete one entity by id",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fn, ok := removeFuncs[args[0]]
		if !ok {
			return fmt.Errorf("unknown resource %q, expected one of %v", args[0], resourceNames())
		}

		c, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		if err := fn(cmd.Context(), c, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Removed %s/%s\n", args[0], args[1])
		return nil
	},
}
