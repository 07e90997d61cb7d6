package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	userdto "punchclock/internal/modules/user/dto"
)

func newUserCmd(rt *runtime) *cobra.Command {
	user := &cobra.Command{
		Use:               "user",
		Short:             "Manage user accounts",
		PersistentPreRunE: rt.requireIdentity,
	}

	user.AddCommand(&cobra.Command{
		Use:     "list",
		Short:   "List users",
		PreRunE: rt.requireAdmin,
		RunE: func(cmd *cobra.Command, _ []string) error {
			users, err := rt.app.UserCLI.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(users) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no users")
				return nil
			}
			for _, u := range users {
				printUser(cmd, u)
			}
			return nil
		},
	})

	user.AddCommand(&cobra.Command{
		Use:     "get <id>",
		Short:   "Show one user",
		Args:    cobra.ExactArgs(1),
		PreRunE: rt.requireAdmin,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			u, err := rt.app.UserCLI.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			printUser(cmd, u)
			return nil
		},
	})

	var name, email, password, role string
	create := &cobra.Command{
		Use:     "create",
		Short:   "Create a user",
		PreRunE: rt.requireAdmin,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if name == "" || email == "" {
				return fmt.Errorf("--name and --email are required")
			}
			if err := rt.secret(cmd, &password, "password", "Initial password"); err != nil {
				return err
			}
			u, err := rt.app.UserCLI.Create(cmd.Context(), name, email, password, role)
			if err != nil {
				return err
			}
			printUser(cmd, u)
			return nil
		},
	}
	create.Flags().StringVar(&name, "name", "", "display name")
	create.Flags().StringVar(&email, "email", "", "account email")
	create.Flags().StringVar(&password, "password", "", "initial password (prompted when omitted)")
	create.Flags().StringVar(&role, "role", "USER", "role: USER|ADMIN")
	user.AddCommand(create)

	var newName, newEmail, newRole string
	update := &cobra.Command{
		Use:     "update <id>",
		Short:   "Change name, email or role",
		Args:    cobra.ExactArgs(1),
		PreRunE: rt.requireAdmin,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			input := userdto.UpdateInput{ID: id}
			if cmd.Flags().Changed("name") {
				input.Name = &newName
			}
			if cmd.Flags().Changed("email") {
				input.Email = &newEmail
			}
			if cmd.Flags().Changed("role") {
				input.Role = &newRole
			}
			u, err := rt.app.UserCLI.Update(cmd.Context(), input)
			if err != nil {
				return err
			}
			printUser(cmd, u)
			return nil
		},
	}
	update.Flags().StringVar(&newName, "name", "", "new display name")
	update.Flags().StringVar(&newEmail, "email", "", "new email")
	update.Flags().StringVar(&newRole, "role", "", "new role: USER|ADMIN")
	user.AddCommand(update)

	user.AddCommand(&cobra.Command{
		Use:     "delete <id>",
		Short:   "Delete a user",
		Args:    cobra.ExactArgs(1),
		PreRunE: rt.requireAdmin,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			if err := rt.app.UserCLI.Delete(cmd.Context(), id); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted user %d\n", id)
			return nil
		},
	})

	var current, next string
	passwordCmd := &cobra.Command{
		Use:   "password <id>",
		Short: "Change a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			if me, ok := rt.app.AuthCLI.WhoAmI(); ok && me.ID == strconv.FormatInt(id, 10) {
				if err := rt.secret(cmd, &current, "current", "Current password"); err != nil {
					return err
				}
			}
			if err := rt.secret(cmd, &next, "new", "New password"); err != nil {
				return err
			}
			if err := rt.app.UserCLI.ChangePassword(cmd.Context(), id, current, next); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "password changed")
			return nil
		},
	}
	passwordCmd.Flags().StringVar(&current, "current", "", "current password (prompted for your own account)")
	passwordCmd.Flags().StringVar(&next, "new", "", "new password (prompted when omitted)")
	user.AddCommand(passwordCmd)

	user.AddCommand(&cobra.Command{
		Use:   "stats <id>",
		Short: "Show a user's session statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			out, err := rt.app.UserCLI.Stats(cmd.Context(), id)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "sessions=%d hours=%.2f average=%.2f last=%s\n",
				out.TotalSessions, out.TotalHours, out.AverageSessionDuration, formatTime(out.LastSession))
			return nil
		},
	})

	return user
}

func parseUserID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", raw)
	}
	return id, nil
}

func printUser(cmd *cobra.Command, u userdto.UserOutput) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role)
}
