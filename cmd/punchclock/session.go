package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	worksessiondto "punchclock/internal/modules/worksession/dto"
	apperrors "punchclock/internal/platform/errors"
)

func newSessionCmd(rt *runtime) *cobra.Command {
	session := &cobra.Command{
		Use:               "session",
		Short:             "Clock in, clock out and inspect work sessions",
		PersistentPreRunE: rt.requireIdentity,
	}

	session.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Open a work session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, err := rt.app.SessionCLI.Start(cmd.Context())
			if errors.Is(err, apperrors.ErrSessionAlreadyOpen) {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "server already had an open session; local state resynced")
			}
			printView(cmd.OutOrStdout(), view)
			return err
		},
	})
	session.AddCommand(&cobra.Command{
		Use:   "end",
		Short: "Close the open work session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, err := rt.app.SessionCLI.End(cmd.Context())
			printView(cmd.OutOrStdout(), view)
			return err
		},
	})

	pause := &cobra.Command{Use: "pause", Short: "Pause or resume the open session"}
	pause.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Begin a pause",
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, err := rt.app.SessionCLI.PauseStart(cmd.Context())
			printView(cmd.OutOrStdout(), view)
			return err
		},
	})
	pause.AddCommand(&cobra.Command{
		Use:   "end",
		Short: "Resume after a pause",
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, err := rt.app.SessionCLI.PauseEnd(cmd.Context())
			printView(cmd.OutOrStdout(), view)
			return err
		},
	})
	session.AddCommand(pause)

	var asJSON bool
	status := &cobra.Command{
		Use:   "status",
		Short: "Show the current session, refreshing when the cache is stale",
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, err := rt.app.SessionCLI.Refresh(cmd.Context(), false)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if encErr := enc.Encode(view); encErr != nil {
					return encErr
				}
				return err
			}
			printView(cmd.OutOrStdout(), view)
			return err
		},
	}
	status.Flags().BoolVar(&asJSON, "json", false, "print the view as JSON")
	session.AddCommand(status)

	var force bool
	refresh := &cobra.Command{
		Use:   "refresh",
		Short: "Reload sessions from the server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, err := rt.app.SessionCLI.Refresh(cmd.Context(), force)
			printView(cmd.OutOrStdout(), view)
			return err
		},
	}
	refresh.Flags().BoolVar(&force, "force", false, "ignore the cache window")
	session.AddCommand(refresh)

	session.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List known sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, err := rt.app.SessionCLI.Refresh(cmd.Context(), false)
			if err != nil {
				return err
			}
			if len(view.Sessions) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
				return nil
			}
			for _, s := range view.Sessions {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\n", s.ID, formatTime(&s.StartTime), formatTime(s.EndTime), formatHours(s.TotalHours))
			}
			return nil
		},
	})

	session.AddCommand(&cobra.Command{
		Use:   "today",
		Short: "List today's time records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := rt.app.SessionCLI.Refresh(cmd.Context(), false); err != nil {
				return err
			}
			records := rt.app.SessionCLI.Today()
			if len(records) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no records today")
				return nil
			}
			for _, r := range records {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tsession=%d\n", r.Timestamp.Local().Format("15:04:05"), r.Type, r.SessionID)
			}
			return nil
		},
	})

	session.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show aggregate session statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := rt.app.SessionCLI.Stats(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "sessions=%d hours=%.2f average=%.2f\n", out.TotalSessions, out.TotalHours, out.AverageSessionDuration)
			return nil
		},
	})

	var dir string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write one markdown note per session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dir == "" {
				return fmt.Errorf("--dir is required")
			}
			out, err := rt.app.SessionCLI.Export(cmd.Context(), dir)
			if err != nil {
				return err
			}
			for _, p := range out.Paths {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	export.Flags().StringVar(&dir, "dir", "", "destination directory")
	session.AddCommand(export)

	session.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget the locally cached current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt.app.SessionCLI.ClearCurrent()
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "current session cleared locally")
			return nil
		},
	})

	return session
}

func printView(w io.Writer, view worksessiondto.ViewOutput) {
	if view.Current == nil {
		_, _ = fmt.Fprintf(w, "phase=%s no open session (%d known)\n", view.Phase, len(view.Sessions))
		return
	}
	c := view.Current
	state := "open"
	if c.Paused {
		state = "paused"
	}
	_, _ = fmt.Fprintf(w, "phase=%s session=%d %s since %s\n", view.Phase, c.ID, state, formatTime(&c.StartTime))
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func formatHours(h *float64) string {
	if h == nil {
		return "-"
	}
	return fmt.Sprintf("%.2fh", *h)
}
