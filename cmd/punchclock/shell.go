package main

import (
	"bufio"
	"fmt"

	"github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"
)

func newShellCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive prompt that keeps the login and session cache in memory",
		Long: "Interactive prompt that keeps the login and session cache in memory.\n" +
			"Lines are split like a POSIX shell, so quote arguments that contain spaces:\n" +
			"  register --name 'Ana Maria' --email ana@example.com --password s3cret",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rt.inShell {
				return fmt.Errorf("already in a shell")
			}
			if _, err := rt.identity(cmd.Context()); err != nil {
				return err
			}
			rt.inShell = true
			defer func() { rt.inShell = false }()

			out := cmd.OutOrStdout()
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				_, _ = fmt.Fprint(out, "punchclock> ")
				if !scanner.Scan() {
					_, _ = fmt.Fprintln(out)
					return scanner.Err()
				}
				args, err := shellwords.Parse(scanner.Text())
				if err != nil {
					_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
					continue
				}
				if len(args) == 0 {
					continue
				}
				if args[0] == "exit" || args[0] == "quit" {
					return nil
				}
				line := newRootCmd(rt)
				line.SetArgs(args)
				line.SetIn(cmd.InOrStdin())
				line.SetOut(out)
				line.SetErr(cmd.ErrOrStderr())
				if err := line.ExecuteContext(cmd.Context()); err != nil {
					_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
				}
				if err := cmd.Context().Err(); err != nil {
					return nil
				}
			}
		},
	}
}
