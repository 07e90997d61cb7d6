package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// secret fills *value when its flag was left empty: from a hidden terminal
// prompt, or one line of piped stdin. Inside the shell piped input belongs to
// the prompt loop, so there the flag is required.
func (rt *runtime) secret(cmd *cobra.Command, value *string, flag, label string) error {
	if *value != "" {
		return nil
	}
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: ", label)
		raw, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return fmt.Errorf("read %s: %w", label, err)
		}
		*value = string(raw)
	} else {
		if rt.inShell {
			return fmt.Errorf("--%s is required", flag)
		}
		if rt.stdin == nil {
			rt.stdin = bufio.NewReader(in)
		}
		line, err := rt.stdin.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read %s: %w", label, err)
		}
		*value = strings.TrimRight(line, "\r\n")
	}
	if *value == "" {
		return fmt.Errorf("--%s is required", flag)
	}
	return nil
}
