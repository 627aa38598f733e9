package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/lazyrel/pkg/adapter"
	"github.com/spf13/cobra"
)

// runQueryREPL runs an interactive SQL loop against the connected adapter.
// Statements end with a semicolon; \q or Ctrl-D exits.
func runQueryREPL(cmd *cobra.Command, db adapter.Adapter, format string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "lazyrel> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "\\q",
	})
	if err != nil {
		return fmt.Errorf("failed to start REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	fmt.Fprintln(out, "Interactive SQL. End statements with ';', exit with \\q.")

	var buf strings.Builder
	for {
		prompt := "lazyrel> "
		if buf.Len() > 0 {
			prompt = "    ...> "
		}
		rl.SetPrompt(prompt)

		line, err := rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			buf.Reset()
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}

		trimmed := strings.TrimSpace(line)
		if buf.Len() == 0 && (trimmed == "\\q" || trimmed == "exit" || trimmed == "quit") {
			return nil
		}
		if trimmed == "" {
			continue
		}

		buf.WriteString(line)
		buf.WriteString("\n")
		if !strings.HasSuffix(trimmed, ";") {
			continue
		}

		stmt := strings.TrimSuffix(strings.TrimSpace(buf.String()), ";")
		buf.Reset()

		if err := executeAndRender(ctx, out, db, stmt, format); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
	}
}
