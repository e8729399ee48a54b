package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlsh/internal/cli/output"
	"github.com/leapstack-labs/sqlsh/internal/completion"
	"github.com/leapstack-labs/sqlsh/internal/sqlparse"
)

const continuationPrompt = "    -> "

// Shell runs statements and backslash commands against a session.
type Shell struct {
	session     *Session
	r           *output.Renderer
	logger      *slog.Logger
	interactive bool
	buf         strings.Builder
}

// NewShell creates a shell. Interactive shells print row counts and
// timings after every statement.
func NewShell(session *Session, r *output.Renderer, logger *slog.Logger, interactive bool) *Shell {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Shell{session: session, r: r, logger: logger, interactive: interactive}
}

// RunShell connects and runs the shell: the -e statements, piped stdin,
// or an interactive prompt.
func RunShell(cmd *cobra.Command, execute string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	in := cmd.InOrStdin()
	switch {
	case execute != "":
		return NewShell(cmdCtx.Session, cmdCtx.Renderer, cmdCtx.Logger, false).RunBatch(ctx, execute)
	case !output.IsTerminal(in):
		content, err := io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		return NewShell(cmdCtx.Session, cmdCtx.Renderer, cmdCtx.Logger, false).RunBatch(ctx, string(content))
	}

	if cmdCtx.Cfg.AutoRehash {
		_ = cmdCtx.Session.Rehash(ctx, false)
	}
	sh := NewShell(cmdCtx.Session, cmdCtx.Renderer, cmdCtx.Logger, true)
	return sh.RunInteractive(ctx, cmdCtx.Cfg.HistoryFile)
}

// RunInteractive reads lines with readline until \q or end of input.
func (sh *Shell) RunInteractive(ctx context.Context, historyFile string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            sh.r.Prompt(sh.Prompt()),
		HistoryFile:       historyFile,
		AutoComplete:      completion.NewCompleter(sh.session.Engine),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	sh.printBanner(ctx)

	for {
		sh.session.MaybeRehash(ctx)
		rl.SetPrompt(sh.r.Prompt(sh.Prompt()))

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			sh.Reset()
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if sh.HandleLine(ctx, line) {
			break
		}
	}

	sh.r.Println("Bye")
	return nil
}

func (sh *Shell) printBanner(ctx context.Context) {
	sh.r.Println(sh.r.Header("Welcome to sqlsh.") + " Commands end with ; or \\g.")
	if info, err := sh.session.Adapter.ServerInfo(ctx); err == nil {
		sh.r.Printf("Your %s connection id is %d\n", sh.session.Adapter.DialectName(), info.ConnectionID)
		sh.r.Printf("Server version: %s\n", info.Version)
	}
	sh.r.Println(sh.r.Muted("Type '\\h' for help. Press Tab to complete. Type '\\c' to clear the current input statement."))
	sh.r.Println()
}

// Prompt returns the prompt for the next line.
func (sh *Shell) Prompt() string {
	if sh.Pending() {
		return continuationPrompt
	}
	db, ok := sh.session.CurrentDatabase()
	if !ok {
		db = "(none)"
	}
	return fmt.Sprintf("sqlsh [%s]> ", db)
}

// Pending reports whether a statement is partially entered.
func (sh *Shell) Pending() bool {
	return sh.buf.Len() > 0
}

// Reset discards the partially entered statement.
func (sh *Shell) Reset() {
	sh.buf.Reset()
}

// HandleLine processes one line of input. It returns true when the shell
// should exit.
func (sh *Shell) HandleLine(ctx context.Context, line string) bool {
	if !sh.Pending() {
		if strings.TrimSpace(line) == "" {
			return false
		}
		if cmd, args, ok := lookupMeta(strings.TrimLeft(line, " \t")); ok {
			return cmd.run(ctx, sh, args)
		}
	}

	trimmed := strings.TrimRight(line, " \t")
	switch {
	case strings.HasSuffix(trimmed, `\c`):
		sh.Reset()
		return false
	case strings.HasSuffix(trimmed, `\G`):
		sh.append(strings.TrimSuffix(trimmed, `\G`))
		sh.flush(ctx, true)
		return false
	case strings.HasSuffix(trimmed, `\g`):
		sh.append(strings.TrimSuffix(trimmed, `\g`))
		sh.flush(ctx, false)
		return false
	}

	sh.append(line)
	stmts, rest := sqlparse.Split(sh.buf.String())
	sh.buf.Reset()
	if rest = strings.TrimLeft(rest, " \t\r\n"); rest != "" {
		sh.buf.WriteString(rest)
	}
	for _, stmt := range stmts {
		_ = sh.run(ctx, stmt, false)
	}
	return false
}

func (sh *Shell) append(line string) {
	if sh.buf.Len() > 0 {
		sh.buf.WriteByte('\n')
	}
	sh.buf.WriteString(line)
}

// flush runs everything in the buffer; the last statement may lack a
// terminator.
func (sh *Shell) flush(ctx context.Context, vertical bool) {
	stmts, rest := sqlparse.Split(sh.buf.String())
	sh.buf.Reset()
	if hasStatement(rest) {
		stmts = append(stmts, strings.TrimSpace(rest))
	}
	if len(stmts) == 0 {
		sh.r.Error("No query specified")
		return
	}
	for _, stmt := range stmts {
		_ = sh.run(ctx, stmt, vertical)
	}
}

// run executes one statement and renders its outcome. Interactive errors
// are printed and returned; batch errors are only returned.
func (sh *Shell) run(ctx context.Context, stmt string, vertical bool) error {
	res, err := sh.session.Execute(ctx, stmt)
	if err != nil {
		if sh.interactive {
			sh.r.Error(err.Error())
		}
		return err
	}

	switch {
	case res.Set != nil:
		if err := sh.r.Result(res.Set, vertical); err != nil {
			return err
		}
		if sh.interactive {
			sh.r.RowsFooter(len(res.Set.Rows), res.Elapsed)
		}
	case res.Database != "":
		if sh.interactive {
			sh.r.Println("Database changed")
		}
	default:
		if sh.interactive {
			sh.r.AffectedFooter(res.Affected, res.Elapsed)
		}
	}
	if sh.interactive {
		sh.r.Println()
	}
	return nil
}

// RunBatch executes every statement in input and stops at the first
// failure.
func (sh *Shell) RunBatch(ctx context.Context, input string) error {
	stmts, rest := sqlparse.Split(input)
	if hasStatement(rest) {
		stmts = append(stmts, strings.TrimSpace(rest))
	}
	for i, stmt := range stmts {
		if err := sh.run(ctx, stmt, false); err != nil {
			return fmt.Errorf("statement %d: %w", i+1, err)
		}
	}
	return nil
}

// hasStatement reports whether s holds anything besides whitespace and
// comments.
func hasStatement(s string) bool {
	return len(sqlparse.Tokenize(s)) > 1
}
