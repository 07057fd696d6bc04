package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/aksuhana/JS-PLAY-AROUND/internal/dialect"
	"github.com/aksuhana/JS-PLAY-AROUND/internal/engine"
	"github.com/aksuhana/JS-PLAY-AROUND/internal/storage"
)

var replDialectFlag string

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive snippet loop",
	Long: `Start an interactive loop. Every entry runs as a fresh, independent
snippet: nothing carries over between entries.

End a line with \ to continue the entry on the next line. Ctrl+C cancels
a running snippet.

Examples:
  playground repl
  playground repl --dialect ts`,
	Annotations: map[string]string{"quiet": "true"},
	RunE:        runREPL,
}

func init() {
	replCmd.Flags().StringVarP(&replDialectFlag, "dialect", "d", "js", "Starting dialect (js, ts)")
	rootCmd.AddCommand(replCmd)
}

// replState tracks the dialect and the cancel func of the running snippet.
type replState struct {
	dialect dialect.Dialect

	mu     sync.Mutex
	cancel context.CancelFunc
}

func (s *replState) prompt(continuation bool) string {
	if continuation {
		return dimStyle.Render("...") + " "
	}
	if s.dialect == dialect.TypeScript {
		return promptTSStyle.Render("ts>") + " "
	}
	return promptJSStyle.Render("js>") + " "
}

func (s *replState) setCancel(c context.CancelFunc) {
	s.mu.Lock()
	s.cancel = c
	s.mu.Unlock()
}

func (s *replState) interrupt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

func runREPL(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}
	rec := openRecorder()
	defer rec.Close()

	state := &replState{dialect: dialect.Resolve(replDialectFlag).Dialect}

	fmt.Println(headerStyle.Render("Playground REPL"))
	fmt.Println(dimStyle.Render(fmt.Sprintf("Deadline %s per entry | Type /help for commands, /quit to exit", eng.Timeout())))
	fmt.Println()

	historyFile := filepath.Join(os.TempDir(), "playground_history")
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".playground", "repl_history")
		_ = os.MkdirAll(filepath.Dir(historyFile), 0o755)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          state.prompt(false),
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	// Ctrl+C while a snippet runs cancels that snippet, not the REPL.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		for range sigCh {
			state.interrupt()
		}
	}()

	var pending []string
	for {
		rl.SetPrompt(state.prompt(len(pending) > 0))
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) && len(pending) > 0 {
				pending = nil
				continue
			}
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				fmt.Println("\nGoodbye!")
				return nil
			}
			return err
		}

		if strings.HasSuffix(line, `\`) {
			pending = append(pending, strings.TrimSuffix(line, `\`))
			continue
		}
		entry := strings.Join(append(pending, line), "\n")
		pending = nil

		trimmed := strings.TrimSpace(entry)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "/") && !strings.Contains(trimmed, "\n") {
			if quit := handleCommand(trimmed, state); quit {
				return nil
			}
			continue
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		state.setCancel(cancel)
		out := eng.Run(ctx, engine.Request{Dialect: string(state.dialect), Source: entry})
		state.setCancel(nil)
		cancel()

		rec.Record(context.Background(), out, storage.OriginREPL)
		resp := out.Response()
		fmt.Println(renderResponse(resp))
		if resp.Status != engine.StatusOK {
			fmt.Println(dimStyle.Render(fmt.Sprintf("(%s, %dms)", resp.Status, resp.DurationMs)))
		}
	}
}

// handleCommand runs a slash command and reports whether to quit.
func handleCommand(input string, state *replState) bool {
	switch strings.ToLower(strings.Fields(input)[0]) {
	case "/quit", "/exit", "/q":
		fmt.Println("Goodbye!")
		return true
	case "/js":
		state.dialect = dialect.JavaScript
		fmt.Println("Dialect: JavaScript")
	case "/ts":
		state.dialect = dialect.TypeScript
		fmt.Println("Dialect: TypeScript")
	case "/help":
		fmt.Println("Commands:")
		fmt.Println("  /js       - Run entries as JavaScript")
		fmt.Println("  /ts       - Run entries as TypeScript")
		fmt.Println("  /help     - Show this help")
		fmt.Println("  /quit     - Exit")
		fmt.Println()
		fmt.Println("End a line with \\ to continue the entry on the next line.")
	default:
		fmt.Printf("Unknown command: %s (try /help)\n", input)
	}
	fmt.Println()
	return false
}
