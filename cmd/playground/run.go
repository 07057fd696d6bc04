package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aksuhana/JS-PLAY-AROUND/internal/dialect"
	"github.com/aksuhana/JS-PLAY-AROUND/internal/engine"
	"github.com/aksuhana/JS-PLAY-AROUND/internal/storage"
)

var (
	dialectFlag string
	evalFlag    string
)

var runCmd = &cobra.Command{
	Use:   "run [file|-]",
	Short: "Run a snippet once and print its output",
	Long: `Run a JavaScript or TypeScript snippet and print the formatted result.

The dialect comes from the file extension unless --dialect is given. With no
file, or "-", the snippet is read from stdin.

Exit status is 0 on success, 1 when the snippet faults or times out and 2
when a required transpiler is missing.

Examples:
  playground run js/hello.js
  playground run -e "console.log(1 + 1)"
  echo "const n: number = 3; print(n)" | playground run --dialect ts`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{"quiet": "true"},
	RunE:        runRun,
}

func init() {
	runCmd.Flags().StringVarP(&dialectFlag, "dialect", "d", "", "Dialect tag (js, ts); default from file extension")
	runCmd.Flags().StringVarP(&evalFlag, "eval", "e", "", "Run this code instead of reading a file")
	rootCmd.AddCommand(runCmd)
}

// readSnippet returns the source text and the dialect implied by its origin.
func readSnippet(args []string, stdin io.Reader) (string, string, error) {
	if evalFlag != "" {
		if len(args) > 0 {
			return "", "", errors.New("--eval and a file argument are mutually exclusive")
		}
		return evalFlag, string(dialect.JavaScript), nil
	}
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), string(dialect.JavaScript), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("reading snippet: %w", err)
	}
	return string(data), string(dialect.FromFilename(args[0])), nil
}

func runRun(cmd *cobra.Command, args []string) error {
	source, tag, err := readSnippet(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if dialectFlag != "" {
		tag = dialectFlag
	}

	eng, err := newEngine()
	if err != nil {
		return err
	}
	rec := openRecorder()
	defer rec.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := eng.Run(ctx, engine.Request{Dialect: tag, Source: source})
	rec.Record(ctx, out, storage.OriginCLI)

	resp := out.Response()
	switch resp.Status {
	case engine.StatusOK:
		fmt.Fprintln(cmd.OutOrStdout(), resp.Text)
		return nil
	case engine.StatusDependencyMissing:
		fmt.Fprintln(cmd.ErrOrStderr(), renderResponse(resp))
		return &exitError{Code: exitDependencyMissing}
	default:
		fmt.Fprintln(cmd.ErrOrStderr(), renderResponse(resp))
		return &exitError{Code: exitFault}
	}
}
