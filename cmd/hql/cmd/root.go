package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set by build flags.
var Version = "0.1.0-dev"

var rootCmd = &cobra.Command{
	Use:   "hql",
	Short: "HQL compiler core",
	Long: `hql compiles HQL, a Lisp-family language, to JavaScript.

This CLI exposes the pipeline's individual stages (lex, read, expand,
build) for debugging alongside the end-to-end compile command.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

func readInput(evalExpr string, args []string) (input, filename string, err error) {
	if evalExpr != "" {
		return evalExpr, "<eval>", nil
	}
	if len(args) == 1 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(content), args[0], nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e for inline code")
}
