package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hqllang/hql/runtimemap"
	"github.com/spf13/cobra"
)

var maperrorCacheSize int

var maperrorCmd = &cobra.Command{
	Use:   "maperror <file:line:column>",
	Short: "Resolve a JavaScript runtime position back to its HQL origin",
	Long: `Given a JS-level position produced by an engine stack trace
(file:line:column), resolve the HQL-level position via the file's source
map, following external .map files, inline data-URI maps, and one level of
chained compilation.

Example:
  hql maperror out.js:12:4`,
	Args: cobra.ExactArgs(1),
	RunE: runMapError,
}

func init() {
	rootCmd.AddCommand(maperrorCmd)
	maperrorCmd.Flags().IntVar(&maperrorCacheSize, "cache-size", 64, "source map cache size")
}

func runMapError(_ *cobra.Command, args []string) error {
	pos, err := parseFrame(args[0])
	if err != nil {
		return err
	}

	mapper := runtimemap.New(maperrorCacheSize)
	hql, ok := mapper.Resolve(pos)
	if !ok {
		fmt.Println("no mapping")
		return nil
	}
	fmt.Printf("%s:%d:%d\n", hql.File, hql.Line, hql.Column)
	return nil
}

// parseFrame parses "file:line:column", where file may itself contain ':'
// (e.g. a Windows drive letter) by splitting from the right.
func parseFrame(spec string) (runtimemap.Position, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 3 {
		return runtimemap.Position{}, fmt.Errorf("expected file:line:column, got %q", spec)
	}
	colStr := parts[len(parts)-1]
	lineStr := parts[len(parts)-2]
	file := strings.Join(parts[:len(parts)-2], ":")

	line, err := strconv.Atoi(lineStr)
	if err != nil {
		return runtimemap.Position{}, fmt.Errorf("invalid line %q: %w", lineStr, err)
	}
	col, err := strconv.Atoi(colStr)
	if err != nil {
		return runtimemap.Position{}, fmt.Errorf("invalid column %q: %w", colStr, err)
	}
	return runtimemap.Position{File: file, Line: line, Column: col}, nil
}
