package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hqllang/hql/compiler"
	"github.com/hqllang/hql/config"
	"github.com/spf13/cobra"
)

var (
	buildOutputFile string
	buildSourceMap  string
	buildTarget     string
)

var buildCmd = &cobra.Command{
	Use:   "build [file]",
	Short: "Compile an HQL file to JavaScript",
	Long: `Compile an HQL program to JavaScript, writing the output next to the
source file (or to -o) and, unless --source-map=none, a source map.

Examples:
  hql build script.hql
  hql build script.hql -o out.js --source-map external
  hql build script.hql --source-map none`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVarP(&buildOutputFile, "output", "o", "", "output file (default: <input>.js)")
	buildCmd.Flags().StringVar(&buildSourceMap, "source-map", "", "inline|external|none (default from .hqlrc.yaml, else inline)")
	buildCmd.Flags().StringVar(&buildTarget, "target", "", "JavaScript dialect (default from .hqlrc.yaml, else es2020)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	opts, err := config.Load(filepath.Dir(filename))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	opts.CurrentFile = filename
	outFile := buildOutputFile
	if outFile == "" {
		outFile = defaultOutFile(filename)
	}
	opts.OutFile = outFile
	if buildSourceMap != "" {
		opts.SourceMap = config.SourceMapMode(buildSourceMap)
	}
	if buildTarget != "" {
		opts.Target = buildTarget
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		opts.Verbose = true
	}

	res, err := compiler.Compile(string(content), filename, opts)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outFile, []byte(res.JS), 0o644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", outFile, err)
	}
	if res.MapFile != "" {
		if err := os.WriteFile(res.MapFile, []byte(res.Map), 0o644); err != nil {
			return fmt.Errorf("failed to write source map %s: %w", res.MapFile, err)
		}
	}

	if opts.Verbose {
		fmt.Fprintf(os.Stderr, "Compiled %s -> %s\n", filename, outFile)
	} else {
		fmt.Printf("Compiled %s -> %s\n", filename, outFile)
	}
	return nil
}

func defaultOutFile(filename string) string {
	ext := filepath.Ext(filename)
	if ext != "" {
		return strings.TrimSuffix(filename, ext) + ".js"
	}
	return filename + ".js"
}
