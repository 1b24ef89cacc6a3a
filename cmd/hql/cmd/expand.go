package cmd

import (
	"fmt"

	"github.com/hqllang/hql/env"
	"github.com/hqllang/hql/expander"
	"github.com/hqllang/hql/reader"
	"github.com/spf13/cobra"
)

var expandEvalExpr string

var expandCmd = &cobra.Command{
	Use:   "expand [file]",
	Short: "Macro-expand an HQL file or expression and print the result",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExpand,
}

func init() {
	rootCmd.AddCommand(expandCmd)
	expandCmd.Flags().StringVarP(&expandEvalExpr, "eval", "e", "", "expand inline code instead of a file")
}

func runExpand(_ *cobra.Command, args []string) error {
	input, filename, err := readInput(expandEvalExpr, args)
	if err != nil {
		return err
	}

	forms, err := reader.ReadAllSource(input, filename)
	if err != nil {
		return err
	}

	frame := env.NewRoot()
	if err := expander.RegisterBuiltins(frame); err != nil {
		return err
	}
	expanded, err := expander.New().Expand(forms, frame)
	if err != nil {
		return err
	}
	for i, f := range expanded {
		fmt.Printf("[%d] %s\n", i, f)
	}
	return nil
}
