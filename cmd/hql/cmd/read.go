package cmd

import (
	"fmt"

	"github.com/hqllang/hql/reader"
	"github.com/spf13/cobra"
)

var readEvalExpr string

var readCmd = &cobra.Command{
	Use:   "read [file]",
	Short: "Parse an HQL file or expression and print its AST forms",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().StringVarP(&readEvalExpr, "eval", "e", "", "read inline code instead of a file")
}

func runRead(_ *cobra.Command, args []string) error {
	input, filename, err := readInput(readEvalExpr, args)
	if err != nil {
		return err
	}

	forms, err := reader.ReadAllSource(input, filename)
	if err != nil {
		return err
	}
	for i, f := range forms {
		fmt.Printf("[%d] %s\n", i, f)
	}
	return nil
}
