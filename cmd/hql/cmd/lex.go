package cmd

import (
	"fmt"

	"github.com/hqllang/hql/lexer"
	"github.com/hqllang/hql/token"
	"github.com/spf13/cobra"
)

var (
	lexEvalExpr string
	lexShowPos  bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize an HQL file or expression",
	Long: `Tokenize (lex) an HQL program and print the resulting tokens.

Examples:
  hql lex script.hql
  hql lex -e "(+ 1 2)"
  hql lex --show-pos script.hql`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().StringVarP(&lexEvalExpr, "eval", "e", "", "tokenize inline code instead of reading from a file")
	lexCmd.Flags().BoolVar(&lexShowPos, "show-pos", false, "show token positions (line:column)")
}

func runLex(_ *cobra.Command, args []string) error {
	input, filename, err := readInput(lexEvalExpr, args)
	if err != nil {
		return err
	}

	l := lexer.New(input, filename)
	for {
		tok := l.NextToken()
		printToken(tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return nil
}

func printToken(tok token.Token) {
	out := fmt.Sprintf("%-10s %q", tok.Kind, tok.Literal)
	if lexShowPos {
		out += fmt.Sprintf(" @%d:%d", tok.Pos.Line, tok.Pos.Column)
	}
	fmt.Println(out)
}
