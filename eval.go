package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xuri/efp"

	"github.com/vimeh/gridcore-sub002/grid"
)

var (
	evalCells   []string
	evalExplain bool

	evalCmd = &cobra.Command{
		Use:   "eval [formula]",
		Short: "Evaluate one formula against an ad hoc grid and print the result",
		Long: `Evaluates a formula without starting the server. Cells referenced by the
formula can be seeded with repeated --cell flags, for example:

  gridcore eval "=SUM(A1:A3)" --cell A1=10 --cell A2=20 --cell A3=30`,
		Args: cobra.ExactArgs(1),
		Run:  runEval,
	}
)

func runEval(cmd *cobra.Command, args []string) {
	for _, binding := range evalCells {
		name, raw, found := strings.Cut(binding, "=")
		if !found {
			log.Fatalf("invalid --cell binding %q, want ADDRESS=VALUE", binding)
		}
		coord, err := grid.ParseCoordinate(name)
		if err != nil {
			log.Fatalf("invalid --cell binding %q: %v", binding, err)
		}
		if _, err := store.Set(coord, raw); err != nil {
			log.Fatalf("invalid --cell binding %q: %v", binding, err)
		}
	}

	text := args[0]
	if evalExplain {
		parser := efp.ExcelParser()
		parser.Parse(strings.TrimPrefix(text, "="))
		fmt.Println(parser.PrettyPrint())
	}
	v, err := calculator.Evaluate(text)
	if err != nil {
		log.Fatalf("eval: %v", err)
	}
	fmt.Println(v.String())
}

func init() {
	evalCmd.Flags().StringArrayVar(&evalCells, "cell", nil, "Seed a cell as ADDRESS=VALUE (repeatable)")
	evalCmd.Flags().BoolVar(&evalExplain, "explain", false, "Print the token breakdown before evaluating")
}
