package main

import (
	"fmt"
	"os"

	"github.com/rmongiovi/sdtgen/grammar"
	"github.com/rmongiovi/sdtgen/spec"
	"github.com/spf13/cobra"
)

var generateFlags = struct {
	output     *string
	check      *bool
	compress   *bool
	grammar    *bool
	crossref   *bool
	table      *bool
	verbose    *bool
	debugDumps *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "generate <grammar definition path>",
		Short:   "Generate a table file from a lowered grammar definition",
		Example: `  sdtgen generate language.json -w tables.dat`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runGenerate,
	}
	generateFlags.output = cmd.Flags().StringP("write", "w", "", "table file path ('-' for stdout; default tables.dat)")
	generateFlags.check = cmd.Flags().BoolP("quiet", "q", false, "syntax-check the definition only, write no tables")
	generateFlags.compress = cmd.Flags().BoolP("compress", "c", false, "pack the parser actions into base/check/next form")
	generateFlags.grammar = cmd.Flags().BoolP("grammar", "g", false, "list the standardized grammar")
	generateFlags.crossref = cmd.Flags().BoolP("crossref", "x", false, "list a cross-reference of tokens")
	generateFlags.table = cmd.Flags().BoolP("table", "t", false, "list the LR parsing tables")
	generateFlags.verbose = cmd.Flags().BoolP("verbose", "v", false, "list conflict resolutions")
	generateFlags.debugDumps = cmd.Flags().StringP("debug", "d", "", "debug dumps: any of a (ancestors), e (repair values), f (first sets), i (LR items)")
	rootCmd.AddCommand(cmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) > 0 {
		path = args[0]
	}

	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}

	src := os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}

	def, err := spec.ReadGrammarDefinition(src)
	if err != nil {
		return err
	}

	g, err := grammar.FromDefinition(def)
	if err != nil {
		return err
	}
	if *generateFlags.verbose || cfg.Verbose {
		g.Verbose = os.Stderr
	}

	if *generateFlags.check {
		return nil
	}

	if err := g.Generate(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if *generateFlags.grammar {
		g.DescribeProductions(out)
	}
	if *generateFlags.crossref {
		g.DescribeCrossref(out)
	}
	if *generateFlags.table {
		g.DescribeTable(out)
	}
	for _, dump := range *generateFlags.debugDumps {
		switch dump {
		case 'a':
			g.DescribeAncestors(out)
		case 'e':
			g.DescribeRepair(out)
		case 'f':
			g.DescribeFirst(out)
		case 'i':
			g.DescribeCollection(out)
		default:
			return fmt.Errorf("unknown debug dump: %c", dump)
		}
	}

	tables, err := g.Tables(*generateFlags.compress)
	if err != nil {
		return err
	}

	dest := *generateFlags.output
	if dest == "" {
		dest = cfg.Output
	}
	if dest == "-" {
		return tables.Write(os.Stdout)
	}
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	return tables.Write(f)
}
