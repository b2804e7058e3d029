package main

import (
	"fmt"
	"os"

	"github.com/rmongiovi/sdtgen/driver"
	"github.com/rmongiovi/sdtgen/spec"
	"github.com/spf13/cobra"
)

var parseFlags = struct {
	source  *string
	listing *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "parse <table file path>",
		Short:   "Parse a text stream with a generated table file",
		Example: `  cat src | sdtgen parse tables.dat -l`,
		Args:    cobra.ExactArgs(1),
		RunE:    runParse,
	}
	parseFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	parseFlags.listing = cmd.Flags().BoolP("listing", "l", false, "print the input as it is parsed")
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("cannot read table file: %w", err)
	}
	tables, err := spec.Read(f)
	f.Close()
	if err != nil {
		return err
	}

	src := os.Stdin
	if *parseFlags.source != "" {
		s, err := os.Open(*parseFlags.source)
		if err != nil {
			return err
		}
		defer s.Close()
		src = s
	}

	cfg, err := loadConfig(*parseFlags.source)
	if err != nil {
		return err
	}

	p := driver.New(tables, src, driver.WithOutput(cmd.OutOrStdout()))
	p.Listing = *parseFlags.listing || cfg.Listing

	// On an irreparable syntax error the diagnostic and its line were
	// already flushed; the nonzero exit is all that remains.
	return p.Parse()
}
