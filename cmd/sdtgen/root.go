package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sdtgen",
	Short: "Generate LALR(1) parsing tables with automatic error repair",
	Long: `sdtgen provides two features:
- Generates LALR(1) parsing tables with locally least-cost error repair
  support from a lowered grammar definition.
- Parses a text stream with a generated table file, repairing syntax
  errors as it goes.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}

// config holds the defaults an sdtgen.toml next to the input may override.
type config struct {
	Output  string `toml:"output"`
	Listing bool   `toml:"listing"`
	Verbose bool   `toml:"verbose"`
}

// loadConfig reads sdtgen.toml from the input's directory when present.
func loadConfig(inputPath string) (*config, error) {
	cfg := &config{
		Output: "tables.dat",
	}
	dir := "."
	if inputPath != "" {
		dir = filepath.Dir(inputPath)
	}
	path := filepath.Join(dir, "sdtgen.toml")
	if _, err := os.Stat(path); err != nil {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("malformed %v: %w", path, err)
	}
	return cfg, nil
}
