package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/lux/internal/config"
	luxerr "github.com/vango-dev/lux/internal/errors"
)

func configCmd(load loader) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults are applied.

Without a configuration file the defaults are printed.

Examples:
  lux config
  lux config --json
  lux config init lux.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			var data []byte
			if asJSON {
				data, err = json.MarshalIndent(cfg, "", "  ")
				data = append(data, '\n')
			} else {
				data, err = cfg.YAML()
			}
			if err != nil {
				return err
			}
			if p := cfg.Path(); p != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), faint("# "+p))
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of YAML")

	cmd.AddCommand(&cobra.Command{
		Use:   "init [file]",
		Short: "Write a configuration file with the defaults",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.FileNames[1]
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return luxerr.New(luxerr.CodeConfigInvalid).
					WithDetail(path + " already exists").
					WithSuggestion("Remove it or choose another file name")
			}
			if err := config.New().SaveTo(path); err != nil {
				return err
			}
			success("Created %s", filepath.Clean(path))
			return nil
		},
	})

	return cmd
}
