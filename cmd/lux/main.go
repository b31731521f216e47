package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vango-dev/lux/internal/config"
	luxerr "github.com/vango-dev/lux/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	faint  = color.New(color.FgHiBlack).SprintFunc()
)

func main() {
	luxerr.AutoColors(os.Stdout)

	var configPath string
	rootCmd := &cobra.Command{
		Use:   "lux",
		Short: "Reactive tree reconciler",
		Long: `lux renders reactive component trees onto display surfaces.

Commands:
  • bench   measure keyed reorder scenarios
  • serve   stream a demo app to websocket clients
  • config  print the effective configuration`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file (default: lux.json or lux.yaml in the project root)")

	load := func() (*config.Config, error) {
		if configPath != "" {
			return config.LoadFile(configPath)
		}
		return config.LoadFromWorkingDir()
	}

	rootCmd.AddCommand(
		benchCmd(load),
		serveCmd(load),
		configCmd(load),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		luxerr.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

type loader func() (*config.Config, error)

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("%s %s\n", green("✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("%s %s\n", yellow("⚠"), fmt.Sprintf(format, args...))
}
