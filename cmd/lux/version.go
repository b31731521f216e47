package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// buildInfo describes the running binary.
type buildInfo struct {
	Version string            `json:"version"`
	Commit  string            `json:"commit"`
	Date    string            `json:"date"`
	Go      string            `json:"go"`
	Target  string            `json:"target"`
	Deps    map[string]string `json:"deps,omitempty"`
}

// trackedDeps are the modules whose versions are worth reporting.
var trackedDeps = []string{
	"github.com/expr-lang/expr",
	"github.com/gorilla/websocket",
	"github.com/prometheus/client_golang",
	"go.opentelemetry.io/otel",
}

// readBuildInfo fills in what the linker flags left unset from the
// module build info.
func readBuildInfo() buildInfo {
	info := buildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
		Go:      runtime.Version(),
		Target:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.Commit == "none":
			info.Commit = s.Value
		case s.Key == "vcs.time" && info.Date == "unknown":
			info.Date = s.Value
		}
	}
	for _, dep := range bi.Deps {
		for _, path := range trackedDeps {
			if dep.Path == path {
				if info.Deps == nil {
					info.Deps = make(map[string]string)
				}
				info.Deps[path] = dep.Version
			}
		}
	}
	return info
}

func (b buildInfo) print(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  Version:\t%s\n", b.Version)
	fmt.Fprintf(tw, "  Commit:\t%s\n", b.Commit)
	fmt.Fprintf(tw, "  Built:\t%s\n", b.Date)
	fmt.Fprintf(tw, "  Go:\t%s\n", b.Go)
	fmt.Fprintf(tw, "  Target:\t%s\n", b.Target)
	for _, path := range trackedDeps {
		if v, ok := b.Deps[path]; ok {
			fmt.Fprintf(tw, "  %s\t%s\n", faint(path), v)
		}
	}
	tw.Flush()
}

func versionCmd() *cobra.Command {
	var (
		short  bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the version of the lux CLI, the commit and date it was built
from, and the versions of its main dependencies.

Examples:
  lux version
  lux version --short
  lux version --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := readBuildInfo()
			out := cmd.OutOrStdout()
			switch {
			case short:
				fmt.Fprintln(out, info.Version)
			case asJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			default:
				info.print(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only the version")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	cmd.MarkFlagsMutuallyExclusive("short", "json")

	return cmd
}
