package main

import (
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vango-dev/lux/pkg/reconcile"
	"github.com/vango-dev/lux/pkg/surface"
	"github.com/vango-dev/lux/pkg/vdom"
)

// scenario turns the keys of a list into the keys of its next version.
type scenario struct {
	name string
	next func(keys []string, rng *rand.Rand) []string
}

var scenarios = []scenario{
	{"swap", func(k []string, _ *rand.Rand) []string {
		out := clone(k)
		if len(out) > 3 {
			out[1], out[len(out)-2] = out[len(out)-2], out[1]
		}
		return out
	}},
	{"reverse", func(k []string, _ *rand.Rand) []string {
		out := clone(k)
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
		return out
	}},
	{"rotate", func(k []string, _ *rand.Rand) []string {
		if len(k) == 0 {
			return nil
		}
		return append([]string{k[len(k)-1]}, k[:len(k)-1]...)
	}},
	{"insert", func(k []string, _ *rand.Rand) []string {
		mid := len(k) / 2
		out := append(clone(k[:mid]), "new-1", "new-2")
		return append(out, k[mid:]...)
	}},
	{"remove", func(k []string, _ *rand.Rand) []string {
		if len(k) < 2 {
			return nil
		}
		mid := len(k) / 2
		return append(clone(k[:mid-1]), k[mid+1:]...)
	}},
	{"shuffle", func(k []string, rng *rand.Rand) []string {
		out := clone(k)
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out
	}},
	{"churn", func(k []string, rng *rand.Rand) []string {
		out := clone(k)
		for i := range out {
			if rng.Intn(10) == 0 {
				out[i] = "churn-" + strconv.Itoa(i)
			}
		}
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out
	}},
}

func clone(k []string) []string {
	return append([]string(nil), k...)
}

func keyedList(keys []string) *vdom.Node {
	items := make([]any, 0, len(keys))
	for _, k := range keys {
		items = append(items, vdom.Li(vdom.Key(k), k))
	}
	return vdom.Ul(items...)
}

// benchResult holds the surface ops issued by one patch.
type benchResult struct {
	name     string
	ops      map[surface.OpKind]int
	total    int
	duration time.Duration
}

// runScenario mounts a keyed list of size items, patches it to the
// scenario's next version and counts the ops of the patch.
func runScenario(sc scenario, size, threshold int, seed int64) benchResult {
	keys := make([]string, size)
	for i := range keys {
		keys[i] = "k" + strconv.Itoa(i)
	}
	next := sc.next(keys, rand.New(rand.NewSource(seed)))

	mem := surface.NewMemory()
	r := reconcile.New(mem, reconcile.WithBruteForceThreshold(threshold))
	old := keyedList(keys)
	r.Render(old, mem.Root(), 0)
	mem.ResetOps()

	start := time.Now()
	r.Patch(old, keyedList(next), mem.Root())
	res := benchResult{name: sc.name, ops: map[surface.OpKind]int{}, duration: time.Since(start)}
	for _, op := range mem.Ops() {
		res.ops[op.Kind]++
		res.total++
	}
	return res
}

var benchColumns = []surface.OpKind{surface.OpCreate, surface.OpInsert, surface.OpMove, surface.OpRemove, surface.OpSetText}

func printResults(w io.Writer, results []benchResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := color.New(color.Bold).SprintFunc()
	moves := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintf(tw, "%s\t", header("scenario"))
	for _, k := range benchColumns {
		fmt.Fprintf(tw, "%s\t", header(k.String()))
	}
	fmt.Fprintf(tw, "%s\t%s\n", header("total"), header("time"))

	for _, r := range results {
		fmt.Fprintf(tw, "%s\t", r.name)
		for _, k := range benchColumns {
			n := strconv.Itoa(r.ops[k])
			if k == surface.OpMove && r.ops[k] > 0 {
				n = moves(n)
			}
			fmt.Fprintf(tw, "%s\t", n)
		}
		fmt.Fprintf(tw, "%s\t%s\n", green(r.total), faint(r.duration.Round(time.Microsecond)))
	}
	tw.Flush()
}

func benchCmd(load loader) *cobra.Command {
	var (
		size      int
		threshold int
		seed      int64
		only      []string
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Count surface ops of keyed list reorders",
		Long: `Mount a keyed list, patch it to a reordered version and print the
surface ops the patch issued.

Scenarios: swap, reverse, rotate, insert, remove, shuffle, churn.

Examples:
  lux bench
  lux bench --size=1000 --threshold=0
  lux bench --scenario=shuffle --seed=7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("threshold") {
				cfg, err := load()
				if err != nil {
					return err
				}
				threshold = cfg.Threshold()
			}
			if size < 1 {
				return fmt.Errorf("size must be positive, got %d", size)
			}

			selected := map[string]bool{}
			for _, name := range only {
				selected[name] = true
			}

			var results []benchResult
			for _, sc := range scenarios {
				if len(selected) > 0 && !selected[sc.name] {
					continue
				}
				results = append(results, runScenario(sc, size, threshold, seed))
			}
			if len(results) == 0 {
				warn("No scenario matched %v", only)
				return nil
			}

			info("size=%d threshold=%d seed=%d", size, threshold, seed)
			fmt.Println()
			printResults(cmd.OutOrStdout(), results)
			return nil
		},
	}

	cmd.Flags().IntVarP(&size, "size", "n", 100, "Number of list items")
	cmd.Flags().IntVarP(&threshold, "threshold", "t", reconcile.DefaultBruteForceThreshold, "Largest keyed window matched by linear scan (default from config)")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Seed of the shuffle scenarios")
	cmd.Flags().StringSliceVarP(&only, "scenario", "s", nil, "Run only the named scenarios")

	return cmd
}
