package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vango-dev/livetree/pkg/dom"
	"github.com/vango-dev/livetree/pkg/reactive"
	"github.com/vango-dev/livetree/pkg/reconcile"
	"github.com/vango-dev/livetree/pkg/vdom"
)

type benchConfig struct {
	widths  []int
	heights []int
	sizes   []int
	iters   int
}

func benchCmd(a *app) *cobra.Command {
	cfg := benchConfig{
		widths:  []int{1, 10, 100},
		heights: []int{1, 10, 100},
		sizes:   []int{10, 100, 1_000},
		iters:   100,
	}
	var only string

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark propagation and reconciliation",
		Long: `Measure flush latency over width × height derived chains and keyed
reconcile latency over lists of increasing size.

Examples:
  livetree bench
  livetree bench --only reactive --iters 1000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if only == "" || only == "reactive" {
				if err := benchPropagation(out, a, cfg); err != nil {
					return err
				}
			}
			if only == "" || only == "reconcile" {
				if err := benchReconcile(out, a, cfg); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&cfg.widths, "widths", cfg.widths, "Observer counts per source")
	cmd.Flags().IntSliceVar(&cfg.heights, "heights", cfg.heights, "Derived chain lengths")
	cmd.Flags().IntSliceVar(&cfg.sizes, "sizes", cfg.sizes, "Keyed list sizes")
	cmd.Flags().IntVar(&cfg.iters, "iters", cfg.iters, "Iterations per case")
	cmd.Flags().StringVar(&only, "only", "", "Run only reactive or reconcile")

	return cmd
}

func newTimingTable(w io.Writer, title string, extra ...any) table.Writer {
	tbl := table.NewWriter()
	tbl.SetTitle(title)
	tbl.SetOutputMirror(w)
	header := table.Row{"benchmark", "avg", "min", "p75", "p99", "max"}
	tbl.AppendHeader(append(header, extra...))
	return tbl
}

func timingRow(name string, calc *tachymeter.Metrics, extra ...any) table.Row {
	row := table.Row{name, calc.Time.Avg, calc.Time.Min, calc.Time.P75, calc.Time.P99, calc.Time.Max}
	return append(row, extra...)
}

func benchPropagation(w io.Writer, a *app, cfg benchConfig) error {
	tbl := newTimingTable(w, "Propagation", "runs")

	for _, width := range cfg.widths {
		for _, height := range cfg.heights {
			tach := tachymeter.New(&tachymeter.Config{Size: cfg.iters})

			s := reactive.NewScheduler(a.schedulerOptions()...)
			src := reactive.NewCell(s, 1)
			runs := 0
			for i := 0; i < width; i++ {
				last := reactive.FromCell(src)
				for j := 0; j < height; j++ {
					prev := last
					last = reactive.FromDerived(reactive.NewDerived(s, func() int {
						return prev.Get() + 1
					}))
				}
				end := last
				o := reactive.NewObserver(s, func() error {
					end.Get()
					runs++
					return nil
				})
				if err := o.Update(); err != nil {
					return err
				}
			}

			runs = 0
			for i := 0; i < cfg.iters; i++ {
				start := time.Now()
				src.Set(src.Peek() + 1)
				s.Tasks().Drain()
				tach.AddTime(time.Since(start))
			}

			tbl.AppendRow(timingRow(fmt.Sprintf("propagate: %d * %d", width, height), tach.Calc(),
				humanize.Comma(int64(runs))))
		}
	}

	tbl.Render()
	return nil
}

func keyedItems(n, shift int) *vdom.VNode {
	items := make([]*vdom.VNode, n)
	for i := range items {
		k := (i + shift) % n
		items[i] = vdom.Li(vdom.Key(k), vdom.Class("item"), vdom.Textf("item %d", k))
	}
	return vdom.Ul(items)
}

func benchReconcile(w io.Writer, a *app, cfg benchConfig) error {
	tbl := newTimingTable(w, "Reconcile", "mutations")

	for _, size := range cfg.sizes {
		if size < 1 {
			continue
		}
		tach := tachymeter.New(&tachymeter.Config{Size: cfg.iters})

		doc := dom.NewDocument()
		root, err := doc.Build(keyedItems(size, 0), a.buildOptions()...)
		if err != nil {
			return err
		}
		doc.ResetOps()
		r := reconcile.New[*dom.Node](doc, reconcile.Hooks[*dom.Node]{}, a.reconcileOptions()...)

		for i := 1; i <= cfg.iters; i++ {
			next := keyedItems(size, i)
			start := time.Now()
			if err := r.Reconcile(root, next); err != nil {
				return err
			}
			tach.AddTime(time.Since(start))
		}

		tbl.AppendRow(timingRow(fmt.Sprintf("rotate keyed: %s", humanize.Comma(int64(size))), tach.Calc(),
			humanize.Comma(int64(doc.Mutations()))))
	}

	tbl.Render()
	return nil
}
