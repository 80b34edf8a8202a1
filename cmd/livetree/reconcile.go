package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vango-dev/livetree/pkg/dom"
	"github.com/vango-dev/livetree/pkg/reconcile"
	"github.com/vango-dev/livetree/pkg/vdom"
)

func reconcileCmd(a *app) *cobra.Command {
	var (
		showOps   bool
		showStats bool
	)

	cmd := &cobra.Command{
		Use:   "reconcile <from.json> <to.json>",
		Short: "Reconcile one descriptor document into another",
		Long: `Build the live tree described by from.json, reconcile it against
to.json and print the resulting HTML.

Examples:
  livetree reconcile before.json after.json
  livetree reconcile --ops before.json after.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := vdom.DecodeFile(args[0])
			if err != nil {
				return err
			}
			to, err := vdom.DecodeFile(args[1])
			if err != nil {
				return err
			}

			doc := dom.NewDocument()
			root, err := doc.Build(from, a.buildOptions()...)
			if err != nil {
				return err
			}
			doc.ResetOps()

			r := reconcile.New[*dom.Node](doc, reconcile.Hooks[*dom.Node]{}, a.reconcileOptions()...)
			if err := r.ReconcileContext(cmd.Context(), root, to); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, dom.Render(root))
			if showOps {
				renderOps(out, doc.Ops())
			}
			if showStats {
				renderStats(out, r.LastStats())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showOps, "ops", false, "Print the recorded mutations")
	cmd.Flags().BoolVar(&showStats, "stats", true, "Print reconcile statistics")

	return cmd
}

func renderOps(w io.Writer, ops []vdom.Patch) {
	tbl := table.NewWriter()
	tbl.SetTitle("Mutations")
	tbl.SetOutputMirror(w)
	tbl.AppendHeader(table.Row{"#", "op", "target", "parent", "before", "key", "value"})
	for i, p := range ops {
		tbl.AppendRow(table.Row{i + 1, p.Op, p.Target, p.Parent, p.Before, p.Key, p.Value})
	}
	tbl.Render()
}

func renderStats(w io.Writer, s reconcile.Stats) {
	tbl := table.NewWriter()
	tbl.SetTitle("Reconcile")
	tbl.SetOutputMirror(w)
	tbl.AppendHeader(table.Row{"added", "preserved", "moved", "discarded", "vetoed", "attribute writes"})
	tbl.AppendRow(table.Row{
		humanize.Comma(int64(s.Added)),
		humanize.Comma(int64(s.Preserved)),
		humanize.Comma(int64(s.Moved)),
		humanize.Comma(int64(s.Discarded)),
		humanize.Comma(int64(s.Vetoed)),
		humanize.Comma(int64(s.AttributeWrites)),
	})
	tbl.Render()
}
