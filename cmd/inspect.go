package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jsphweid/musicbox/render"
	"github.com/jsphweid/musicbox/score"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <score>",
	Short: "Inspects a score",
	Long:  `Prints every measure's layout slot, resolved notes and beam groups.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspect(os.Stdout, args[0])
	},
}

func inspect(w io.Writer, path string) error {
	doc, diags, err := score.Load(path)
	if err != nil {
		return err
	}
	measures, more, err := render.Prepare(doc, renderOptions(0))
	if err != nil {
		return err
	}
	diags = append(diags, more...)

	fmt.Fprintf(w, "part: %v\n", doc.PartID)
	fmt.Fprintf(w, "measures: %v\n", len(measures))
	for _, mr := range measures {
		s := mr.Slot
		fmt.Fprintf(w, "measure %v: row %v col %v x %.1f clef %v time %v\n",
			doc.Measures[s.Measure].Number, s.Row, s.Column, s.X, s.DrawClef, s.DrawTimeSignature)
		for _, st := range mr.Staves {
			if len(st.Notes) == 0 {
				continue
			}
			fmt.Fprintf(w, "  staff %v:\n", st.Staff)
			for i, n := range st.Notes {
				fmt.Fprintf(w, "    %2d %-12s %-4s stem %-4s flag %v\n",
					i, strings.Join(n.Keys, ","), n.Duration, n.Stem, n.FlagVisible)
			}
			for _, g := range st.Beams {
				fmt.Fprintf(w, "    beam %v-%v (%v, %v)\n", g.Start, g.End, g.Duration, g.Stem)
			}
		}
	}
	for _, d := range diags {
		fmt.Fprintf(w, "diagnostic %v: measure %v staff %v: %v\n", d.Code, d.Measure+1, d.Staff, d.Message)
	}
	return nil
}
