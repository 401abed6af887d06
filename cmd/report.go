package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/jsphweid/musicbox/model"
	"github.com/jsphweid/musicbox/output"
	"github.com/jsphweid/musicbox/score"
	"github.com/jsphweid/musicbox/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report <dir>",
	Short: "Creates a report",
	Long:  `Renders every score under a directory and prints aggregate counts.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, err := analyzeScores(args[0])
		if err != nil {
			return err
		}
		printReport(os.Stdout, rep)
		return nil
	},
}

type scoresReport struct {
	numFiles    int
	numFailed   int
	numMeasures int
	numNotes    int
	numChords   int
	numBeams    int
	beamSizes   []int
	diagnostics map[model.DiagnosticCode]int
	failures    map[string]string
}

func analyzeScores(dir string) (scoresReport, error) {
	report := scoresReport{
		diagnostics: map[model.DiagnosticCode]int{},
		failures:    map[string]string{},
	}
	paths, err := util.GatherAllScorePaths(dir, 0)
	if err != nil {
		return report, err
	}

	opts := renderOptions(0)
	for _, path := range paths {
		report.numFiles += 1
		doc, diags, err := score.Load(path)
		if err == nil {
			var r *model.Render
			r, err = emit(path, doc, diags, opts, output.JSON)
			if err == nil {
				report.add(r)
				continue
			}
		}
		report.numFailed += 1
		report.failures[path] = err.Error()
	}
	return report, nil
}

func (report *scoresReport) add(r *model.Render) {
	for _, c := range r.Commands {
		switch c.Kind {
		case model.CmdSeparator:
			report.numMeasures += 1
		case model.CmdNote:
			report.numNotes += 1
			if len(c.Note.Keys) > 1 {
				report.numChords += 1
			}
		case model.CmdBeam:
			report.numBeams += 1
			report.beamSizes = append(report.beamSizes, c.Beam.Size())
		}
	}
	for _, d := range r.Diagnostics {
		report.diagnostics[d.Code] += 1
	}
}

func printReport(w io.Writer, report scoresReport) {
	fmt.Fprintf(w, "numFiles: %v\n", report.numFiles)
	fmt.Fprintf(w, "numFailed: %v\n", report.numFailed)
	fmt.Fprintf(w, "numMeasures: %v\n", report.numMeasures)
	fmt.Fprintf(w, "numNotes: %v\n", report.numNotes)
	fmt.Fprintf(w, "numChords: %v\n", report.numChords)
	fmt.Fprintf(w, "numBeams: %v\n", report.numBeams)
	if report.numBeams > 0 {
		fmt.Fprintf(w, "avgBeamSize: %.2f\n", float64(util.Sum(report.beamSizes))/float64(report.numBeams))
	}
	for _, code := range util.GetKeys(report.diagnostics) {
		fmt.Fprintf(w, "diagnostics %v: %v\n", code, report.diagnostics[code])
	}
	for _, path := range util.GetKeys(report.failures) {
		fmt.Fprintf(w, "failed %v: %v\n", path, report.failures[path])
	}
}
