package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jsphweid/musicbox/midi"
	"github.com/jsphweid/musicbox/model"
	"github.com/spf13/cobra"
)

var (
	notesFrom float64
	notesAt   float64
	notesJSON bool
)

func init() {
	rootCmd.AddCommand(notesCmd)
	notesCmd.Flags().Float64Var(&notesFrom, "from", 0, "drop notes that end before this many seconds")
	notesCmd.Flags().Float64Var(&notesAt, "at", -1, "only print the notes sounding at this many seconds")
	notesCmd.Flags().BoolVar(&notesJSON, "json", false, "print the note queue as JSON")
}

var notesCmd = &cobra.Command{
	Use:   "notes <midi file>",
	Short: "Prints the note queue of a MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := midi.ReadMidiFile(args[0])
		if err != nil {
			return err
		}
		return printNotes(os.Stdout, q)
	},
}

func printNotes(w io.Writer, q *model.NoteQueue) error {
	if notesAt >= 0 {
		for _, n := range midi.ActiveAt(q, notesAt) {
			fmt.Fprintf(w, "%v\n", midi.NoteName(n))
		}
		return nil
	}
	if notesFrom > 0 {
		q = midi.From(q, notesFrom)
	}
	if notesJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(q)
	}
	fmt.Fprintf(w, "duration: %.3fs\n", q.Duration)
	for _, n := range q.Notes {
		fmt.Fprintf(w, "%8.3f %8.3f %-4s vel %.2f\n", n.Time, n.Duration, n.Name, n.Velocity)
	}
	return nil
}
