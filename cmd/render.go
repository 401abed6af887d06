package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jsphweid/musicbox/constants"
	"github.com/jsphweid/musicbox/logger"
	"github.com/jsphweid/musicbox/output"
	"github.com/jsphweid/musicbox/score"
	"github.com/jsphweid/musicbox/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	renderFormat string
	renderOutput string
	renderMax    int
	renderClean  bool
)

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "json", "json, png, pdf or svg")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "output file for a single score, - for stdout")
	renderCmd.Flags().IntVar(&renderMax, "max", 0, "render at most this many scores (0 for all)")
	renderCmd.Flags().BoolVar(&renderClean, "clean", false, "empty the output directory first")
}

var renderCmd = &cobra.Command{
	Use:   "render <score or dir>...",
	Short: "Renders scores",
	Long: `Renders MusicXML (or pre-converted JSON) scores to draw commands or
a PNG, PDF or SVG preview. Directories are searched for score files.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(renderFormat)
		if err != nil {
			return err
		}
		return Render(args, format, renderOutput, renderMax)
	},
}

// Render renders every score under paths. With a single score, out names
// the output file; otherwise results go to the output directory.
func Render(paths []string, format output.Format, out string, maxNum int) error {
	var scores []string
	for _, p := range paths {
		found, err := util.GatherAllScorePaths(p, maxNum)
		if err != nil {
			return err
		}
		scores = append(scores, found...)
	}
	if maxNum > 0 && len(scores) > maxNum {
		scores = scores[:maxNum]
	}
	if len(scores) == 0 {
		return fmt.Errorf("no scores found in %s", strings.Join(paths, ", "))
	}
	if out != "" && len(scores) > 1 {
		return fmt.Errorf("--output needs a single score, found %d", len(scores))
	}

	dir := constants.GetOutDir()
	if renderClean {
		if err := util.RecreateDir(dir); err != nil {
			return err
		}
	} else if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var failed int
	for _, path := range scores {
		dest := out
		if dest == "" {
			base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			dest = filepath.Join(dir, base+format.Ext())
		}
		if err := renderOne(path, format, dest); err != nil {
			failed++
			logger.ErrorWithFields("render failed", err, zap.String("score", path))
			continue
		}
		logger.Log.Info("rendered", zap.String("score", path), zap.String("output", dest))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scores failed", failed, len(scores))
	}
	return nil
}

func renderOne(path string, format output.Format, dest string) error {
	doc, diags, err := score.Load(path)
	if err != nil {
		return err
	}
	r, err := emit(path, doc, diags, renderOptions(0), format)
	if err != nil {
		return err
	}

	if dest == "-" {
		return output.Write(os.Stdout, r, format, output.Options{FontPath: constants.GetFontPath()})
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	if err := output.Write(f, r, format, output.Options{FontPath: constants.GetFontPath()}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
