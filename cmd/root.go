package cmd

import (
	"github.com/jsphweid/musicbox/constants"
	"github.com/jsphweid/musicbox/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "musicbox",
	Short: "Lays out grand staff scores",
	Long: `musicbox turns MusicXML scores into grand staff layouts, previews and
MIDI, and serves the recognition and layout API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := constants.Init(cfgFile); err != nil {
			return err
		}
		return logger.Initialize(constants.GetLogLevel(), constants.GetLogFile())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	flags.String("out", "./out", "output directory")
	flags.Float64("width", 760, "canvas width")
	flags.Bool("strict", false, "reject measures that do not fill the time signature")
	flags.String("log-level", "info", "debug, info, warn or error")
	flags.String("log-file", "", "also write JSON logs to this file")

	viper.BindPFlag("out_dir", flags.Lookup("out"))
	viper.BindPFlag("canvas_width", flags.Lookup("width"))
	viper.BindPFlag("strict", flags.Lookup("strict"))
	viper.BindPFlag("log.level", flags.Lookup("log-level"))
	viper.BindPFlag("log.file", flags.Lookup("log-file"))
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
