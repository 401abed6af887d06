package cmd

import (
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/jsphweid/musicbox/constants"
	"github.com/jsphweid/musicbox/logger"
	"github.com/jsphweid/musicbox/output"
	"github.com/jsphweid/musicbox/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	watchFormat string
	watchDelay  time.Duration
)

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVarP(&watchFormat, "format", "f", "svg", "json, png, pdf or svg")
	watchCmd.Flags().DurationVar(&watchDelay, "delay", 300*time.Millisecond, "quiet period before re-rendering")
}

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Re-renders scores as they change",
	Long: `Watches a directory and re-renders each score file after it has
stopped changing, so an editor's burst of writes renders once.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(watchFormat)
		if err != nil {
			return err
		}
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt)
		return watch(args[0], format, watchDelay, stop)
	},
}

// watcher debounces each file separately.
type watcher struct {
	mu        sync.Mutex
	debounced map[string]func(func())
	delay     time.Duration
	render    func(path string)
	// renders land here; they are never sources
	outDir string
}

func (w *watcher) wants(path string) bool {
	if !util.IsScoreFile(path) {
		return false
	}
	return w.outDir == "" || !util.IsWithin(path, w.outDir)
}

func (w *watcher) touch(path string) {
	w.mu.Lock()
	d, ok := w.debounced[path]
	if !ok {
		d = debounce.New(w.delay)
		w.debounced[path] = d
	}
	w.mu.Unlock()
	d(func() { w.render(path) })
}

func watch(dir string, format output.Format, delay time.Duration, stop <-chan os.Signal) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := fw.Add(dir); err != nil {
		return err
	}

	w := &watcher{
		debounced: map[string]func(func()){},
		delay:     delay,
		outDir:    constants.GetOutDir(),
		render: func(path string) {
			if err := Render([]string{path}, format, "", 0); err != nil {
				logger.ErrorWithFields("re-render failed", err, zap.String("score", path))
			}
		},
	}
	if w.outDir != "" && util.IsWithin(dir, w.outDir) {
		logger.Log.Warn("watched directory is inside the output directory, its files are ignored",
			zap.String("dir", dir), zap.String("out_dir", w.outDir))
	}
	logger.Log.Info("watching", zap.String("dir", dir), zap.String("format", string(format)))

	for {
		select {
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if w.wants(ev.Name) {
				w.touch(ev.Name)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.WarnWithFields("watch error", err)
		case <-stop:
			return nil
		}
	}
}
