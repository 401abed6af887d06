package cmd

import (
	"time"

	"github.com/jsphweid/musicbox/constants"
	"github.com/jsphweid/musicbox/logger"
	"github.com/jsphweid/musicbox/metrics"
	"github.com/jsphweid/musicbox/model"
	"github.com/jsphweid/musicbox/output"
	"github.com/jsphweid/musicbox/render"
	"go.uber.org/zap"
)

// renderOptions applies a canvas width override (0 keeps the configured
// width) and the configured strictness.
func renderOptions(width float64) render.Options {
	opts := render.DefaultOptions()
	if width <= 0 {
		width = constants.GetCanvasWidth()
	}
	if width > 0 {
		opts.Layout.CanvasWidth = width
	}
	opts.Strict = constants.GetStrict()
	return opts
}

// emit renders doc and logs every diagnostic, both from building the
// document and from layout.
func emit(name string, doc *model.ScoreDocument, built []model.Diagnostic, opts render.Options, format output.Format) (*model.Render, error) {
	start := time.Now()
	r, err := render.Emit(doc, opts)
	metrics.Get().ObserveRender(string(format), start, r, err)
	if err != nil {
		return nil, err
	}
	r.Diagnostics = append(built, r.Diagnostics...)
	for _, d := range r.Diagnostics {
		logger.Log.Warn("score diagnostic",
			zap.String("score", name),
			zap.String("code", string(d.Code)),
			zap.Int("measure", d.Measure+1),
			zap.String("message", d.Message),
		)
	}
	return r, nil
}
