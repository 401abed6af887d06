package recognize

import (
	"bytes"
	"context"
	"time"

	"github.com/jsphweid/musicbox/db"
	"github.com/jsphweid/musicbox/file"
	"github.com/jsphweid/musicbox/logger"
	"github.com/jsphweid/musicbox/metrics"
	"github.com/jsphweid/musicbox/midi"
	"github.com/jsphweid/musicbox/model"
	"github.com/jsphweid/musicbox/output"
	"github.com/jsphweid/musicbox/render"
	"github.com/jsphweid/musicbox/score"
	"github.com/jsphweid/musicbox/storage"
	"go.uber.org/zap"
)

// Pipeline handles one upload from images to stored MusicXML, MIDI and PDF.
type Pipeline struct {
	Recognizer Recognizer
	Store      storage.Store
	// DB is optional.
	DB    *db.Client
	Tempo float64
	Now   func() time.Time
}

func (p *Pipeline) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

func (p *Pipeline) Process(ctx context.Context, images []Image) (*model.ProcessResult, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}
	uploads, err := p.storeUploads(ctx, images)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rec, err := p.Recognizer.Recognize(ctx, images)
	metrics.Get().ObserveRecognition(p.Recognizer.Name(), start, err)
	if err != nil {
		return nil, &Error{Recognizer: p.Recognizer.Name(), Err: err}
	}

	doc, diags, err := score.Read(rec.MusicXML)
	if err != nil {
		return nil, err
	}
	for _, d := range diags {
		logger.Log.Warn("score diagnostic", zap.String("code", string(d.Code)), zap.String("message", d.Message))
	}

	opts := render.DefaultOptions()
	midiData := rec.Midi
	if midiData == nil {
		var buf bytes.Buffer
		meter := midi.Meter{Beats: uint8(opts.NumBeats), Value: uint8(opts.BeatValue)}
		if err := midi.WriteScore(&buf, doc, p.Tempo, meter); err != nil {
			return nil, err
		}
		midiData = buf.Bytes()
	}

	res := &model.ProcessResult{
		MusicXML: file.NewName(".musicxml"),
		Images:   uploads,
	}
	res.Midi = file.WithExt(res.MusicXML, ".mid")
	if err := p.Store.Put(ctx, res.MusicXML, rec.MusicXML); err != nil {
		return nil, err
	}
	if err := p.Store.Put(ctx, res.Midi, midiData); err != nil {
		return nil, err
	}

	// A score that cannot be laid out still gets its MusicXML and MIDI.
	if pdf, err := p.pdf(doc, opts); err != nil {
		logger.WarnWithFields("skipping pdf", err, zap.String("musicxml", res.MusicXML))
	} else {
		res.Pdf = file.WithExt(res.MusicXML, ".pdf")
		if err := p.Store.Put(ctx, res.Pdf, pdf); err != nil {
			return nil, err
		}
	}

	if p.DB != nil {
		err := p.DB.PutScoreMetadata(ctx, model.ScoreMetadata{
			MusicXML:     res.MusicXML,
			Midi:         res.Midi,
			Pdf:          res.Pdf,
			Images:       len(images),
			MeasureCount: len(doc.Measures),
			CreatedAt:    p.now(),
		})
		if err != nil {
			logger.WarnWithFields("could not record score metadata", err, zap.String("musicxml", res.MusicXML))
		}
	}
	return res, nil
}

// storeUploads saves each image under a fresh name and returns the names
// in upload order.
func (p *Pipeline) storeUploads(ctx context.Context, images []Image) ([]string, error) {
	originals := make([]string, len(images))
	for i, img := range images {
		originals[i] = img.Name
	}
	names := make([]string, len(images))
	for name, i := range file.CreateNameMap(originals) {
		names[i] = name
	}
	for i, name := range names {
		if err := p.Store.Put(ctx, name, images[i].Data); err != nil {
			return nil, err
		}
		logger.Log.Debug("stored upload", zap.String("original", images[i].Name), zap.String("name", name))
	}
	return names, nil
}

func (p *Pipeline) pdf(doc *model.ScoreDocument, opts render.Options) ([]byte, error) {
	start := time.Now()
	r, err := render.Emit(doc, opts)
	metrics.Get().ObserveRender(string(output.PDF), start, r, err)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := output.WritePDF(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
