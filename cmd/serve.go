package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/jsphweid/musicbox/apierror"
	"github.com/jsphweid/musicbox/constants"
	"github.com/jsphweid/musicbox/db"
	"github.com/jsphweid/musicbox/file"
	"github.com/jsphweid/musicbox/logger"
	"github.com/jsphweid/musicbox/metrics"
	"github.com/jsphweid/musicbox/midi"
	"github.com/jsphweid/musicbox/output"
	"github.com/jsphweid/musicbox/recognize"
	"github.com/jsphweid/musicbox/score"
	"github.com/jsphweid/musicbox/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	store    storage.Store
	pipeline *recognize.Pipeline
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":5000", "listen address")
	viper.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the recognition and layout API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := LoadServeState(cmd.Context()); err != nil {
			return err
		}
		return serve(constants.GetAddr())
	},
}

// LoadServeState opens storage, the metadata table and the recognizer
// from config.
func LoadServeState(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := storage.FromConfig(ctx)
	if err != nil {
		return err
	}
	rec, err := recognize.FromConfig()
	if err != nil {
		return err
	}
	meta, err := db.FromConfig()
	if err != nil {
		return err
	}
	store = s
	pipeline = &recognize.Pipeline{
		Recognizer: rec,
		Store:      s,
		DB:         meta,
		Tempo:      constants.GetTempo(),
	}
	logger.Log.Info("serve state loaded",
		zap.String("storage", s.Driver()),
		zap.String("recognizer", rec.Name()),
		zap.Bool("metadata", meta != nil),
	)
	return nil
}

func NewRouter() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.Use(metrics.Middleware)
	router.HandleFunc("/process-images", HandleProcessImages).Methods("POST")
	router.HandleFunc("/download/{filename}", HandleDownload).Methods("GET")
	router.HandleFunc("/layout", HandleLayout).Methods("POST")
	router.HandleFunc("/scores/{filename}", HandleScoreMetadata).Methods("GET")
	router.HandleFunc("/scores/{filename}/layout", HandleScoreLayout).Methods("GET")
	router.HandleFunc("/scores/{filename}/notes", HandleNotes).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	return router
}

func serve(addr string) error {
	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}).Handler(NewRouter())

	logger.Log.Info("listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, handler)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.ErrorWithFields("could not write response", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := apierror.Write(w, err)
	if apiErr.Status >= http.StatusInternalServerError {
		logger.ErrorWithFields("request failed", err, zap.String("path", r.URL.Path))
	}
}

func HandleProcessImages(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.GetMaxUploadBytes())
	if err := r.ParseMultipartForm(constants.GetMaxUploadBytes()); err != nil {
		writeError(w, r, apierror.BadRequest("expected a multipart form with images").WithDetails(err.Error()))
		return
	}

	var images []recognize.Image
	for _, fh := range r.MultipartForm.File["images"] {
		f, err := fh.Open()
		if err != nil {
			writeError(w, r, err)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeError(w, r, err)
			return
		}
		images = append(images, recognize.Image{Name: fh.Filename, Data: data})
	}

	res, err := pipeline.Process(r.Context(), images)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logger.Log.Info("processed images",
		zap.Int("images", len(images)),
		zap.String("musicxml", res.MusicXML),
	)
	writeJSON(w, res)
}

// load fetches a stored resource named by the filename route variable.
func load(r *http.Request) (string, []byte, error) {
	name := mux.Vars(r)["filename"]
	if err := file.CheckName(name); err != nil {
		return name, nil, apierror.BadRequest(err.Error())
	}
	data, err := store.Get(r.Context(), name)
	if errors.Is(err, storage.ErrNotFound) {
		return name, nil, apierror.NotFound(name)
	}
	return name, data, err
}

func HandleDownload(w http.ResponseWriter, r *http.Request) {
	name, data, err := load(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", file.ContentType(name))
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Write(data)
}

func writeLayout(w http.ResponseWriter, r *http.Request, name string, data []byte) {
	width := 0.0
	if s := r.URL.Query().Get("width"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v <= 0 {
			writeError(w, r, apierror.BadRequest("width must be a positive number"))
			return
		}
		width = v
	}
	format := output.JSON
	if s := r.URL.Query().Get("format"); s != "" {
		f, err := output.ParseFormat(s)
		if err != nil {
			writeError(w, r, apierror.BadRequest(err.Error()))
			return
		}
		format = f
	}
	opts := renderOptions(width)
	if err := opts.Layout.Validate(); err != nil {
		writeError(w, r, apierror.BadRequest(err.Error()))
		return
	}

	doc, diags, err := score.Read(data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rendered, err := emit(name, doc, diags, opts, format)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	if err := output.Write(w, rendered, format, output.Options{FontPath: constants.GetFontPath()}); err != nil {
		logger.ErrorWithFields("could not write layout", err, zap.String("score", name))
	}
}

// HandleLayout renders a score posted as the request body.
func HandleLayout(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, constants.GetMaxUploadBytes()))
	if err != nil {
		writeError(w, r, apierror.BadRequest("could not read request body"))
		return
	}
	writeLayout(w, r, "request", data)
}

func HandleScoreLayout(w http.ResponseWriter, r *http.Request) {
	name, data, err := load(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeLayout(w, r, name, data)
}

// HandleScoreMetadata returns what was recorded when a MusicXML resource
// was processed. Without a metadata table every score is unknown.
func HandleScoreMetadata(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["filename"]
	if err := file.CheckName(name); err != nil {
		writeError(w, r, apierror.BadRequest(err.Error()))
		return
	}
	if pipeline == nil || pipeline.DB == nil {
		writeError(w, r, apierror.NotFound(name))
		return
	}
	found, err := pipeline.DB.GetScoreMetadatas(r.Context(), []string{name})
	if err != nil {
		writeError(w, r, err)
		return
	}
	m, ok := found[name]
	if !ok {
		writeError(w, r, apierror.NotFound(name))
		return
	}
	writeJSON(w, m)
}

func HandleNotes(w http.ResponseWriter, r *http.Request) {
	name, data, err := load(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q, err := midi.ReadNotes(data)
	if err != nil {
		writeError(w, r, apierror.BadRequest(err.Error()))
		return
	}
	if s := r.URL.Query().Get("from"); s != "" {
		from, err := strconv.ParseFloat(s, 64)
		if err != nil {
			writeError(w, r, apierror.BadRequest("from must be a number of seconds"))
			return
		}
		q = midi.From(q, from)
	}
	logger.Log.Debug("notes", zap.String("midi", name), zap.Int("count", len(q.Notes)))
	writeJSON(w, q)
}
