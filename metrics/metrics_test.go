package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/jsphweid/musicbox/model"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInitializeIsSingleton(t *testing.T) {
	assert.Same(t, Initialize(), Get())
}

func TestObserveRender(t *testing.T) {
	m := Get()
	before := testutil.ToFloat64(m.DiagnosticsTotal.WithLabelValues(string(model.MeasureDurationMismatch)))
	measures := testutil.ToFloat64(m.MeasuresRendered)

	r := &model.Render{
		Commands: []model.DrawCommand{
			{Kind: model.CmdCanvas},
			{Kind: model.CmdSeparator},
			{Kind: model.CmdSeparator},
		},
		Diagnostics: []model.Diagnostic{{Code: model.MeasureDurationMismatch}},
	}
	m.ObserveRender("json", time.Now(), r, nil)
	m.ObserveRender("png", time.Now(), nil, errors.New("boom"))

	assert := assert.New(t)
	assert.Equal(before+1, testutil.ToFloat64(m.DiagnosticsTotal.WithLabelValues(string(model.MeasureDurationMismatch))))
	assert.Equal(measures+2, testutil.ToFloat64(m.MeasuresRendered))
	assert.GreaterOrEqual(testutil.ToFloat64(m.RendersTotal.WithLabelValues("png", "error")), 1.0)
}

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	m := Get()
	router := mux.NewRouter()
	router.Use(Middleware)
	router.HandleFunc("/download/{filename}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	counter := m.HTTPRequestsTotal.WithLabelValues("GET", "/download/{filename}", "404")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/download/x.mid", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
