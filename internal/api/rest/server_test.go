package rest

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	app "subsea-inspector/internal/application"
	"subsea-inspector/internal/container"
	"subsea-inspector/internal/domain/entity"
	"subsea-inspector/internal/domain/service"
	"subsea-inspector/internal/infrastructure/storage"
	"subsea-inspector/internal/infrastructure/vision"
	"subsea-inspector/internal/metrics"
)

func newTestServer(t *testing.T) (*Server, *container.Container) {
	t.Helper()
	db, err := storage.OpenInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close(db) })

	scorer, err := service.NewScorer(service.DefaultConditionPolicy())
	require.NoError(t, err)

	fields := storage.NewFieldRepository(db)
	services := container.New(container.Deps{
		Users:     storage.NewMemoryUserRepository(),
		Fields:    fields,
		Cables:    storage.NewCableRepository(db),
		Analyses:  storage.NewAnalysisRepository(db),
		Detector:  vision.NewMockDetector(vision.DefaultConfidenceThreshold),
		Describer: service.TemplateDescriber{},
		Scorer:    scorer,
		Search:    app.DefaultSearchDefaults(),
		CacheTTL:  time.Minute,
	})

	ctx := context.Background()
	for _, f := range []entity.Field{
		{ID: "OSEBERG", Name: "Oseberg", Operator: "Equinor", Status: entity.FieldProducing,
			Location: entity.FieldLocation{Location: entity.Location{Latitude: 60.4914, Longitude: 2.8281}, SeaArea: entity.SeaNorth}},
		{ID: "TUNE", Name: "Tune", Operator: "Equinor", Status: entity.FieldShutdown, HubFieldID: "OSEBERG",
			Location: entity.FieldLocation{Location: entity.Location{Latitude: 60.4667, Longitude: 2.65}, SeaArea: entity.SeaNorth}},
		{ID: "EKOFISK", Name: "Ekofisk", Operator: "ConocoPhillips", Status: entity.FieldProducing,
			Location: entity.FieldLocation{Location: entity.Location{Latitude: 56.5466, Longitude: 3.2183}, SeaArea: entity.SeaNorth}},
	} {
		require.NoError(t, services.FieldService.Save(ctx, &f))
	}

	reg := prometheus.NewRegistry()
	require.NoError(t, metrics.Register(reg))

	health := func(ctx context.Context) error { return storage.Ping(ctx, db) }
	return NewServer(services, Options{BodyLimit: "5M", Gatherer: reg, Health: health}, nil), services
}

func do(t *testing.T, s *Server, method, target string, body []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 15, G: 80, B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type upload struct {
	field, name, contentType string
	data                     []byte
}

func multipartBody(t *testing.T, files ...upload) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.name+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes(), w.FormDataContentType()
}

func TestRootAndHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decode[HealthResponse](t, rec).Status)

	rec = do(t, s, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "healthy", decode[HealthResponse](t, rec).Status)

	rec = do(t, s, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "subsea_inspector_http_request_seconds")
}

func TestHealth_Unhealthy(t *testing.T) {
	s, services := newTestServer(t)
	s = NewServer(services, Options{Health: func(context.Context) error { return errors.New("db down") }}, nil)

	rec := do(t, s, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "unhealthy", decode[HealthResponse](t, rec).Status)
}

func TestFieldsEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/fields?operator=Equinor", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]entity.Field](t, rec), 2)

	rec = do(t, s, http.MethodGet, "/api/v1/fields/EKOFISK", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Ekofisk", decode[entity.Field](t, rec).Name)

	rec = do(t, s, http.MethodGet, "/api/v1/fields/NOPE", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NotEmpty(t, decode[ErrorResponse](t, rec).Error)

	rec = do(t, s, http.MethodGet, "/api/v1/fields/OSEBERG/network", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	network := decode[entity.FieldNetwork](t, rec)
	require.True(t, network.IsHub)
	require.Len(t, network.Satellites, 1)

	rec = do(t, s, http.MethodGet, "/api/v1/fields/statistics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 3, decode[entity.FieldStatistics](t, rec).TotalFields)
}

func TestNearbyFields(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/fields/nearby?latitude=60.4914&longitude=2.8281", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[NearbyFieldsResponse](t, rec)
	require.Equal(t, 50.0, resp.RadiusKm)
	require.Equal(t, 2, resp.Count)
	require.Equal(t, "OSEBERG", resp.Fields[0].Field.ID)
	require.Equal(t, "TUNE", resp.Fields[1].Field.ID)

	rec = do(t, s, http.MethodGet, "/api/v1/fields/nearby?latitude=60.4914&longitude=2.8281&radius_km=0", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, decode[NearbyFieldsResponse](t, rec).Count)

	rec = do(t, s, http.MethodGet, "/api/v1/fields/nearest?latitude=56&longitude=3&count=1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "EKOFISK", decode[NearbyFieldsResponse](t, rec).Fields[0].Field.ID)

	for _, target := range []string{
		"/api/v1/fields/nearby?latitude=60",
		"/api/v1/fields/nearby?latitude=91&longitude=2",
		"/api/v1/fields/nearby?latitude=60&longitude=2&radius_km=-5",
		"/api/v1/fields/nearby?latitude=abc&longitude=2",
		"/api/v1/fields/nearest?latitude=60&longitude=2&count=0",
	} {
		rec = do(t, s, http.MethodGet, target, nil, "")
		require.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestCablesAndInspections(t *testing.T) {
	s, _ := newTestServer(t)

	body := []byte(`{"route_id":"OSEBERG-TUNE","name":"Oseberg - Tune umbilical","start_field_id":"OSEBERG",
		"end_field_id":"TUNE","cable_type":"umbilical","length_km":10,"operational":true,"inspection_required":true}`)
	rec := do(t, s, http.MethodPost, "/api/v1/cables", body, "application/json")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/api/v1/cables", body, "application/json")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/cables/needing-inspection", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]entity.CableRoute](t, rec), 1)

	payload, contentType := multipartBody(t, upload{"file", "rov.png", "image/png", pngImage(t, 320, 240)})
	rec = do(t, s, http.MethodPost, "/api/v1/analyze?latitude=60.48&longitude=2.75&depth=120&cable_route_id=OSEBERG-TUNE", payload, contentType)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/api/v1/cables/OSEBERG-TUNE/inspections", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	inspections := decode[[]entity.CableInspection](t, rec)
	require.Len(t, inspections, 1)
	require.Equal(t, entity.ConditionGood, inspections[0].Condition)

	rec = do(t, s, http.MethodGet, "/api/v1/cables/needing-inspection", nil, "")
	require.Empty(t, decode[[]entity.CableRoute](t, rec))

	rec = do(t, s, http.MethodGet, "/api/v1/inspections/nearby?latitude=60.48&longitude=2.75", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, decode[NearbyInspectionsResponse](t, rec).Count)

	rec = do(t, s, http.MethodGet, "/api/v1/inspections?condition=good", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]entity.CableInspection](t, rec), 1)

	rec = do(t, s, http.MethodGet, "/api/v1/cables/statistics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 1, decode[entity.CableStatistics](t, rec).TotalInspections)

	rec = do(t, s, http.MethodGet, "/api/v1/fields/TUNE/cables", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]entity.CableRoute](t, rec), 1)

	rec = do(t, s, http.MethodGet, "/api/v1/cables?operational=maybe", nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeAndFetch(t *testing.T) {
	s, _ := newTestServer(t)

	payload, contentType := multipartBody(t, upload{"file", "rov.png", "image/png", pngImage(t, 640, 480)})
	rec := do(t, s, http.MethodPost, "/api/v1/analyze?highlight=true", payload, contentType)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[AnalysisResponse](t, rec)
	require.Equal(t, "completed", resp.Status)
	require.Equal(t, entity.ConditionGood, resp.Result.OverallCondition)
	require.Len(t, resp.Result.Defects, 3)
	require.NotEmpty(t, resp.HighlightedImage)

	rec = do(t, s, http.MethodGet, "/api/v1/analysis/"+resp.ID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, resp.ID, decode[entity.Analysis](t, rec).ID)

	rec = do(t, s, http.MethodGet, "/api/v1/analysis/analysis_missing", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalyze_Rejects(t *testing.T) {
	s, _ := newTestServer(t)

	payload, contentType := multipartBody(t, upload{"file", "notes.txt", "text/plain", []byte("hello")})
	rec := do(t, s, http.MethodPost, "/api/v1/analyze", payload, contentType)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decode[ErrorResponse](t, rec).Error, "unsupported type")

	payload, contentType = multipartBody(t, upload{"file", "fake.png", "image/png", []byte("not a png")})
	rec = do(t, s, http.MethodPost, "/api/v1/analyze", payload, contentType)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	payload, contentType = multipartBody(t, upload{"file", "rov.png", "image/png", pngImage(t, 64, 64)})
	rec = do(t, s, http.MethodPost, "/api/v1/analyze?cable_route_id=NOPE", payload, contentType)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/analyze", nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatchAnalyze(t *testing.T) {
	s, _ := newTestServer(t)

	payload, contentType := multipartBody(t,
		upload{"files", "a.png", "image/png", pngImage(t, 100, 100)},
		upload{"files", "b.gif", "image/gif", []byte("GIF89a")},
		upload{"files", "c.png", "image/png", []byte("broken")},
		upload{"files", "d.png", "image/png", pngImage(t, 50, 80)},
	)
	rec := do(t, s, http.MethodPost, "/api/v1/batch-analyze", payload, contentType)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[BatchResponse](t, rec)
	require.Equal(t, 4, resp.TotalImages)
	require.Equal(t, 2, resp.Succeeded)
	require.Equal(t, "a.png", resp.Results[0].Filename)
	require.NotNil(t, resp.Results[0].Analysis)
	require.Contains(t, resp.Results[1].Error, "unsupported type")
	require.NotEmpty(t, resp.Results[2].Error)
	require.Equal(t, "d.png", resp.Results[3].Filename)
	require.NotNil(t, resp.Results[3].Analysis)
}

func TestVisualInspection(t *testing.T) {
	s, _ := newTestServer(t)

	encoded := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngImage(t, 200, 150))
	body, err := json.Marshal(VisualInspectionRequest{
		ImageData: encoded,
		Metadata:  &VisualInspectionMetadata{Inspector: "diver-1"},
	})
	require.NoError(t, err)

	rec := do(t, s, http.MethodPost, "/api/v1/visual-inspection/analyze", body, "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	analysis := decode[entity.Analysis](t, rec)
	require.True(t, strings.HasPrefix(analysis.ID, "analysis_"))

	rec = do(t, s, http.MethodPost, "/api/v1/visual-inspection/analyze", []byte(`{"imageData":"%%%"}`), "application/json")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	lat := 60.0
	body, err = json.Marshal(VisualInspectionRequest{ImageData: encoded, Metadata: &VisualInspectionMetadata{Latitude: &lat}})
	require.NoError(t, err)
	rec = do(t, s, http.MethodPost, "/api/v1/visual-inspection/analyze", body, "application/json")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScore(t *testing.T) {
	s, _ := newTestServer(t)

	body := []byte(`[
		{"id":"d1","type":"crack","severity":"critical","confidence":0.9},
		{"id":"d2","type":"corrosion","severity":"low","confidence":0.7}
	]`)
	rec := do(t, s, http.MethodPost, "/api/v1/score", body, "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[entity.InspectionResult](t, rec)
	require.Equal(t, entity.ConditionCritical, result.OverallCondition)
	require.InDelta(t, 0.8, result.Confidence, 1e-9)

	rec = do(t, s, http.MethodPost, "/api/v1/score", []byte(`[]`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, entity.ConditionExcellent, decode[entity.InspectionResult](t, rec).OverallCondition)

	rec = do(t, s, http.MethodPost, "/api/v1/score", []byte(`[{"id":"d1","type":"crack","severity":"high","confidence":2}]`), "application/json")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/score", []byte(`{"oops"`), "application/json")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/score", []byte(`[]`), "text/plain")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decode[ErrorResponse](t, rec).Error, "body")
}
