package rest

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	app "subsea-inspector/internal/application"
	"subsea-inspector/internal/domain/entity"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

// AnalysisResponse сохранённый анализ и, по запросу, картинка с подсветкой в base64.
type AnalysisResponse struct {
	*entity.Analysis
	HighlightedImage string `json:"highlighted_image,omitempty"`
}

// BatchResult итог по одному файлу пакета.
type BatchResult struct {
	Filename string           `json:"filename"`
	Analysis *entity.Analysis `json:"analysis,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// BatchResponse итог пакетного анализа.
type BatchResponse struct {
	TotalImages int           `json:"total_images"`
	Succeeded   int           `json:"succeeded"`
	Results     []BatchResult `json:"results"`
	Timestamp   time.Time     `json:"timestamp"`
}

// VisualInspectionRequest изображение в base64, допускается префикс data URL.
type VisualInspectionRequest struct {
	ImageData string                    `json:"imageData"`
	Metadata  *VisualInspectionMetadata `json:"metadata,omitempty"`
}

type VisualInspectionMetadata struct {
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Depth        *float64 `json:"depth,omitempty"`
	CableRouteID string   `json:"cableRouteId,omitempty"`
	Inspector    string   `json:"inspector,omitempty"`
}

func (s *Server) analyze(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return entity.NewValidationError("file", "multipart file is required")
	}
	image, err := readUpload(fh)
	if err != nil {
		return err
	}
	location, err := queryOptionalLocation(c)
	if err != nil {
		return err
	}
	highlight, err := queryBool(c, "highlight")
	if err != nil {
		return err
	}

	out, err := s.services.InspectionService.Analyze(c.Request().Context(), app.AnalysisRequest{
		Name:         fh.Filename,
		Image:        image,
		Location:     location,
		CableRouteID: c.QueryParam("cable_route_id"),
		Inspector:    c.QueryParam("inspector"),
	})
	if err != nil {
		return err
	}

	resp := AnalysisResponse{Analysis: out.Analysis}
	if highlight != nil && *highlight && len(out.Highlighted) > 0 {
		resp.HighlightedImage = base64.StdEncoding.EncodeToString(out.Highlighted)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) batchAnalyze(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return entity.NewValidationError("files", "multipart form is required")
	}
	files := form.File["files"]
	if len(files) == 0 {
		return entity.NewValidationError("files", "at least one file is required")
	}

	results := make([]BatchResult, len(files))
	reqs := make([]app.AnalysisRequest, 0, len(files))
	index := make([]int, 0, len(files))
	for i, fh := range files {
		results[i].Filename = fh.Filename
		image, err := readUpload(fh)
		if err != nil {
			results[i].Error = err.Error()
			continue
		}
		reqs = append(reqs, app.AnalysisRequest{Name: fh.Filename, Image: image})
		index = append(index, i)
	}

	succeeded := 0
	for j, item := range s.services.InspectionService.AnalyzeBatch(c.Request().Context(), reqs) {
		r := &results[index[j]]
		if item.Err != nil {
			r.Error = item.Err.Error()
			continue
		}
		r.Analysis = item.Output.Analysis
		succeeded++
	}

	return c.JSON(http.StatusOK, BatchResponse{
		TotalImages: len(files),
		Succeeded:   succeeded,
		Results:     results,
		Timestamp:   time.Now().UTC(),
	})
}

func (s *Server) visualInspection(c echo.Context) error {
	var req VisualInspectionRequest
	if err := c.Bind(&req); err != nil {
		return entity.NewValidationError("body", "malformed JSON")
	}
	image, err := decodeImageData(req.ImageData)
	if err != nil {
		return err
	}

	analysisReq := app.AnalysisRequest{Image: image}
	if m := req.Metadata; m != nil {
		analysisReq.CableRouteID = m.CableRouteID
		analysisReq.Inspector = m.Inspector
		switch {
		case m.Latitude != nil && m.Longitude != nil:
			analysisReq.Location = &entity.Location{Latitude: *m.Latitude, Longitude: *m.Longitude, Depth: m.Depth}
		case m.Latitude != nil || m.Longitude != nil:
			return entity.NewValidationError("metadata", "latitude and longitude must be given together")
		}
	}

	out, err := s.services.InspectionService.Analyze(c.Request().Context(), analysisReq)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out.Analysis)
}

func (s *Server) getAnalysis(c echo.Context) error {
	analysis, err := s.services.InspectionService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, analysis)
}

func (s *Server) score(c echo.Context) error {
	var defects []entity.Defect
	if err := c.Bind(&defects); err != nil {
		return entity.NewValidationError("body", "expected a JSON array of defects")
	}
	result, err := s.services.InspectionService.Score(c.Request().Context(), defects)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	contentType := strings.TrimSpace(strings.SplitN(fh.Header.Get("Content-Type"), ";", 2)[0])
	if !allowedImageTypes[strings.ToLower(contentType)] {
		return nil, entity.NewValidationError("file", fmt.Sprintf("unsupported type %q, allowed: image/jpeg, image/png", contentType))
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	return data, nil
}

// decodeImageData снимает префикс data URL и декодирует base64.
func decodeImageData(data string) ([]byte, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, entity.NewValidationError("imageData", "must not be empty")
	}
	if i := strings.IndexByte(data, ','); i >= 0 {
		data = data[i+1:]
	}
	image, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, entity.NewValidationError("imageData", "is not valid base64")
	}
	return image, nil
}
