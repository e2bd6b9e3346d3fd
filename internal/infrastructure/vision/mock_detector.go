package vision

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	_ "image/png"
	"strings"

	"github.com/google/uuid"

	"subsea-inspector/internal/domain/entity"
	"subsea-inspector/internal/domain/port"
)

// DefaultConfidenceThreshold минимальная уверенность, с которой дефект попадает в результат.
const DefaultConfidenceThreshold = 0.85

type mockDetection struct {
	typ         entity.DefectType
	severity    entity.Severity
	confidence  float64
	relX        float64
	relY        float64
	width       int
	height      int
	description string
	length      float64
	breadth     float64
	depth       float64
}

// фиксированный набор находок, пока вместо модели используется заглушка
var mockDetections = []mockDetection{
	{
		typ:         entity.DefectCorrosion,
		severity:    entity.SeverityMedium,
		confidence:  0.96,
		relX:        0.3,
		relY:        0.4,
		width:       120,
		height:      85,
		description: "Surface corrosion covering approximately 120mm² area",
		length:      12.5,
		breadth:     8.3,
		depth:       2.1,
	},
	{
		typ:         entity.DefectCorrosion,
		severity:    entity.SeverityLow,
		confidence:  0.89,
		relX:        0.6,
		relY:        0.3,
		width:       80,
		height:      60,
		description: "Minor surface corrosion, minimal penetration",
		length:      8.0,
		breadth:     6.5,
		depth:       1.0,
	},
	{
		typ:         entity.DefectCoatingDamage,
		severity:    entity.SeverityLow,
		confidence:  0.91,
		relX:        0.5,
		relY:        0.7,
		width:       95,
		height:      70,
		description: "Coating degradation, protective layer compromised",
		length:      9.5,
		breadth:     7.0,
		depth:       0.5,
	},
}

// MockDetector детектор-заглушка: возвращает одни и те же находки для любого изображения.
// Изображение всё равно декодируется, чтобы отбросить мусор и привязать рамки к его размеру.
type MockDetector struct {
	ConfidenceThreshold float64
	newID               func() string
}

// NewMockDetector создаёт детектор-заглушку с порогом уверенности.
func NewMockDetector(threshold float64) *MockDetector {
	return &MockDetector{
		ConfidenceThreshold: threshold,
		newID: func() string {
			return "defect_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		},
	}
}

// Detect возвращает фиксированный список дефектов выше порога уверенности.
func (d *MockDetector) Detect(ctx context.Context, imageData []byte) ([]entity.Defect, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg, err := imageConfig(imageData)
	if err != nil {
		return nil, err
	}

	defects := make([]entity.Defect, 0, len(mockDetections))
	for _, m := range mockDetections {
		if m.confidence < d.ConfidenceThreshold {
			continue
		}
		length, breadth, depth := m.length, m.breadth, m.depth
		defects = append(defects, entity.Defect{
			ID:         d.newID(),
			Type:       m.typ,
			Severity:   m.severity,
			Confidence: m.confidence,
			Box: entity.DefectArea{
				X:      int(float64(cfg.Width) * m.relX),
				Y:      int(float64(cfg.Height) * m.relY),
				Width:  m.width,
				Height: m.height,
			},
			Description: m.description,
			Dimensions:  &entity.Dimensions{Length: &length, Width: &breadth, Depth: &depth},
		})
	}
	return defects, nil
}

// HighlightDefects рисует рамки вокруг дефектов и возвращает JPEG.
func (d *MockDetector) HighlightDefects(imageData []byte, defects []entity.Defect) ([]byte, error) {
	return highlight(imageData, defects)
}

func highlight(imageData []byte, defects []entity.Defect) ([]byte, error) {
	if _, err := imageConfig(imageData); err != nil {
		return nil, err
	}
	src, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, errors.New("failed to decode image")
	}

	canvas := image.NewRGBA(src.Bounds())
	draw.Draw(canvas, canvas.Bounds(), src, src.Bounds().Min, draw.Src)

	green := color.RGBA{G: 255, A: 255}
	for _, defect := range defects {
		b := defect.Box
		rect := image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height).Intersect(canvas.Bounds())
		drawFrame(canvas, rect, green, 2)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// drawFrame рисует контур прямоугольника толщиной thickness.
func drawFrame(img *image.RGBA, r image.Rectangle, c color.Color, thickness int) {
	if r.Empty() {
		return
	}
	fill := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness),
		image.Rect(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+thickness, r.Max.Y),
		image.Rect(r.Max.X-thickness, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(img, e.Intersect(r), fill, image.Point{}, draw.Src)
	}
}

// Проверка реализации интерфейса
var _ port.DefectDetector = (*MockDetector)(nil)
