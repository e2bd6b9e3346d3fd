//go:build !gocv
// +build !gocv

package vision

import (
	"context"

	"subsea-inspector/internal/domain/entity"
	"subsea-inspector/internal/domain/port"
)

// GoCVDetector заглушка контурного детектора для сборок без OpenCV.
type GoCVDetector struct {
	Confidence float64
}

// NewGoCVDetector создаёт детектор-заглушку (без OpenCV).
func NewGoCVDetector(confidence float64) *GoCVDetector {
	return &GoCVDetector{Confidence: confidence}
}

// Detect возвращает ошибку, если сборка без тега gocv.
func (d *GoCVDetector) Detect(ctx context.Context, imageData []byte) ([]entity.Defect, error) {
	_ = ctx
	_ = imageData
	return nil, ErrGoCVDisabled
}

// HighlightDefects возвращает ошибку, если сборка без тега gocv.
func (d *GoCVDetector) HighlightDefects(imageData []byte, defects []entity.Defect) ([]byte, error) {
	_ = imageData
	_ = defects
	return nil, ErrGoCVDisabled
}

// Available сообщает, собран ли бинарник с поддержкой OpenCV.
func Available() bool { return false }

var _ port.DefectDetector = (*GoCVDetector)(nil)
