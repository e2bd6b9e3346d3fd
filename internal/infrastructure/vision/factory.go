package vision

import (
	"errors"
	"fmt"

	"subsea-inspector/internal/domain/port"
)

const (
	KindMock = "mock"
	KindGoCV = "gocv"

	// contourConfidence уверенность, приписываемая каждому найденному контуру.
	contourConfidence = 0.9
)

// ErrGoCVDisabled возвращается, если бинарник собран без тега gocv.
var ErrGoCVDisabled = errors.New("gocv build tag is not enabled")

// New выбирает реализацию детектора по имени из конфигурации.
func New(kind string, confidenceThreshold float64) (port.DefectDetector, error) {
	switch kind {
	case KindMock, "":
		return NewMockDetector(confidenceThreshold), nil
	case KindGoCV:
		if !Available() {
			return nil, ErrGoCVDisabled
		}
		return NewGoCVDetector(contourConfidence), nil
	default:
		return nil, fmt.Errorf("unknown detector kind %q", kind)
	}
}
