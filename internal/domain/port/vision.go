package port

import (
	"context"

	"subsea-inspector/internal/domain/entity"
)

// DefectDetector находит дефекты на подводном снимке (jpeg или png).
// Нераспознаваемое изображение возвращается как *entity.ValidationError.
type DefectDetector interface {
	Detect(ctx context.Context, imageData []byte) ([]entity.Defect, error)

	// HighlightDefects обводит рамками области дефектов и возвращает новое изображение
	HighlightDefects(imageData []byte, defects []entity.Defect) ([]byte, error)
}

// DefectDescriber составляет краткое текстовое заключение по оценённому снимку.
// Ошибка описателя не должна прерывать анализ.
type DefectDescriber interface {
	Describe(ctx context.Context, result *entity.InspectionResult) (*entity.Description, error)
}
