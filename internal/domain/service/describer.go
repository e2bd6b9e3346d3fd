package service

import (
	"context"
	"fmt"
	"strings"

	"subsea-inspector/internal/domain/entity"
	"subsea-inspector/internal/domain/port"
)

// TemplateDescriber строит краткое описание находок без обращения к внешним моделям.
type TemplateDescriber struct{}

// Describe формирует строку вида "3 defects detected: 2 corrosion, 1 coating-damage; overall condition good".
func (TemplateDescriber) Describe(ctx context.Context, result *entity.InspectionResult) (*entity.Description, error) {
	_ = ctx
	if result == nil || !result.HasDefects() {
		return &entity.Description{Text: "No defects detected"}, nil
	}

	order := make([]entity.DefectType, 0, len(result.Defects))
	counts := make(map[entity.DefectType]int)
	for _, d := range result.Defects {
		if counts[d.Type] == 0 {
			order = append(order, d.Type)
		}
		counts[d.Type]++
	}

	parts := make([]string, 0, len(order))
	for _, t := range order {
		parts = append(parts, fmt.Sprintf("%d %s", counts[t], t))
	}

	noun := "defects"
	if len(result.Defects) == 1 {
		noun = "defect"
	}
	text := fmt.Sprintf("%d %s detected: %s; overall condition %s",
		len(result.Defects), noun, strings.Join(parts, ", "), result.OverallCondition)
	return &entity.Description{Text: text}, nil
}

var _ port.DefectDescriber = TemplateDescriber{}
