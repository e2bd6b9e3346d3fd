package service

import (
	"fmt"

	"subsea-inspector/internal/domain/entity"
)

// ConditionPolicy пороги перевода количества дефектов в оценку состояния.
// Значения по умолчанию повторяют исходные правила и могут быть переопределены конфигурацией.
type ConditionPolicy struct {
	PoorHighCount   int `mapstructure:"poor_high_count" json:"poor_high_count"`     // high-дефектов для poor
	FairHighCount   int `mapstructure:"fair_high_count" json:"fair_high_count"`     // high-дефектов для fair
	FairMediumCount int `mapstructure:"fair_medium_count" json:"fair_medium_count"` // medium-дефектов для fair
}

// DefaultConditionPolicy возвращает стандартную таблицу порогов.
func DefaultConditionPolicy() ConditionPolicy {
	return ConditionPolicy{
		PoorHighCount:   2,
		FairHighCount:   1,
		FairMediumCount: 3,
	}
}

// Validate проверяет, что все пороги положительны.
func (p ConditionPolicy) Validate() error {
	if p.PoorHighCount < 1 || p.FairHighCount < 1 || p.FairMediumCount < 1 {
		return entity.NewValidationError("scoring policy", "thresholds must be at least 1")
	}
	return nil
}

var severityRecommendations = map[entity.Severity][]string{
	entity.SeverityCritical: {"Immediate inspection and repair required"},
	entity.SeverityHigh:     {"Schedule maintenance within 3 months"},
	entity.SeverityMedium:   {"Schedule maintenance within 6 months"},
}

var typeRecommendations = map[entity.DefectType][]string{
	entity.DefectCorrosion:     {"Monitor corrosion progression", "Consider cathodic protection assessment"},
	entity.DefectCrack:         {"Structural integrity assessment required"},
	entity.DefectBiofouling:    {"Schedule biological cleaning operation"},
	entity.DefectCoatingDamage: {"Evaluate repair or replacement of coating"},
}

// Scorer выводит состояние объекта, общую уверенность и рекомендации из набора дефектов.
// Не хранит изменяемого состояния, безопасен для конкурентного использования.
type Scorer struct {
	policy ConditionPolicy
}

// NewScorer создаёт оценщик с заданной политикой.
func NewScorer(policy ConditionPolicy) (*Scorer, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{policy: policy}, nil
}

// Score оценивает набор дефектов. Некорректный дефект приводит к ошибке валидации.
func (s *Scorer) Score(defects []entity.Defect) (*entity.InspectionResult, error) {
	counts := make(map[entity.Severity]int, len(entity.Severities))
	var total float64
	for i, d := range defects {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("defect %d: %w", i, err)
		}
		counts[d.Severity]++
		total += d.Confidence
	}

	confidence := 1.0
	if len(defects) > 0 {
		confidence = total / float64(len(defects))
	}

	return &entity.InspectionResult{
		OverallCondition: s.condition(counts, len(defects)),
		Confidence:       confidence,
		Defects:          append([]entity.Defect{}, defects...),
		Recommendations:  recommendations(defects, counts),
	}, nil
}

func (s *Scorer) condition(counts map[entity.Severity]int, total int) entity.Condition {
	switch {
	case counts[entity.SeverityCritical] > 0:
		return entity.ConditionCritical
	case counts[entity.SeverityHigh] >= s.policy.PoorHighCount:
		return entity.ConditionPoor
	case counts[entity.SeverityHigh] >= s.policy.FairHighCount,
		counts[entity.SeverityMedium] >= s.policy.FairMediumCount:
		return entity.ConditionFair
	case total > 0:
		return entity.ConditionGood
	default:
		return entity.ConditionExcellent
	}
}

func recommendations(defects []entity.Defect, counts map[entity.Severity]int) []string {
	out := make([]string, 0, 4)
	seen := make(map[string]struct{})
	add := func(items []string) {
		for _, item := range items {
			if _, dup := seen[item]; dup {
				continue
			}
			seen[item] = struct{}{}
			out = append(out, item)
		}
	}

	for _, sev := range entity.Severities {
		if counts[sev] > 0 {
			add(severityRecommendations[sev])
		}
	}

	typesSeen := make(map[entity.DefectType]struct{})
	for _, d := range defects {
		if _, ok := typesSeen[d.Type]; ok {
			continue
		}
		typesSeen[d.Type] = struct{}{}
		add(typeRecommendations[d.Type])
	}
	return out
}
