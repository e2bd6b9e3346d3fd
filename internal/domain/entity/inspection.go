package entity

import "time"

// Condition итоговая оценка состояния объекта
type Condition string

const (
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
	ConditionPoor      Condition = "poor"
	ConditionCritical  Condition = "critical"
)

// Valid сообщает, известна ли оценка состояния.
func (c Condition) Valid() bool {
	switch c {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor, ConditionCritical:
		return true
	}
	return false
}

// InspectionResult хранит итог анализа набора дефектов.
type InspectionResult struct {
	OverallCondition Condition `json:"overall_condition"` // общая оценка состояния
	Confidence       float64   `json:"confidence"`        // средняя уверенность детектора
	Defects          []Defect  `json:"defects_detected"`  // найденные дефекты в исходном порядке
	Recommendations  []string  `json:"recommendations"`   // рекомендации по обслуживанию
}

// HasDefects сообщает, найден ли хотя бы один дефект.
func (r *InspectionResult) HasDefects() bool {
	return len(r.Defects) > 0
}

// Description текстовое описание найденных дефектов.
type Description struct {
	Text string
}

// Analysis сохранённый результат анализа изображения.
type Analysis struct {
	ID           string           `json:"id"`
	Status       string           `json:"status"`
	ProcessedAt  time.Time        `json:"processed_at"`
	Result       InspectionResult `json:"result"`
	Findings     string           `json:"findings,omitempty"`
	Location     *Location        `json:"location,omitempty"`
	CableRouteID string           `json:"cable_route_id,omitempty"`
}

// AnalysisStatusCompleted статус успешно завершённого анализа.
const AnalysisStatusCompleted = "completed"
