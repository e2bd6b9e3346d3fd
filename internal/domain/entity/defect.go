package entity

import (
	"fmt"
	"math"
)

// DefectType тип обнаруженного дефекта
type DefectType string

const (
	DefectCorrosion     DefectType = "corrosion"
	DefectCrack         DefectType = "crack"
	DefectWeld          DefectType = "weld-defect"
	DefectCoatingDamage DefectType = "coating-damage"
	DefectBiofouling    DefectType = "biofouling"
	DefectOther         DefectType = "other"
)

// Valid сообщает, известен ли тип дефекта.
func (t DefectType) Valid() bool {
	switch t {
	case DefectCorrosion, DefectCrack, DefectWeld, DefectCoatingDamage, DefectBiofouling, DefectOther:
		return true
	}
	return false
}

// Severity степень серьёзности дефекта
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities перечисляет уровни от самого серьёзного к наименее серьёзному.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// Valid сообщает, известен ли уровень серьёзности.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// DefectArea представляет область с обнаруженным дефектом
type DefectArea struct {
	X      int `json:"x" yaml:"x"`           // координата X левого верхнего угла
	Y      int `json:"y" yaml:"y"`           // координата Y левого верхнего угла
	Width  int `json:"width" yaml:"width"`   // ширина области в пикселях
	Height int `json:"height" yaml:"height"` // высота области в пикселях
}

// Dimensions физические размеры дефекта в миллиметрах
type Dimensions struct {
	Length *float64 `json:"length,omitempty" yaml:"length,omitempty"`
	Width  *float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Depth  *float64 `json:"depth,omitempty" yaml:"depth,omitempty"`
}

// Defect обнаруженная аномалия на инспектируемом объекте.
type Defect struct {
	ID          string      `json:"id" yaml:"id"`
	Type        DefectType  `json:"type" yaml:"type"`
	Severity    Severity    `json:"severity" yaml:"severity"`
	Confidence  float64     `json:"confidence" yaml:"confidence"`
	Box         DefectArea  `json:"location" yaml:"location"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Dimensions  *Dimensions `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
}

// Validate проверяет тип, серьёзность и уверенность дефекта.
func (d Defect) Validate() error {
	if !d.Type.Valid() {
		return NewValidationError("type", fmt.Sprintf("unknown defect type %q", d.Type))
	}
	if !d.Severity.Valid() {
		return NewValidationError("severity", fmt.Sprintf("unknown severity %q", d.Severity))
	}
	if math.IsNaN(d.Confidence) || d.Confidence < 0 || d.Confidence > 1 {
		return NewValidationError("confidence", fmt.Sprintf("%v is outside [0, 1]", d.Confidence))
	}
	return nil
}
