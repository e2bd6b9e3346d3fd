package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subsea-inspector/internal/domain/entity"
)

func newScorer(t *testing.T) *Scorer {
	t.Helper()
	s, err := NewScorer(DefaultConditionPolicy())
	require.NoError(t, err)
	return s
}

func defect(typ entity.DefectType, sev entity.Severity, conf float64) entity.Defect {
	return entity.Defect{Type: typ, Severity: sev, Confidence: conf}
}

func TestScore_Empty(t *testing.T) {
	res, err := newScorer(t).Score(nil)
	require.NoError(t, err)
	require.Equal(t, entity.ConditionExcellent, res.OverallCondition)
	require.Equal(t, 1.0, res.Confidence)
	require.Empty(t, res.Defects)
	require.Empty(t, res.Recommendations)
}

func TestScore_CriticalCorrosion(t *testing.T) {
	res, err := newScorer(t).Score([]entity.Defect{defect(entity.DefectCorrosion, entity.SeverityCritical, 0.9)})
	require.NoError(t, err)
	require.Equal(t, entity.ConditionCritical, res.OverallCondition)
	require.InDelta(t, 0.9, res.Confidence, 1e-12)
	require.Equal(t, []string{
		"Immediate inspection and repair required",
		"Monitor corrosion progression",
		"Consider cathodic protection assessment",
	}, res.Recommendations)
}

func TestScore_ConditionRules(t *testing.T) {
	cases := []struct {
		name     string
		defects  []entity.Defect
		expected entity.Condition
	}{
		{"two high", []entity.Defect{
			defect(entity.DefectOther, entity.SeverityHigh, 0.9),
			defect(entity.DefectOther, entity.SeverityHigh, 0.9),
		}, entity.ConditionPoor},
		{"three medium", []entity.Defect{
			defect(entity.DefectOther, entity.SeverityMedium, 0.9),
			defect(entity.DefectOther, entity.SeverityMedium, 0.9),
			defect(entity.DefectOther, entity.SeverityMedium, 0.9),
		}, entity.ConditionFair},
		{"one high", []entity.Defect{
			defect(entity.DefectCrack, entity.SeverityHigh, 0.9),
			defect(entity.DefectCrack, entity.SeverityLow, 0.9),
		}, entity.ConditionFair},
		{"two medium", []entity.Defect{
			defect(entity.DefectOther, entity.SeverityMedium, 0.9),
			defect(entity.DefectOther, entity.SeverityMedium, 0.9),
		}, entity.ConditionGood},
		{"critical wins", []entity.Defect{
			defect(entity.DefectOther, entity.SeverityHigh, 0.9),
			defect(entity.DefectOther, entity.SeverityHigh, 0.9),
			defect(entity.DefectOther, entity.SeverityCritical, 0.9),
		}, entity.ConditionCritical},
	}

	s := newScorer(t)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := s.Score(tc.defects)
			require.NoError(t, err)
			require.Equal(t, tc.expected, res.OverallCondition)
		})
	}
}

func TestScore_OnlyLowIsGood(t *testing.T) {
	s := newScorer(t)
	types := []entity.DefectType{
		entity.DefectCorrosion, entity.DefectCrack, entity.DefectWeld,
		entity.DefectCoatingDamage, entity.DefectBiofouling, entity.DefectOther,
	}
	for n := 1; n <= len(types); n++ {
		defects := make([]entity.Defect, 0, n)
		for _, typ := range types[:n] {
			defects = append(defects, defect(typ, entity.SeverityLow, 0.5))
		}
		res, err := s.Score(defects)
		require.NoError(t, err)
		require.Equal(t, entity.ConditionGood, res.OverallCondition)
	}
}

func TestScore_OrderIndependentCondition(t *testing.T) {
	s := newScorer(t)
	a := []entity.Defect{
		defect(entity.DefectCrack, entity.SeverityHigh, 0.8),
		defect(entity.DefectCorrosion, entity.SeverityMedium, 0.7),
		defect(entity.DefectBiofouling, entity.SeverityLow, 0.6),
	}
	b := []entity.Defect{a[2], a[0], a[1]}

	ra, err := s.Score(a)
	require.NoError(t, err)
	rb, err := s.Score(b)
	require.NoError(t, err)
	require.Equal(t, ra.OverallCondition, rb.OverallCondition)
	require.InDelta(t, ra.Confidence, rb.Confidence, 1e-12)
}

func TestScore_Recommendations(t *testing.T) {
	res, err := newScorer(t).Score([]entity.Defect{
		defect(entity.DefectBiofouling, entity.SeverityLow, 0.9),
		defect(entity.DefectCorrosion, entity.SeverityMedium, 0.9),
		defect(entity.DefectCoatingDamage, entity.SeverityHigh, 0.9),
		defect(entity.DefectCorrosion, entity.SeverityMedium, 0.9),
		defect(entity.DefectWeld, entity.SeverityLow, 0.9),
		defect(entity.DefectCrack, entity.SeverityLow, 0.9),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Schedule maintenance within 3 months",
		"Schedule maintenance within 6 months",
		"Schedule biological cleaning operation",
		"Monitor corrosion progression",
		"Consider cathodic protection assessment",
		"Evaluate repair or replacement of coating",
		"Structural integrity assessment required",
	}, res.Recommendations)
}

func TestScore_Idempotent(t *testing.T) {
	s := newScorer(t)
	defects := []entity.Defect{
		defect(entity.DefectCorrosion, entity.SeverityMedium, 0.96),
		defect(entity.DefectCorrosion, entity.SeverityLow, 0.89),
		defect(entity.DefectCoatingDamage, entity.SeverityLow, 0.91),
	}

	first, err := s.Score(defects)
	require.NoError(t, err)
	second, err := s.Score(defects)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Equal(t, entity.ConditionGood, first.OverallCondition)
	require.InDelta(t, 0.92, first.Confidence, 1e-9)
}

func TestScore_DoesNotAliasInput(t *testing.T) {
	defects := []entity.Defect{defect(entity.DefectCrack, entity.SeverityLow, 0.5)}
	res, err := newScorer(t).Score(defects)
	require.NoError(t, err)
	defects[0].Severity = entity.SeverityCritical
	require.Equal(t, entity.SeverityLow, res.Defects[0].Severity)
}

func TestScore_RejectsMalformedDefects(t *testing.T) {
	s := newScorer(t)
	bad := [][]entity.Defect{
		{defect(entity.DefectCrack, entity.SeverityLow, 1.5)},
		{defect(entity.DefectCrack, entity.SeverityLow, -0.01)},
		{defect("dent", entity.SeverityLow, 0.5)},
		{defect(entity.DefectCrack, "urgent", 0.5)},
		{defect(entity.DefectCrack, entity.SeverityLow, 0.5), defect(entity.DefectCrack, entity.SeverityLow, 2)},
	}
	for _, defects := range bad {
		res, err := s.Score(defects)
		require.Nil(t, res)
		require.True(t, entity.IsValidation(err))
	}
}

func TestCustomPolicy(t *testing.T) {
	s, err := NewScorer(ConditionPolicy{PoorHighCount: 3, FairHighCount: 2, FairMediumCount: 1})
	require.NoError(t, err)

	res, err := s.Score([]entity.Defect{
		defect(entity.DefectOther, entity.SeverityHigh, 0.9),
		defect(entity.DefectOther, entity.SeverityHigh, 0.9),
	})
	require.NoError(t, err)
	require.Equal(t, entity.ConditionFair, res.OverallCondition)

	res, err = s.Score([]entity.Defect{defect(entity.DefectOther, entity.SeverityMedium, 0.9)})
	require.NoError(t, err)
	require.Equal(t, entity.ConditionFair, res.OverallCondition)

	_, err = NewScorer(ConditionPolicy{})
	require.True(t, entity.IsValidation(err))
}

func TestTemplateDescriber(t *testing.T) {
	s := newScorer(t)
	res, err := s.Score([]entity.Defect{
		defect(entity.DefectCorrosion, entity.SeverityMedium, 0.96),
		defect(entity.DefectCorrosion, entity.SeverityLow, 0.89),
		defect(entity.DefectCoatingDamage, entity.SeverityLow, 0.91),
	})
	require.NoError(t, err)

	desc, err := TemplateDescriber{}.Describe(context.Background(), res)
	require.NoError(t, err)
	require.Equal(t, "3 defects detected: 2 corrosion, 1 coating-damage; overall condition good", desc.Text)

	empty, err := s.Score(nil)
	require.NoError(t, err)
	desc, err = TemplateDescriber{}.Describe(context.Background(), empty)
	require.NoError(t, err)
	require.Equal(t, "No defects detected", desc.Text)
}
