package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"subsea-inspector/internal/domain/entity"
	"subsea-inspector/internal/domain/port"
	"subsea-inspector/internal/domain/service"
	"subsea-inspector/internal/metrics"
)

// ErrDetectorNotConfigured возвращается, если сервис собран без детектора.
var ErrDetectorNotConfigured = errors.New("detector is not configured")

type InspectionService struct {
	detector  port.DefectDetector
	scorer    *service.Scorer
	describer port.DefectDescriber
	analyses  port.AnalysisRepository
	cables    port.CableRepository
	log       *slog.Logger
	now       func() time.Time
}

// AnalysisRequest изображение и сведения о месте съёмки.
type AnalysisRequest struct {
	Name         string // имя файла, для пакетной обработки
	Image        []byte
	Location     *entity.Location
	CableRouteID string
	Inspector    string
}

// InspectionOutput содержит сохранённый анализ и картинку с подсветкой.
type InspectionOutput struct {
	Analysis    *entity.Analysis
	Highlighted []byte
}

// BatchItem результат обработки одного изображения из пакета.
type BatchItem struct {
	Name   string
	Output *InspectionOutput
	Err    error
}

// NewInspectionService создаёт сервис анализа изображений.
func NewInspectionService(
	detector port.DefectDetector,
	scorer *service.Scorer,
	describer port.DefectDescriber,
	analyses port.AnalysisRepository,
	cables port.CableRepository,
	log *slog.Logger,
) *InspectionService {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &InspectionService{
		detector:  detector,
		scorer:    scorer,
		describer: describer,
		analyses:  analyses,
		cables:    cables,
		log:       log,
		now:       time.Now,
	}
}

// Analyze ищет дефекты, оценивает состояние и сохраняет результат.
// Если заданы координаты и маршрут кабеля, дополнительно сохраняется осмотр.
func (s *InspectionService) Analyze(ctx context.Context, req AnalysisRequest) (*InspectionOutput, error) {
	if s.detector == nil {
		return nil, ErrDetectorNotConfigured
	}
	if len(req.Image) == 0 {
		return nil, entity.NewValidationError("image", "must not be empty")
	}
	if req.Location != nil {
		if err := req.Location.Validate(); err != nil {
			return nil, err
		}
	}
	if req.CableRouteID != "" && s.cables != nil {
		if _, err := s.cables.GetRoute(ctx, req.CableRouteID); err != nil {
			return nil, fmt.Errorf("cable route %s: %w", req.CableRouteID, err)
		}
	}

	started := time.Now()
	defects, err := s.detector.Detect(ctx, req.Image)
	if err != nil {
		metrics.ObserveAnalysisFailure()
		return nil, fmt.Errorf("detect defects: %w", err)
	}

	result, err := s.scorer.Score(defects)
	if err != nil {
		metrics.ObserveAnalysisFailure()
		return nil, fmt.Errorf("score defects: %w", err)
	}

	analysis := &entity.Analysis{
		ID:           newAnalysisID(),
		Status:       entity.AnalysisStatusCompleted,
		ProcessedAt:  s.now().UTC(),
		Result:       *result,
		Location:     req.Location,
		CableRouteID: req.CableRouteID,
	}
	if s.describer != nil {
		desc, err := s.describer.Describe(ctx, result)
		if err != nil {
			s.log.Warn("describe defects", "error", err)
		} else {
			analysis.Findings = desc.Text
		}
	}

	var inspection *entity.CableInspection
	if req.Location != nil && req.CableRouteID != "" && s.cables != nil {
		inspection = &entity.CableInspection{
			ID:              "inspection_" + analysis.ID,
			RouteID:         req.CableRouteID,
			Date:            analysis.ProcessedAt,
			Location:        req.Location,
			ImageID:         analysis.ID,
			Condition:       result.OverallCondition,
			DetectedIssues:  detectedIssues(result.Defects),
			Confidence:      result.Confidence,
			Recommendations: result.Recommendations,
			Inspector:       req.Inspector,
			Notes:           analysis.Findings,
		}
	}
	if err := s.analyses.Save(ctx, analysis, inspection); err != nil {
		metrics.ObserveAnalysisFailure()
		return nil, fmt.Errorf("save analysis: %w", err)
	}

	var highlighted []byte
	if result.HasDefects() {
		highlighted, err = s.detector.HighlightDefects(req.Image, result.Defects)
		if err != nil {
			s.log.Warn("highlight defects", "analysis_id", analysis.ID, "error", err)
			highlighted = nil
		}
	}

	metrics.ObserveAnalysis(time.Since(started), result)
	s.log.Info("image analysed",
		"analysis_id", analysis.ID,
		"condition", result.OverallCondition,
		"defects", len(result.Defects),
		"cable_route_id", req.CableRouteID,
	)

	return &InspectionOutput{Analysis: analysis, Highlighted: highlighted}, nil
}

// AnalyzeBatch обрабатывает изображения по очереди; ошибка одного не прерывает остальные.
func (s *InspectionService) AnalyzeBatch(ctx context.Context, reqs []AnalysisRequest) []BatchItem {
	items := make([]BatchItem, 0, len(reqs))
	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			items = append(items, BatchItem{Name: req.Name, Err: err})
			continue
		}
		out, err := s.Analyze(ctx, req)
		if err != nil {
			s.log.Warn("batch item failed", "name", req.Name, "error", err)
		}
		items = append(items, BatchItem{Name: req.Name, Output: out, Err: err})
	}
	return items
}

// Get возвращает сохранённый анализ.
func (s *InspectionService) Get(ctx context.Context, analysisID string) (*entity.Analysis, error) {
	return s.analyses.Get(ctx, analysisID)
}

// Score оценивает готовый список дефектов без обращения к детектору.
func (s *InspectionService) Score(ctx context.Context, defects []entity.Defect) (*entity.InspectionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.scorer.Score(defects)
}

func newAnalysisID() string {
	return "analysis_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func detectedIssues(defects []entity.Defect) []string {
	issues := make([]string, 0, len(defects))
	for _, d := range defects {
		issues = append(issues, fmt.Sprintf("%s (%s)", d.Type, d.Severity))
	}
	return issues
}
