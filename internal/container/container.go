package container

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"subsea-inspector/config"
	app "subsea-inspector/internal/application"
	"subsea-inspector/internal/domain/port"
	"subsea-inspector/internal/domain/service"
	"subsea-inspector/internal/infrastructure/storage"
	"subsea-inspector/internal/infrastructure/vision"
)

type Container struct {
	UserService       *app.UserService
	InspectionService *app.InspectionService
	FieldService      *app.FieldService
	CableService      *app.CableService
}

// Deps зависимости, из которых собираются сервисы приложения.
type Deps struct {
	Users     port.UserRepository
	Fields    port.FieldRepository
	Cables    port.CableRepository
	Analyses  port.AnalysisRepository
	Detector  port.DefectDetector
	Describer port.DefectDescriber
	Scorer    *service.Scorer
	Search    app.SearchDefaults
	CacheTTL  time.Duration
	Log       *slog.Logger
}

func New(d Deps) *Container {
	return &Container{
		UserService:       app.NewUserService(d.Users),
		InspectionService: app.NewInspectionService(d.Detector, d.Scorer, d.Describer, d.Analyses, d.Cables, d.Log),
		FieldService:      app.NewFieldService(d.Fields, d.Search, d.CacheTTL, d.Log),
		CableService:      app.NewCableService(d.Cables, d.Fields, d.Search, d.Log),
	}
}

// Build собирает контейнер по конфигурации поверх открытой базы.
func Build(cfg *config.Config, db *gorm.DB, log *slog.Logger) (*Container, error) {
	detector, err := vision.New(cfg.Detector.Kind, cfg.Detector.ConfidenceThreshold)
	if err != nil {
		return nil, fmt.Errorf("create detector: %w", err)
	}
	scorer, err := service.NewScorer(cfg.Scoring)
	if err != nil {
		return nil, fmt.Errorf("create scorer: %w", err)
	}

	return New(Deps{
		Users:     storage.NewMemoryUserRepository(),
		Fields:    storage.NewFieldRepository(db),
		Cables:    storage.NewCableRepository(db),
		Analyses:  storage.NewAnalysisRepository(db),
		Detector:  detector,
		Describer: service.TemplateDescriber{},
		Scorer:    scorer,
		Search:    cfg.Search,
		CacheTTL:  cfg.Cache.TTL,
		Log:       log,
	}), nil
}
