package app

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"subsea-inspector/internal/domain/entity"
	"subsea-inspector/internal/domain/service"
	"subsea-inspector/internal/infrastructure/storage"
	"subsea-inspector/internal/infrastructure/vision"
)

type fixture struct {
	fields      *storage.FieldRepository
	cables      *storage.CableRepository
	analyses    *storage.AnalysisRepository
	inspections *InspectionService
	fieldSvc    *FieldService
	cableSvc    *CableService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := storage.OpenInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close(db) })

	scorer, err := service.NewScorer(service.DefaultConditionPolicy())
	require.NoError(t, err)

	f := &fixture{
		fields:   storage.NewFieldRepository(db),
		cables:   storage.NewCableRepository(db),
		analyses: storage.NewAnalysisRepository(db),
	}
	f.inspections = NewInspectionService(
		vision.NewMockDetector(vision.DefaultConfidenceThreshold),
		scorer,
		service.TemplateDescriber{},
		f.analyses,
		f.cables,
		nil,
	)
	f.fieldSvc = NewFieldService(f.fields, DefaultSearchDefaults(), time.Minute, nil)
	f.cableSvc = NewCableService(f.cables, f.fields, DefaultSearchDefaults(), nil)
	return f
}

func field(id, name string, lat, lon float64) *entity.Field {
	return &entity.Field{
		ID:           id,
		Name:         name,
		Operator:     "Equinor",
		Status:       entity.FieldProducing,
		ResourceType: "oil",
		Location: entity.FieldLocation{
			Location: entity.Location{Latitude: lat, Longitude: lon},
			SeaArea:  entity.SeaNorth,
		},
	}
}

// seedNorthSea сохраняет небольшой набор месторождений и кабель Troll-Oseberg.
func (f *fixture) seedNorthSea(t *testing.T) {
	t.Helper()
	ctx := t.Context()

	troll := field("TROLL", "Troll", 60.6442, 3.7189)
	oseberg := field("OSEBERG", "Oseberg", 60.4914, 2.8281)
	tune := field("TUNE", "Tune", 60.4667, 2.6500)
	tune.HubFieldID = "OSEBERG"
	ekofisk := field("EKOFISK", "Ekofisk", 56.5466, 3.2183)
	ekofisk.Operator = "ConocoPhillips"

	for _, fl := range []*entity.Field{troll, oseberg, tune, ekofisk} {
		require.NoError(t, f.fieldSvc.Save(ctx, fl))
	}

	require.NoError(t, f.cableSvc.Create(ctx, &entity.CableRoute{
		ID:                 "TROLL-OSEBERG",
		Name:               "Troll - Oseberg power",
		StartFieldID:       "TROLL",
		EndFieldID:         "OSEBERG",
		Type:               entity.CablePower,
		LengthKm:           52,
		Operational:        true,
		InspectionRequired: true,
	}))
}

func samplePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 20, G: 70, B: 110, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
