package port

import (
	"context"
	"time"

	"subsea-inspector/internal/domain/entity"
)

// InspectionFilter условия выборки осмотров.
type InspectionFilter struct {
	RouteID     string
	Condition   entity.Condition
	Since       time.Time
	LocatedOnly bool // только осмотры с координатами
	Limit       int
}

// CableRepository интерфейс хранилища кабельных маршрутов и осмотров
type CableRepository interface {
	// ListRoutes возвращает маршруты; operational == nil означает без фильтра
	ListRoutes(ctx context.Context, operational *bool) ([]entity.CableRoute, error)

	// GetRoute возвращает маршрут или ErrNotFound
	GetRoute(ctx context.Context, routeID string) (*entity.CableRoute, error)

	// SaveRoute создаёт или обновляет маршрут
	SaveRoute(ctx context.Context, route *entity.CableRoute) error

	// RoutesForField возвращает маршруты, начинающиеся или заканчивающиеся на месторождении
	RoutesForField(ctx context.Context, fieldID string) ([]entity.CableRoute, error)

	// RoutesNeedingInspection возвращает маршруты без осмотра после cutoff
	RoutesNeedingInspection(ctx context.Context, cutoff time.Time) ([]entity.CableRoute, error)

	// SaveInspection сохраняет осмотр и сдвигает дату последнего осмотра маршрута
	SaveInspection(ctx context.Context, inspection *entity.CableInspection) error

	// Inspections возвращает осмотры по фильтру, новые первыми
	Inspections(ctx context.Context, filter InspectionFilter) ([]entity.CableInspection, error)

	// Statistics считает сводку по кабелям
	Statistics(ctx context.Context, cutoff time.Time) (*entity.CableStatistics, error)
}
