package service

import (
	"github.com/noah-isme/course-insights-api/internal/dto"
	"github.com/noah-isme/course-insights-api/internal/metrics"
)

// CatalogService exposes the metric catalog.
type CatalogService interface {
	List() []dto.MetricDefinitionResponse
	Get(key string) (dto.MetricDefinitionResponse, bool)
}

type catalogService struct{}

// NewCatalogService constructs the catalog service.
func NewCatalogService() CatalogService {
	return catalogService{}
}

func (catalogService) List() []dto.MetricDefinitionResponse {
	defs := metrics.Definitions()
	out := make([]dto.MetricDefinitionResponse, 0, len(defs))
	for _, def := range defs {
		out = append(out, dto.NewMetricDefinitionResponse(def))
	}
	return out
}

func (catalogService) Get(key string) (dto.MetricDefinitionResponse, bool) {
	def, ok := metrics.Lookup(key)
	if !ok {
		return dto.MetricDefinitionResponse{}, false
	}
	return dto.NewMetricDefinitionResponse(def), true
}
