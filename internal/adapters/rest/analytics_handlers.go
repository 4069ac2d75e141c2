package rest

import (
	"net/http"
	"time"

	"github.com/ferone/Germany-real-sate/internal/contextkeys"
	"github.com/ferone/Germany-real-sate/internal/core/port"
	"github.com/ferone/Germany-real-sate/internal/core/port/usecases_port"
)

type AnalyticsHandler struct {
	getStatsUC            usecases_port.GetStatsUseCase
	getPriceTrendUC       usecases_port.GetPriceTrendUseCase
	getCityDistributionUC usecases_port.GetCityDistributionUseCase
	getTypeDistributionUC usecases_port.GetTypeDistributionUseCase
	getAvgPriceByTypeUC   usecases_port.GetAvgPriceByTypeUseCase
}

func NewAnalyticsHandler(
	getStatsUC usecases_port.GetStatsUseCase,
	getPriceTrendUC usecases_port.GetPriceTrendUseCase,
	getCityDistributionUC usecases_port.GetCityDistributionUseCase,
	getTypeDistributionUC usecases_port.GetTypeDistributionUseCase,
	getAvgPriceByTypeUC usecases_port.GetAvgPriceByTypeUseCase,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		getStatsUC:            getStatsUC,
		getPriceTrendUC:       getPriceTrendUC,
		getCityDistributionUC: getCityDistributionUC,
		getTypeDistributionUC: getTypeDistributionUC,
		getAvgPriceByTypeUC:   getAvgPriceByTypeUC,
	}
}

// Health обрабатывает GET /api/health
func Health(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok", Timestamp: time.Now().UTC()})
}

// GetStats обрабатывает GET /api/properties/stats
func (h *AnalyticsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	handlerLogger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetStats"})

	stats, err := h.getStatsUC.Execute(r.Context())
	if err != nil {
		writeUseCaseError(w, handlerLogger, err, "Failed to calculate stats")
		return
	}

	RespondWithJSON(w, http.StatusOK, stats)
}

// GetPriceTrend обрабатывает GET /api/properties/price-trend
func (h *AnalyticsHandler) GetPriceTrend(w http.ResponseWriter, r *http.Request) {
	handlerLogger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetPriceTrend"})

	chart, err := h.getPriceTrendUC.Execute(r.Context())
	if err != nil {
		writeUseCaseError(w, handlerLogger, err, "Failed to calculate price trend")
		return
	}

	RespondWithJSON(w, http.StatusOK, newChartResponse(chart, "Avg Price"))
}

// GetCityDistribution обрабатывает GET /api/properties/city-distribution
func (h *AnalyticsHandler) GetCityDistribution(w http.ResponseWriter, r *http.Request) {
	handlerLogger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetCityDistribution"})

	chart, err := h.getCityDistributionUC.Execute(r.Context())
	if err != nil {
		writeUseCaseError(w, handlerLogger, err, "Failed to calculate city distribution")
		return
	}

	RespondWithJSON(w, http.StatusOK, newChartResponse(chart, "Properties"))
}

// GetTypeDistribution обрабатывает GET /api/properties/type-distribution
func (h *AnalyticsHandler) GetTypeDistribution(w http.ResponseWriter, r *http.Request) {
	handlerLogger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetTypeDistribution"})

	chart, err := h.getTypeDistributionUC.Execute(r.Context())
	if err != nil {
		writeUseCaseError(w, handlerLogger, err, "Failed to calculate type distribution")
		return
	}

	RespondWithJSON(w, http.StatusOK, newChartResponse(chart, "Properties"))
}

// GetAvgPriceByType обрабатывает GET /api/properties/avg-price-by-type
func (h *AnalyticsHandler) GetAvgPriceByType(w http.ResponseWriter, r *http.Request) {
	handlerLogger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetAvgPriceByType"})

	chart, err := h.getAvgPriceByTypeUC.Execute(r.Context())
	if err != nil {
		writeUseCaseError(w, handlerLogger, err, "Failed to calculate average price by type")
		return
	}

	RespondWithJSON(w, http.StatusOK, newChartResponse(chart, "Avg Price"))
}
