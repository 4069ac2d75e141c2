package rest

import (
	"net/http"

	"github.com/ferone/Germany-real-sate/internal/contextkeys"
	"github.com/ferone/Germany-real-sate/internal/core/domain"
	"github.com/ferone/Germany-real-sate/internal/core/port"
	"github.com/ferone/Germany-real-sate/internal/core/port/usecases_port"

	"github.com/go-chi/chi/v5"
)

type ListingHandler struct {
	searchListingsUC usecases_port.SearchListingsUseCase
	getListingUC     usecases_port.GetListingUseCase
}

func NewListingHandler(searchListingsUC usecases_port.SearchListingsUseCase, getListingUC usecases_port.GetListingUseCase) *ListingHandler {
	return &ListingHandler{
		searchListingsUC: searchListingsUC,
		getListingUC:     getListingUC,
	}
}

// SearchListings обрабатывает GET /api/properties
func (h *ListingHandler) SearchListings(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	limit, err := GetLimitOrDefault(r)
	if err != nil {
		logger.Warn("Invalid limit parameter", port.Fields{"error": err.Error()})
		RespondWithJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid limit parameter", Filter: "limit"})
		return
	}
	offset, err := GetOffsetOrDefault(r)
	if err != nil {
		logger.Warn("Invalid offset parameter", port.Fields{"error": err.Error()})
		RespondWithJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid offset parameter", Filter: "offset"})
		return
	}

	query := r.URL.Query()
	raw := make(map[string]string, len(domain.SearchFilterNames))
	for _, name := range domain.SearchFilterNames {
		raw[name] = query.Get(name)
	}

	handlerLogger := logger.WithFields(port.Fields{
		"handler": "SearchListings",
		"filters": raw,
	})

	filters, err := domain.ParseSearchFilters(raw)
	if err != nil {
		writeUseCaseError(w, handlerLogger, err, "Failed to search listings")
		return
	}

	result, err := h.searchListingsUC.Execute(r.Context(), filters, domain.Page{Limit: limit, Offset: offset})
	if err != nil {
		writeUseCaseError(w, handlerLogger, err, "Failed to search listings")
		return
	}

	handlerLogger.Info("Successfully found listings", port.Fields{
		"total_found":   result.Total,
		"items_on_page": len(result.Listings),
	})
	RespondWithJSON(w, http.StatusOK, result)
}

// GetListing обрабатывает GET /api/properties/{type}/{externalID}
func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	propertyType := chi.URLParam(r, "type")
	externalID := chi.URLParam(r, "externalID")

	handlerLogger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
		"handler":     "GetListing",
		"type":        propertyType,
		"external_id": externalID,
	})

	listing, err := h.getListingUC.Execute(r.Context(), propertyType, externalID)
	if err != nil {
		writeUseCaseError(w, handlerLogger, err, "Failed to get listing")
		return
	}

	RespondWithJSON(w, http.StatusOK, newListingDetailsResponse(listing))
}
