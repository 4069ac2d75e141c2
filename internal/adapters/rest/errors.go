package rest

import (
	"errors"
	"net/http"

	"github.com/ferone/Germany-real-sate/internal/core/domain"
	"github.com/ferone/Germany-real-sate/internal/core/port"
)

// writeUseCaseError переводит ошибку ядра в HTTP-статус:
// InvalidFilter - 400, NotFound - 404, остальное - 500
func writeUseCaseError(w http.ResponseWriter, logger port.LoggerPort, err error, fallbackMessage string) {
	var filterErr *domain.InvalidFilterError
	if errors.As(err, &filterErr) {
		logger.Warn("Invalid filter value", port.Fields{"filter": filterErr.Filter, "value": filterErr.Value})
		RespondWithJSON(w, http.StatusBadRequest, ErrorResponse{Error: filterErr.Error(), Filter: filterErr.Filter})
		return
	}

	if errors.Is(err, domain.ErrListingNotFound) {
		logger.Debug("Listing not found", nil)
		WriteJSONError(w, http.StatusNotFound, "Listing not found")
		return
	}

	resp := ErrorResponse{Error: fallbackMessage}
	var partErr *domain.PartitionQueryError
	if errors.As(err, &partErr) {
		resp.Partition = string(partErr.Partition)
	}
	logger.Error("Use case failed", err, port.Fields{"partition": resp.Partition})
	RespondWithJSON(w, http.StatusInternalServerError, resp)
}
