package handlers

import (
	"net/http"

	"github.com/niffitek/icke-scores/services"
)

type StandingsHandler struct {
	standingsService services.StandingsService
}

func NewStandingsHandler(standingsService services.StandingsService) *StandingsHandler {
	return &StandingsHandler{standingsService: standingsService}
}

func (h *StandingsHandler) GetByCup(w http.ResponseWriter, r *http.Request) {
	cupID, err := idParam(r, "cupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tables, err := h.standingsService.ComputeStandings(r.Context(), cupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tables, nil)
}
