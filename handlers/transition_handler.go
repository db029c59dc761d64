package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/niffitek/icke-scores/services"
)

type TransitionHandler struct {
	transitionService services.TransitionService
}

func NewTransitionHandler(transitionService services.TransitionService) *TransitionHandler {
	return &TransitionHandler{transitionService: transitionService}
}

// startInput optionally overrides the first round's start time; it defaults
// to the next full half hour.
type startInput struct {
	StartAt *time.Time `json:"start_at"`
}

func startTime(input startInput) time.Time {
	if input.StartAt != nil {
		return *input.StartAt
	}
	return time.Now().Truncate(30 * time.Minute).Add(30 * time.Minute)
}

func (h *TransitionHandler) StartQualifying(w http.ResponseWriter, r *http.Request) {
	h.runWithStart(w, r, h.transitionService.StartQualifying)
}

func (h *TransitionHandler) StartFinals(w http.ResponseWriter, r *http.Request) {
	h.runWithStart(w, r, h.transitionService.StartFinals)
}

func (h *TransitionHandler) CloseCup(w http.ResponseWriter, r *http.Request) {
	cupID, err := idParam(r, "cupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	result, err := h.transitionService.CloseCup(r.Context(), cupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result, nil)
}

func (h *TransitionHandler) runWithStart(
	w http.ResponseWriter,
	r *http.Request,
	transition func(ctx context.Context, cupID int, start time.Time) (*services.TransitionResult, error),
) {
	cupID, err := idParam(r, "cupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	input := startInput{}
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	result, err := transition(r.Context(), cupID, startTime(input))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result, nil)
}
