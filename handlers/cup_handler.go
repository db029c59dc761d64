package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/niffitek/icke-scores/services"
)

type CupHandler struct {
	cupService services.CupService
}

func NewCupHandler(cupService services.CupService) *CupHandler {
	return &CupHandler{cupService: cupService}
}

func idParam(r *http.Request, name string) (int, error) {
	return strconv.Atoi(chi.URLParam(r, name))
}

func (h *CupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateCupInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	cup, err := h.cupService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cup, nil)
}

func (h *CupHandler) List(w http.ResponseWriter, r *http.Request) {
	cups, err := h.cupService.List(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cups, nil)
}

func (h *CupHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "cupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	cup, err := h.cupService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cup, nil)
}

func (h *CupHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	cup, err := h.cupService.GetActive(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cup, nil)
}

func (h *CupHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "cupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.UpdateCupInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	cup, err := h.cupService.Update(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cup, nil)
}

func (h *CupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "cupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.cupService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
