package handlers

import (
	"net/http"
	"time"

	"github.com/niffitek/icke-scores/models"
	"github.com/niffitek/icke-scores/services"
)

// A match counts as live from its start time until shortly after; the games
// only run a few minutes each.
const liveWindow = 3 * time.Minute

type matchView struct {
	*models.Match
	Team1Name string `json:"team_1_name"`
	Team2Name string `json:"team_2_name"`
	Status    string `json:"status"` // upcoming, live, finished
}

type MatchHandler struct {
	matchService services.MatchService
	teamService  services.TeamService
}

func NewMatchHandler(matchService services.MatchService, teamService services.TeamService) *MatchHandler {
	return &MatchHandler{matchService: matchService, teamService: teamService}
}

func (h *MatchHandler) ListByCup(w http.ResponseWriter, r *http.Request) {
	cupID, err := idParam(r, "cupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var matches []*models.Match
	if round := r.URL.Query().Get("round"); round != "" {
		matches, err = h.matchService.ListByCupAndRound(r.Context(), cupID, models.RoundLabel(round))
	} else {
		matches, err = h.matchService.ListByCup(r.Context(), cupID)
	}
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	teams, err := h.teamService.ListByCup(r.Context(), cupID)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	teamNames := make(map[int]string, len(teams))
	for _, t := range teams {
		teamNames[t.ID] = t.Name
	}

	now := time.Now()
	views := make([]matchView, 0, len(matches))
	for _, m := range matches {
		views = append(views, matchView{
			Match:     m,
			Team1Name: teamNames[m.Team1ID],
			Team2Name: teamNames[m.Team2ID],
			Status:    matchStatus(m, now),
		})
	}
	writeJSON(w, http.StatusOK, views, nil)
}

func (h *MatchHandler) UpdateScore(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.ScoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.UpdateScore(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, match, nil)
}

func matchStatus(m *models.Match, now time.Time) string {
	switch {
	case now.Before(m.StartAt):
		return "upcoming"
	case now.Before(m.StartAt.Add(liveWindow)):
		return "live"
	default:
		return "finished"
	}
}
