package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niffitek/icke-scores/models"
	"github.com/niffitek/icke-scores/services"
)

func TestMatchStatus(t *testing.T) {
	now := time.Date(2026, time.June, 6, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		startAt time.Time
		want    string
	}{
		{"before start", now.Add(5 * time.Minute), "upcoming"},
		{"at start", now, "live"},
		{"inside live window", now.Add(-2 * time.Minute), "live"},
		{"after live window", now.Add(-4 * time.Minute), "finished"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &models.Match{StartAt: tt.startAt}
			assert.Equal(t, tt.want, matchStatus(m, now))
		})
	}
}

type stubMatchService struct {
	matches []*models.Match
	round   models.RoundLabel
}

func (s *stubMatchService) ListByCup(ctx context.Context, cupID int) ([]*models.Match, error) {
	return s.matches, nil
}

func (s *stubMatchService) ListByCupAndRound(ctx context.Context, cupID int, round models.RoundLabel) ([]*models.Match, error) {
	s.round = round
	return s.matches, nil
}

func (s *stubMatchService) UpdateScore(ctx context.Context, matchID int, input services.ScoreInput) (*models.Match, error) {
	return nil, services.ErrMatchNotFound
}

type stubTeamService struct {
	teams []models.Team
}

func (s *stubTeamService) Create(ctx context.Context, input services.CreateTeamInput) (*models.Team, error) {
	return nil, nil
}

func (s *stubTeamService) GetByID(ctx context.Context, id int) (*models.Team, error) {
	return nil, services.ErrTeamNotFound
}

func (s *stubTeamService) ListByCup(ctx context.Context, cupID int) ([]models.Team, error) {
	return s.teams, nil
}

func (s *stubTeamService) Update(ctx context.Context, id int, input services.UpdateTeamInput) (*models.Team, error) {
	return nil, services.ErrTeamNotFound
}

func (s *stubTeamService) Delete(ctx context.Context, id int) error { return nil }

func (s *stubTeamService) UploadLogo(ctx context.Context, teamID int, contentType string, reader io.Reader) (*models.Team, error) {
	return nil, nil
}

func TestListByCupResolvesTeamNames(t *testing.T) {
	matchSvc := &stubMatchService{matches: []*models.Match{
		{ID: 1, CupID: 1, Team1ID: 3, Team2ID: 4, StartAt: time.Now().Add(time.Hour)},
	}}
	teamSvc := &stubTeamService{teams: []models.Team{
		{ID: 3, Name: "Adler"},
		{ID: 4, Name: "Bären"},
	}}

	router := chi.NewRouter()
	handler := NewMatchHandler(matchSvc, teamSvc)
	router.Get("/cups/{cupID}/matches", handler.ListByCup)

	r := httptest.NewRequest(http.MethodGet, "/cups/1/matches", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var views []struct {
		ID        int    `json:"id"`
		Team1Name string `json:"team_1_name"`
		Team2Name string `json:"team_2_name"`
		Status    string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "Adler", views[0].Team1Name)
	assert.Equal(t, "Bären", views[0].Team2Name)
	assert.Equal(t, "upcoming", views[0].Status)
}

func TestListByCupRoundFilter(t *testing.T) {
	matchSvc := &stubMatchService{}
	router := chi.NewRouter()
	handler := NewMatchHandler(matchSvc, &stubTeamService{})
	router.Get("/cups/{cupID}/matches", handler.ListByCup)

	r := httptest.NewRequest(http.MethodGet, "/cups/1/matches?round=Finalrunde", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.RoundFinals, matchSvc.round)
}

func TestListByCupRejectsBadID(t *testing.T) {
	router := chi.NewRouter()
	handler := NewMatchHandler(&stubMatchService{}, &stubTeamService{})
	router.Get("/cups/{cupID}/matches", handler.ListByCup)

	r := httptest.NewRequest(http.MethodGet, "/cups/abc/matches", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
