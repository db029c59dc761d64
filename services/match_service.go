package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/niffitek/icke-scores/live"
	"github.com/niffitek/icke-scores/models"
	"github.com/niffitek/icke-scores/repositories"
)

// ScoreInput carries one score entry for a match. Fields left nil clear the
// corresponding stored value.
type ScoreInput struct {
	Round1PointsTeam1 *int `json:"round1_points_team_1"`
	Round1PointsTeam2 *int `json:"round1_points_team_2"`
	Round2PointsTeam1 *int `json:"round2_points_team_1"`
	Round2PointsTeam2 *int `json:"round2_points_team_2"`
}

type MatchService interface {
	ListByCup(ctx context.Context, cupID int) ([]*models.Match, error)
	ListByCupAndRound(ctx context.Context, cupID int, round models.RoundLabel) ([]*models.Match, error)
	// UpdateScore stores the entered sub-round points, derives the per-sub-
	// round winner references from them and notifies live dashboards.
	UpdateScore(ctx context.Context, matchID int, input ScoreInput) (*models.Match, error)
}

type matchService struct {
	matchRepo repositories.MatchRepository
	hub       *live.Hub
}

func NewMatchService(matchRepo repositories.MatchRepository, hub *live.Hub) MatchService {
	return &matchService{matchRepo: matchRepo, hub: hub}
}

func (s *matchService) ListByCup(ctx context.Context, cupID int) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByCup(ctx, cupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for cup %d: %w", cupID, err)
	}
	return matches, nil
}

func (s *matchService) ListByCupAndRound(ctx context.Context, cupID int, round models.RoundLabel) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByCupAndRound(ctx, cupID, round)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s matches for cup %d: %w", round, cupID, err)
	}
	return matches, nil
}

func (s *matchService) UpdateScore(ctx context.Context, matchID int, input ScoreInput) (*models.Match, error) {
	for _, points := range []*int{
		input.Round1PointsTeam1, input.Round1PointsTeam2,
		input.Round2PointsTeam1, input.Round2PointsTeam2,
	} {
		if points != nil && *points < 0 {
			return nil, ErrScoreNegative
		}
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}

	match.Round1PointsTeam1 = input.Round1PointsTeam1
	match.Round1PointsTeam2 = input.Round1PointsTeam2
	match.Round2PointsTeam1 = input.Round2PointsTeam1
	match.Round2PointsTeam2 = input.Round2PointsTeam2
	match.Round1Winner = subRoundWinner(match, input.Round1PointsTeam1, input.Round1PointsTeam2)
	match.Round2Winner = subRoundWinner(match, input.Round2PointsTeam1, input.Round2PointsTeam2)

	if err := s.matchRepo.UpdateScore(ctx, match); err != nil {
		return nil, fmt.Errorf("failed to update score for match %d: %w", matchID, err)
	}

	s.hub.BroadcastToRoom(live.CupRoom(match.CupID), live.Message{
		Type:    live.TypeMatchUpdated,
		Payload: match,
	})
	// Standings are derived data; dashboards refetch them on this signal.
	s.hub.BroadcastToRoom(live.CupRoom(match.CupID), live.Message{
		Type:    live.TypeStandingsUpdated,
		Payload: map[string]interface{}{"cup_id": match.CupID},
	})
	return match, nil
}

// subRoundWinner decides one sub-round from its points. A missing side or a
// points tie yields no winner.
func subRoundWinner(match *models.Match, points1, points2 *int) *int {
	if points1 == nil || points2 == nil || *points1 == *points2 {
		return nil
	}
	winner := match.Team1ID
	if *points2 > *points1 {
		winner = match.Team2ID
	}
	return &winner
}
