package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/niffitek/icke-scores/models"
	"github.com/niffitek/icke-scores/repositories"
	"github.com/niffitek/icke-scores/standings"
)

// GroupStandings is one group's ranked table for display.
type GroupStandings struct {
	Group models.Group           `json:"group"`
	Teams []*standings.TeamStats `json:"teams"`
}

// StandingsService computes the current tables for a cup. It only reads, so
// dashboards may poll it as often as they like.
type StandingsService interface {
	ComputeStandings(ctx context.Context, cupID int) ([]GroupStandings, error)
}

type standingsService struct {
	cupRepo       repositories.CupRepository
	teamRepo      repositories.TeamRepository
	groupRepo     repositories.GroupRepository
	groupTeamRepo repositories.GroupTeamRepository
	matchRepo     repositories.MatchRepository
}

func NewStandingsService(
	cupRepo repositories.CupRepository,
	teamRepo repositories.TeamRepository,
	groupRepo repositories.GroupRepository,
	groupTeamRepo repositories.GroupTeamRepository,
	matchRepo repositories.MatchRepository,
) StandingsService {
	return &standingsService{
		cupRepo:       cupRepo,
		teamRepo:      teamRepo,
		groupRepo:     groupRepo,
		groupTeamRepo: groupTeamRepo,
		matchRepo:     matchRepo,
	}
}

func (s *standingsService) ComputeStandings(ctx context.Context, cupID int) ([]GroupStandings, error) {
	cup, err := s.cupRepo.GetByID(ctx, cupID)
	if err != nil {
		return nil, ErrCupNotFound
	}

	// During the final round the E-H tables are shown; any earlier state
	// shows the qualifying groups.
	round := models.RoundQualifying
	groupNames := models.QualifyingGroupNames
	if cup.State == models.CupStateFinals || cup.State == models.CupStateClosed {
		round = models.RoundFinals
		groupNames = models.FinalGroupNames
	}

	var (
		teams      []models.Team
		groups     []models.Group
		groupTeams []models.GroupTeam
		matches    []*models.Match
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		teams, err = s.teamRepo.ListByCup(gCtx, cupID)
		return err
	})
	g.Go(func() error {
		var err error
		groups, err = s.groupRepo.ListByCup(gCtx, cupID)
		return err
	})
	g.Go(func() error {
		var err error
		groupTeams, err = s.groupTeamRepo.List(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByCupAndRound(gCtx, cupID, round)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load standings data for cup %d: %w", cupID, err)
	}

	// Only games with entered scores feed the tables.
	scored := make([]*models.Match, 0, len(matches))
	for _, m := range matches {
		if m.HasScores() {
			scored = append(scored, m)
		}
	}

	relevantGroups := filterGroups(groups, groupNames)
	stats := standings.Calculate(teams, groupTeams, scored, relevantGroups)

	tables := make([]GroupStandings, 0, len(relevantGroups))
	for _, group := range relevantGroups {
		tables = append(tables, GroupStandings{
			Group: group,
			Teams: standings.RankGroup(stats, groupTeams, group.ID, scored),
		})
	}
	return tables, nil
}
