package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/niffitek/icke-scores/live"
	"github.com/niffitek/icke-scores/models"
	"github.com/niffitek/icke-scores/repositories"
	"github.com/niffitek/icke-scores/schedule"
	"github.com/niffitek/icke-scores/standings"
)

// Offsets of the final groups into the absolute placement order: group E
// holds places 1-4, F 5-8, G 9-12, H 13-16.
var finalGroupOffsets = map[string]int{"E": 0, "F": 4, "G": 8, "H": 12}

const qualifyingTeamCount = 16

// TransitionResult reports the outcome of one phase transition to the caller.
type TransitionResult struct {
	State          models.CupState `json:"state"`
	MatchesCreated int             `json:"matches_created"`
	MatchesSkipped int             `json:"matches_skipped"`
	Message        string          `json:"message"`
}

// TransitionService drives the cup lifecycle. Each transition validates its
// preconditions before the first write; once writing has begun there is no
// compensating rollback, a failure is surfaced and the operator reconciles
// manually. All persisted writes are idempotent upserts, so re-running a
// transition after a partial failure completes it without duplicates.
type TransitionService interface {
	// StartQualifying moves a cup from Bevorstehend to Vorrunde and creates
	// the qualifying fixtures from the A-D group assignments.
	StartQualifying(ctx context.Context, cupID int, start time.Time) (*TransitionResult, error)
	// StartFinals ranks the qualifying groups, seeds groups E-H from the
	// rankings and creates the final-round fixtures.
	StartFinals(ctx context.Context, cupID int, start time.Time) (*TransitionResult, error)
	// CloseCup ranks the final groups and assigns absolute placements 1-16.
	// Irreversible.
	CloseCup(ctx context.Context, cupID int) (*TransitionResult, error)
}

type transitionService struct {
	cupRepo       repositories.CupRepository
	teamRepo      repositories.TeamRepository
	groupRepo     repositories.GroupRepository
	groupTeamRepo repositories.GroupTeamRepository
	matchRepo     repositories.MatchRepository
	hub           *live.Hub
	logger        *slog.Logger
}

func NewTransitionService(
	cupRepo repositories.CupRepository,
	teamRepo repositories.TeamRepository,
	groupRepo repositories.GroupRepository,
	groupTeamRepo repositories.GroupTeamRepository,
	matchRepo repositories.MatchRepository,
	hub *live.Hub,
	logger *slog.Logger,
) TransitionService {
	return &transitionService{
		cupRepo:       cupRepo,
		teamRepo:      teamRepo,
		groupRepo:     groupRepo,
		groupTeamRepo: groupTeamRepo,
		matchRepo:     matchRepo,
		hub:           hub,
		logger:        logger,
	}
}

// cupData is everything a transition needs to read, fetched in one fan-out.
type cupData struct {
	teams      []models.Team
	groups     []models.Group
	groupTeams []models.GroupTeam
	matches    []*models.Match
}

func (s *transitionService) fetchCupData(ctx context.Context, cupID int, round *models.RoundLabel) (*cupData, error) {
	data := &cupData{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		teams, err := s.teamRepo.ListByCup(gCtx, cupID)
		if err != nil {
			return fmt.Errorf("failed to list teams for cup %d: %w", cupID, err)
		}
		data.teams = teams
		return nil
	})
	g.Go(func() error {
		groups, err := s.groupRepo.ListByCup(gCtx, cupID)
		if err != nil {
			return fmt.Errorf("failed to list groups for cup %d: %w", cupID, err)
		}
		data.groups = groups
		return nil
	})
	g.Go(func() error {
		groupTeams, err := s.groupTeamRepo.List(gCtx)
		if err != nil {
			return fmt.Errorf("failed to list group assignments: %w", err)
		}
		data.groupTeams = groupTeams
		return nil
	})
	if round != nil {
		g.Go(func() error {
			matches, err := s.matchRepo.ListByCupAndRound(gCtx, cupID, *round)
			if err != nil {
				return fmt.Errorf("failed to list %s matches for cup %d: %w", *round, cupID, err)
			}
			data.matches = matches
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *transitionService) requireState(ctx context.Context, cupID int, want models.CupState) (*models.Cup, error) {
	cup, err := s.cupRepo.GetByID(ctx, cupID)
	if err != nil {
		if errors.Is(err, repositories.ErrCupNotFound) {
			return nil, ErrCupNotFound
		}
		return nil, err
	}
	if cup.State != want {
		return nil, fmt.Errorf("%w: cup %d is %s, want %s", ErrCupWrongState, cupID, cup.State, want)
	}
	return cup, nil
}

func (s *transitionService) StartQualifying(ctx context.Context, cupID int, start time.Time) (*TransitionResult, error) {
	cup, err := s.requireState(ctx, cupID, models.CupStateUpcoming)
	if err != nil {
		return nil, err
	}

	count, err := s.teamRepo.CountByCup(ctx, cupID)
	if err != nil {
		return nil, fmt.Errorf("failed to count teams for cup %d: %w", cupID, err)
	}
	if count != qualifyingTeamCount {
		return nil, fmt.Errorf("%w: found %d", ErrCupNeedsSixteen, count)
	}

	data, err := s.fetchCupData(ctx, cupID, nil)
	if err != nil {
		return nil, err
	}
	qualifyingGroups := filterGroups(data.groups, models.QualifyingGroupNames)
	if len(qualifyingGroups) != len(models.QualifyingGroupNames) {
		return nil, fmt.Errorf("%w: found %d groups", ErrGroupsIncomplete, len(qualifyingGroups))
	}

	result, err := s.generateAndPersist(ctx, cup, models.RoundQualifying, start, data.teams, qualifyingGroups, data.groupTeams)
	if err != nil {
		return nil, err
	}

	state, err := s.advanceState(ctx, cup)
	if err != nil {
		return nil, err
	}
	result.State = state
	result.Message = "Vorrunde gestartet"
	return result, nil
}

func (s *transitionService) StartFinals(ctx context.Context, cupID int, start time.Time) (*TransitionResult, error) {
	cup, err := s.requireState(ctx, cupID, models.CupStateQualifying)
	if err != nil {
		return nil, err
	}

	round := models.RoundQualifying
	data, err := s.fetchCupData(ctx, cupID, &round)
	if err != nil {
		return nil, err
	}
	qualifyingGroups := filterGroups(data.groups, models.QualifyingGroupNames)
	if len(qualifyingGroups) != len(models.QualifyingGroupNames) {
		return nil, fmt.Errorf("%w: found %d groups", ErrGroupsIncomplete, len(qualifyingGroups))
	}

	stats := standings.Calculate(data.teams, data.groupTeams, data.matches, qualifyingGroups)

	// rankings[g] is group g's teams in final rank order; the n-th final
	// group is seeded with every qualifying group's n-th place.
	rankings := make([][]*standings.TeamStats, len(qualifyingGroups))
	for i, group := range qualifyingGroups {
		rankings[i] = standings.RankGroup(stats, data.groupTeams, group.ID, data.matches)
	}

	finalGroups := make([]*models.Group, len(models.FinalGroupNames))
	g, gCtx := errgroup.WithContext(ctx)
	for i, name := range models.FinalGroupNames {
		group := &models.Group{CupID: cupID, Name: name}
		finalGroups[i] = group
		g.Go(func() error {
			if err := s.groupRepo.Create(gCtx, nil, group); err != nil {
				return fmt.Errorf("failed to create group %s: %w", group.Name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransitionIncomplete, err)
	}

	// Qualifying assignments stay untouched; the new rows are the final-phase
	// memberships.
	var assignments []*models.GroupTeam
	for placeIdx, finalGroup := range finalGroups {
		for _, ranking := range rankings {
			if placeIdx < len(ranking) {
				assignments = append(assignments, &models.GroupTeam{
					GroupID: finalGroup.ID,
					TeamID:  ranking[placeIdx].TeamID,
				})
			}
		}
	}
	if err := s.groupTeamRepo.CreateBatch(ctx, nil, assignments); err != nil {
		return nil, fmt.Errorf("%w: failed to persist final group assignments: %w", ErrTransitionIncomplete, err)
	}

	finalGroupList := make([]models.Group, len(finalGroups))
	finalGroupTeams := make([]models.GroupTeam, 0, len(assignments))
	for i, group := range finalGroups {
		finalGroupList[i] = *group
	}
	for _, a := range assignments {
		finalGroupTeams = append(finalGroupTeams, *a)
	}

	result, err := s.generateAndPersist(ctx, cup, models.RoundFinals, start, data.teams, finalGroupList, finalGroupTeams)
	if err != nil {
		return nil, err
	}

	state, err := s.advanceState(ctx, cup)
	if err != nil {
		return nil, err
	}
	result.State = state
	result.Message = "Finalrunde gestartet"
	return result, nil
}

func (s *transitionService) CloseCup(ctx context.Context, cupID int) (*TransitionResult, error) {
	cup, err := s.requireState(ctx, cupID, models.CupStateFinals)
	if err != nil {
		return nil, err
	}

	round := models.RoundFinals
	data, err := s.fetchCupData(ctx, cupID, &round)
	if err != nil {
		return nil, err
	}
	finalGroups := filterGroups(data.groups, models.FinalGroupNames)
	if len(finalGroups) != len(models.FinalGroupNames) {
		return nil, fmt.Errorf("%w: found %d final groups", ErrGroupsIncomplete, len(finalGroups))
	}

	stats := standings.Calculate(data.teams, data.groupTeams, data.matches, finalGroups)

	for _, group := range finalGroups {
		offset, ok := finalGroupOffsets[group.Name]
		if !ok {
			continue
		}
		ranking := standings.RankGroup(stats, data.groupTeams, group.ID, data.matches)
		for rank, teamStats := range ranking {
			place := offset + rank + 1
			if err := s.teamRepo.UpdateFinalPlace(ctx, nil, teamStats.TeamID, place); err != nil {
				return nil, fmt.Errorf("%w: failed to set place %d for team %d: %w",
					ErrTransitionIncomplete, place, teamStats.TeamID, err)
			}
		}
	}

	state, err := s.advanceState(ctx, cup)
	if err != nil {
		return nil, err
	}
	return &TransitionResult{
		State:   state,
		Message: "Turnier abgeschlossen",
	}, nil
}

// generateAndPersist builds the slot map for the given groups, runs the
// fixture generator and writes the batch. Skipped fixtures are logged, not
// treated as errors.
func (s *transitionService) generateAndPersist(
	ctx context.Context,
	cup *models.Cup,
	round models.RoundLabel,
	start time.Time,
	teams []models.Team,
	groups []models.Group,
	groupTeams []models.GroupTeam,
) (*TransitionResult, error) {
	slots := schedule.BuildSlotMap(teams, groups, groupTeams)

	generated, err := schedule.Generate(schedule.TableFor(round), round, cup.ID, start, slots)
	if err != nil {
		return nil, fmt.Errorf("fixture generation for cup %d failed: %w", cup.ID, err)
	}
	if generated.Skipped > 0 {
		s.logger.Warn("fixture generation skipped unresolvable slots",
			slog.Int("cup_id", cup.ID),
			slog.String("round", string(round)),
			slog.Int("skipped", generated.Skipped))
	}

	if err := s.matchRepo.UpsertBatch(ctx, nil, generated.Matches); err != nil {
		return nil, fmt.Errorf("%w: failed to persist %s fixtures: %w", ErrTransitionIncomplete, round, err)
	}

	return &TransitionResult{
		MatchesCreated: len(generated.Matches),
		MatchesSkipped: generated.Skipped,
	}, nil
}

// advanceState moves the cup to the successor of its current state. The
// callers have already verified the current state, so a missing successor
// can only mean the cup was closed concurrently.
func (s *transitionService) advanceState(ctx context.Context, cup *models.Cup) (models.CupState, error) {
	state, ok := cup.State.Next()
	if !ok {
		return "", fmt.Errorf("%w: cup %d is %s", ErrCupWrongState, cup.ID, cup.State)
	}
	if err := s.cupRepo.UpdateState(ctx, nil, cup.ID, state); err != nil {
		return "", fmt.Errorf("%w: failed to set cup %d state to %s: %w", ErrTransitionIncomplete, cup.ID, state, err)
	}
	s.logger.Info("cup state changed",
		slog.Int("cup_id", cup.ID),
		slog.String("from", string(cup.State)),
		slog.String("to", string(state)))
	s.hub.BroadcastToRoom(live.CupRoom(cup.ID), live.Message{
		Type:    live.TypeCupStateChanged,
		Payload: map[string]interface{}{"cup_id": cup.ID, "state": state},
	})
	return state, nil
}

func filterGroups(groups []models.Group, names []string) []models.Group {
	filtered := make([]models.Group, 0, len(names))
	for _, name := range names {
		for _, group := range groups {
			if group.Name == name {
				filtered = append(filtered, group)
				break
			}
		}
	}
	return filtered
}
