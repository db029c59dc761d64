package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/niffitek/icke-scores/models"
	"github.com/niffitek/icke-scores/repositories"
)

// GroupWithTeams is a group plus its member teams, for roster views.
type GroupWithTeams struct {
	models.Group
	Teams []models.Team `json:"teams"`
}

// GroupService manages the manual qualifying-phase group setup. The final
// groups E-H are never created here; they are derived from qualifying
// results by the transition service.
type GroupService interface {
	CreateGroup(ctx context.Context, cupID int, name string) (*models.Group, error)
	ListByCup(ctx context.Context, cupID int) ([]GroupWithTeams, error)
	AssignTeam(ctx context.Context, groupID, teamID int) error
	RemoveTeam(ctx context.Context, teamID int) error
}

type groupService struct {
	groupRepo     repositories.GroupRepository
	groupTeamRepo repositories.GroupTeamRepository
	teamRepo      repositories.TeamRepository
}

func NewGroupService(
	groupRepo repositories.GroupRepository,
	groupTeamRepo repositories.GroupTeamRepository,
	teamRepo repositories.TeamRepository,
) GroupService {
	return &groupService{
		groupRepo:     groupRepo,
		groupTeamRepo: groupTeamRepo,
		teamRepo:      teamRepo,
	}
}

func (s *groupService) CreateGroup(ctx context.Context, cupID int, name string) (*models.Group, error) {
	if !slices.Contains(models.QualifyingGroupNames, name) {
		return nil, ErrGroupNameInvalid
	}
	group := &models.Group{CupID: cupID, Name: name}
	if err := s.groupRepo.Create(ctx, nil, group); err != nil {
		return nil, fmt.Errorf("failed to create group %s: %w", name, err)
	}
	return group, nil
}

func (s *groupService) ListByCup(ctx context.Context, cupID int) ([]GroupWithTeams, error) {
	groups, err := s.groupRepo.ListByCup(ctx, cupID)
	if err != nil {
		return nil, err
	}
	teams, err := s.teamRepo.ListByCup(ctx, cupID)
	if err != nil {
		return nil, err
	}
	groupTeams, err := s.groupTeamRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	teamsByID := make(map[int]models.Team, len(teams))
	for _, t := range teams {
		teamsByID[t.ID] = t
	}

	result := make([]GroupWithTeams, 0, len(groups))
	for _, group := range groups {
		entry := GroupWithTeams{Group: group, Teams: []models.Team{}}
		for _, gt := range groupTeams {
			if gt.GroupID != group.ID {
				continue
			}
			if t, ok := teamsByID[gt.TeamID]; ok {
				entry.Teams = append(entry.Teams, t)
			}
		}
		result = append(result, entry)
	}
	return result, nil
}

func (s *groupService) AssignTeam(ctx context.Context, groupID, teamID int) error {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return ErrGroupNotFound
		}
		return err
	}

	members, err := s.groupTeamRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if len(members) >= 4 {
		return ErrGroupAlreadyFull
	}

	// One group per team per phase. Manual assignment only ever touches the
	// qualifying phase, so any existing assignment is a conflict.
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return err
	}
	if group.CupID != team.CupID {
		return ErrGroupCupMismatch
	}
	groups, err := s.groupRepo.ListByCup(ctx, team.CupID)
	if err != nil {
		return err
	}
	groupTeams, err := s.groupTeamRepo.List(ctx)
	if err != nil {
		return err
	}
	qualifying := make(map[int]bool, len(groups))
	for _, g := range groups {
		if slices.Contains(models.QualifyingGroupNames, g.Name) {
			qualifying[g.ID] = true
		}
	}
	for _, gt := range groupTeams {
		if gt.TeamID == teamID && qualifying[gt.GroupID] {
			return ErrTeamAlreadyGrouped
		}
	}

	gt := &models.GroupTeam{GroupID: groupID, TeamID: teamID}
	if err := s.groupTeamRepo.Create(ctx, nil, gt); err != nil {
		return fmt.Errorf("failed to assign team %d to group %d: %w", teamID, groupID, err)
	}
	return nil
}

func (s *groupService) RemoveTeam(ctx context.Context, teamID int) error {
	err := s.groupTeamRepo.DeleteByTeam(ctx, teamID)
	if errors.Is(err, repositories.ErrGroupTeamNotFound) {
		return ErrNotFound
	}
	return err
}
