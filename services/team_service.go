package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/niffitek/icke-scores/models"
	"github.com/niffitek/icke-scores/repositories"
	"github.com/niffitek/icke-scores/storage"
)

var ErrLogoInvalidContentType = errors.New("logo must be a png or jpeg image")

type CreateTeamInput struct {
	CupID   int    `json:"cup_id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

type UpdateTeamInput struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

type TeamService interface {
	Create(ctx context.Context, input CreateTeamInput) (*models.Team, error)
	GetByID(ctx context.Context, id int) (*models.Team, error)
	ListByCup(ctx context.Context, cupID int) ([]models.Team, error)
	Update(ctx context.Context, id int, input UpdateTeamInput) (*models.Team, error)
	// Delete removes a team and its group assignments. Teams that already
	// hold a final placement are kept for the record and cannot be deleted.
	Delete(ctx context.Context, id int) error
	UploadLogo(ctx context.Context, teamID int, contentType string, reader io.Reader) (*models.Team, error)
}

type teamService struct {
	teamRepo      repositories.TeamRepository
	groupTeamRepo repositories.GroupTeamRepository
	uploader      storage.FileUploader
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	groupTeamRepo repositories.GroupTeamRepository,
	uploader storage.FileUploader,
) TeamService {
	return &teamService{
		teamRepo:      teamRepo,
		groupTeamRepo: groupTeamRepo,
		uploader:      uploader,
	}
}

func (s *teamService) Create(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrTeamNameRequired
	}

	count, err := s.teamRepo.CountByCup(ctx, input.CupID)
	if err != nil {
		return nil, fmt.Errorf("failed to count teams for cup %d: %w", input.CupID, err)
	}
	if count >= 16 {
		return nil, ErrCupFull
	}

	team := &models.Team{
		CupID:   input.CupID,
		Name:    strings.TrimSpace(input.Name),
		Contact: input.Contact,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *teamService) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	s.populateLogoURL(team)
	return team, nil
}

func (s *teamService) ListByCup(ctx context.Context, cupID int) ([]models.Team, error) {
	teams, err := s.teamRepo.ListByCup(ctx, cupID)
	if err != nil {
		return nil, err
	}
	for i := range teams {
		s.populateLogoURL(&teams[i])
	}
	return teams, nil
}

func (s *teamService) Update(ctx context.Context, id int, input UpdateTeamInput) (*models.Team, error) {
	team, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrTeamNameRequired
	}
	team.Name = strings.TrimSpace(input.Name)
	team.Contact = input.Contact
	if err := s.teamRepo.Update(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *teamService) Delete(ctx context.Context, id int) error {
	team, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if team.FinalPlace != nil {
		return ErrTeamPlaced
	}

	// Group assignments go first; a missing assignment is fine.
	if err := s.groupTeamRepo.DeleteByTeam(ctx, id); err != nil &&
		!errors.Is(err, repositories.ErrGroupTeamNotFound) {
		return fmt.Errorf("failed to remove group assignments for team %d: %w", id, err)
	}

	if team.LogoKey != nil {
		if err := s.uploader.Delete(ctx, *team.LogoKey); err != nil {
			return fmt.Errorf("failed to delete logo for team %d: %w", id, err)
		}
	}
	return s.teamRepo.Delete(ctx, id)
}

func (s *teamService) UploadLogo(ctx context.Context, teamID int, contentType string, reader io.Reader) (*models.Team, error) {
	team, err := s.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	ext, ok := logoExtension(contentType)
	if !ok {
		return nil, ErrLogoInvalidContentType
	}

	key := fmt.Sprintf("teams/%d/logo%s", teamID, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, reader); err != nil {
		return nil, fmt.Errorf("failed to upload logo for team %d: %w", teamID, err)
	}
	if err := s.teamRepo.UpdateLogoKey(ctx, teamID, &key); err != nil {
		return nil, err
	}

	team.LogoKey = &key
	s.populateLogoURL(team)
	return team, nil
}

func (s *teamService) populateLogoURL(team *models.Team) {
	if team.LogoKey == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*team.LogoKey); url != "" {
		team.LogoURL = &url
	}
}

func logoExtension(contentType string) (string, bool) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}
	switch mediaType {
	case "image/png":
		return ".png", true
	case "image/jpeg":
		return ".jpg", true
	}
	return "", false
}
