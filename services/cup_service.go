package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/niffitek/icke-scores/models"
	"github.com/niffitek/icke-scores/repositories"
)

type CreateCupInput struct {
	Title   string `json:"title"`
	Address string `json:"address"`
}

type UpdateCupInput struct {
	Title   string `json:"title"`
	Address string `json:"address"`
}

type CupService interface {
	Create(ctx context.Context, input CreateCupInput) (*models.Cup, error)
	GetByID(ctx context.Context, id int) (*models.Cup, error)
	// GetActive returns the cup currently in Vorrunde or Finalrunde, if any.
	GetActive(ctx context.Context) (*models.Cup, error)
	List(ctx context.Context) ([]models.Cup, error)
	Update(ctx context.Context, id int, input UpdateCupInput) (*models.Cup, error)
	Delete(ctx context.Context, id int) error
}

type cupService struct {
	cupRepo repositories.CupRepository
}

func NewCupService(cupRepo repositories.CupRepository) CupService {
	return &cupService{cupRepo: cupRepo}
}

func (s *cupService) Create(ctx context.Context, input CreateCupInput) (*models.Cup, error) {
	if input.Title == "" {
		return nil, ErrCupTitleRequired
	}
	cup := &models.Cup{
		Title:   input.Title,
		Address: input.Address,
		State:   models.CupStateUpcoming,
	}
	if err := s.cupRepo.Create(ctx, cup); err != nil {
		return nil, fmt.Errorf("failed to create cup: %w", err)
	}
	return cup, nil
}

func (s *cupService) GetByID(ctx context.Context, id int) (*models.Cup, error) {
	cup, err := s.cupRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCupNotFound) {
			return nil, ErrCupNotFound
		}
		return nil, err
	}
	return cup, nil
}

func (s *cupService) GetActive(ctx context.Context) (*models.Cup, error) {
	cup, err := s.cupRepo.GetActive(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrNoActiveCup) {
			return nil, ErrCupNotFound
		}
		return nil, err
	}
	return cup, nil
}

func (s *cupService) List(ctx context.Context) ([]models.Cup, error) {
	return s.cupRepo.List(ctx)
}

// Update edits title and address. The state column is owned by the
// transition service and is deliberately not writable here.
func (s *cupService) Update(ctx context.Context, id int, input UpdateCupInput) (*models.Cup, error) {
	cup, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Title == "" {
		return nil, ErrCupTitleRequired
	}
	cup.Title = input.Title
	cup.Address = input.Address
	if err := s.cupRepo.Update(ctx, cup); err != nil {
		return nil, fmt.Errorf("failed to update cup %d: %w", id, err)
	}
	return cup, nil
}

func (s *cupService) Delete(ctx context.Context, id int) error {
	err := s.cupRepo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrCupNotFound) {
		return ErrCupNotFound
	}
	return err
}
