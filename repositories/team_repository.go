package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/niffitek/icke-scores/models"
)

var (
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamNameConflict = errors.New("team name already taken in this cup")
	ErrTeamInvalidCup   = errors.New("invalid cup reference")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	ListByCup(ctx context.Context, cupID int) ([]models.Team, error)
	CountByCup(ctx context.Context, cupID int) (int, error)
	Update(ctx context.Context, team *models.Team) error
	UpdateFinalPlace(ctx context.Context, exec SQLExecutor, teamID int, finalPlace int) error
	UpdateLogoKey(ctx context.Context, teamID int, logoKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (cup_id, name, contact)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, team.CupID, team.Name, team.Contact).
		Scan(&team.ID, &team.CreatedAt)
	return r.handleTeamError(err)
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `
		SELECT id, cup_id, name, contact, final_place, logo_key, created_at
		FROM teams WHERE id = $1`

	team := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&team.ID, &team.CupID, &team.Name, &team.Contact,
		&team.FinalPlace, &team.LogoKey, &team.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

func (r *postgresTeamRepository) ListByCup(ctx context.Context, cupID int) ([]models.Team, error) {
	query := `
		SELECT id, cup_id, name, contact, final_place, logo_key, created_at
		FROM teams
		WHERE cup_id = $1
		ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, cupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		var team models.Team
		if err := rows.Scan(
			&team.ID, &team.CupID, &team.Name, &team.Contact,
			&team.FinalPlace, &team.LogoKey, &team.CreatedAt,
		); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

func (r *postgresTeamRepository) CountByCup(ctx context.Context, cupID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM teams WHERE cup_id = $1`, cupID).Scan(&count)
	return count, err
}

func (r *postgresTeamRepository) Update(ctx context.Context, team *models.Team) error {
	query := `UPDATE teams SET name = $1, contact = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, team.Name, team.Contact, team.ID)
	if err != nil {
		return r.handleTeamError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) UpdateFinalPlace(ctx context.Context, exec SQLExecutor, teamID int, finalPlace int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE teams SET final_place = $1 WHERE id = $2`

	result, err := executor.ExecContext(ctx, query, finalPlace, teamID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) UpdateLogoKey(ctx context.Context, teamID int, logoKey *string) error {
	query := `UPDATE teams SET logo_key = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, logoKey, teamID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM teams WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) handleTeamError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			return ErrTeamNameConflict
		case "foreign_key_violation":
			return ErrTeamInvalidCup
		}
	}
	return err
}
