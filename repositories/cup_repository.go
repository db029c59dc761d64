package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/niffitek/icke-scores/models"
)

var (
	ErrCupNotFound     = errors.New("cup not found")
	ErrNoActiveCup     = errors.New("no cup is currently running")
	ErrCupInvalidState = errors.New("invalid cup state")
)

type CupRepository interface {
	Create(ctx context.Context, cup *models.Cup) error
	GetByID(ctx context.Context, id int) (*models.Cup, error)
	// GetActive returns the cup whose state is Vorrunde or Finalrunde.
	GetActive(ctx context.Context) (*models.Cup, error)
	List(ctx context.Context) ([]models.Cup, error)
	Update(ctx context.Context, cup *models.Cup) error
	UpdateState(ctx context.Context, exec SQLExecutor, id int, state models.CupState) error
	Delete(ctx context.Context, id int) error
}

type postgresCupRepository struct {
	db *sql.DB
}

func NewPostgresCupRepository(db *sql.DB) CupRepository {
	return &postgresCupRepository{db: db}
}

func (r *postgresCupRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresCupRepository) Create(ctx context.Context, cup *models.Cup) error {
	query := `
		INSERT INTO cups (title, address, state)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query, cup.Title, cup.Address, cup.State).
		Scan(&cup.ID, &cup.CreatedAt)
}

func (r *postgresCupRepository) GetByID(ctx context.Context, id int) (*models.Cup, error) {
	query := `SELECT id, title, address, state, created_at FROM cups WHERE id = $1`

	cup := &models.Cup{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&cup.ID, &cup.Title, &cup.Address, &cup.State, &cup.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCupNotFound
		}
		return nil, err
	}
	return cup, nil
}

func (r *postgresCupRepository) GetActive(ctx context.Context) (*models.Cup, error) {
	query := `
		SELECT id, title, address, state, created_at
		FROM cups
		WHERE state IN ($1, $2)
		ORDER BY created_at DESC
		LIMIT 1`

	cup := &models.Cup{}
	err := r.db.QueryRowContext(ctx, query, models.CupStateQualifying, models.CupStateFinals).
		Scan(&cup.ID, &cup.Title, &cup.Address, &cup.State, &cup.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoActiveCup
		}
		return nil, err
	}
	return cup, nil
}

func (r *postgresCupRepository) List(ctx context.Context) ([]models.Cup, error) {
	query := `SELECT id, title, address, state, created_at FROM cups ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cups := make([]models.Cup, 0)
	for rows.Next() {
		var cup models.Cup
		if err := rows.Scan(&cup.ID, &cup.Title, &cup.Address, &cup.State, &cup.CreatedAt); err != nil {
			return nil, err
		}
		cups = append(cups, cup)
	}
	return cups, rows.Err()
}

func (r *postgresCupRepository) Update(ctx context.Context, cup *models.Cup) error {
	query := `UPDATE cups SET title = $1, address = $2, state = $3 WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query, cup.Title, cup.Address, cup.State, cup.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCupNotFound)
}

func (r *postgresCupRepository) UpdateState(ctx context.Context, exec SQLExecutor, id int, state models.CupState) error {
	executor := r.getExecutor(exec)
	query := `UPDATE cups SET state = $1 WHERE id = $2`

	result, err := executor.ExecContext(ctx, query, state, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCupNotFound)
}

func (r *postgresCupRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM cups WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCupNotFound)
}
