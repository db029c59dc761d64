package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/niffitek/icke-scores/models"
)

var ErrGroupNotFound = errors.New("group not found")

type GroupRepository interface {
	Create(ctx context.Context, exec SQLExecutor, group *models.Group) error
	GetByID(ctx context.Context, id int) (*models.Group, error)
	ListByCup(ctx context.Context, cupID int) ([]models.Group, error)
	Delete(ctx context.Context, id int) error
}

type postgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

func (r *postgresGroupRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresGroupRepository) Create(ctx context.Context, exec SQLExecutor, group *models.Group) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO groups (cup_id, name)
		VALUES ($1, $2)
		ON CONFLICT (cup_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`

	return executor.QueryRowContext(ctx, query, group.CupID, group.Name).Scan(&group.ID)
}

func (r *postgresGroupRepository) GetByID(ctx context.Context, id int) (*models.Group, error) {
	query := `SELECT id, cup_id, name FROM groups WHERE id = $1`

	var group models.Group
	err := r.db.QueryRowContext(ctx, query, id).Scan(&group.ID, &group.CupID, &group.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *postgresGroupRepository) ListByCup(ctx context.Context, cupID int) ([]models.Group, error) {
	query := `SELECT id, cup_id, name FROM groups WHERE cup_id = $1 ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, cupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]models.Group, 0)
	for rows.Next() {
		var group models.Group
		if err := rows.Scan(&group.ID, &group.CupID, &group.Name); err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, rows.Err()
}

func (r *postgresGroupRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrGroupNotFound)
}
