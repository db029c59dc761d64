package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/niffitek/icke-scores/models"
)

var ErrGroupTeamNotFound = errors.New("group assignment not found")

type GroupTeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, groupTeam *models.GroupTeam) error
	// CreateBatch upserts all assignments in one statement, keyed on
	// (group_id, team_id), so a retried phase transition does not duplicate
	// membership rows.
	CreateBatch(ctx context.Context, exec SQLExecutor, groupTeams []*models.GroupTeam) error
	List(ctx context.Context) ([]models.GroupTeam, error)
	ListByGroup(ctx context.Context, groupID int) ([]models.GroupTeam, error)
	DeleteByTeam(ctx context.Context, teamID int) error
}

type postgresGroupTeamRepository struct {
	db *sql.DB
}

func NewPostgresGroupTeamRepository(db *sql.DB) GroupTeamRepository {
	return &postgresGroupTeamRepository{db: db}
}

func (r *postgresGroupTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresGroupTeamRepository) Create(ctx context.Context, exec SQLExecutor, groupTeam *models.GroupTeam) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO group_teams (group_id, team_id)
		VALUES ($1, $2)
		ON CONFLICT (group_id, team_id) DO UPDATE SET team_id = EXCLUDED.team_id
		RETURNING id`

	return executor.QueryRowContext(ctx, query, groupTeam.GroupID, groupTeam.TeamID).Scan(&groupTeam.ID)
}

func (r *postgresGroupTeamRepository) CreateBatch(ctx context.Context, exec SQLExecutor, groupTeams []*models.GroupTeam) error {
	if len(groupTeams) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)

	query := `INSERT INTO group_teams (group_id, team_id) VALUES `
	args := make([]interface{}, 0, len(groupTeams)*2)
	for i, gt := range groupTeams {
		if i > 0 {
			query += ", "
		}
		query += placeholderPair(i)
		args = append(args, gt.GroupID, gt.TeamID)
	}
	query += ` ON CONFLICT (group_id, team_id) DO NOTHING`

	_, err := executor.ExecContext(ctx, query, args...)
	return err
}

func (r *postgresGroupTeamRepository) List(ctx context.Context) ([]models.GroupTeam, error) {
	return r.queryGroupTeams(ctx, `SELECT id, group_id, team_id FROM group_teams ORDER BY id ASC`)
}

func (r *postgresGroupTeamRepository) ListByGroup(ctx context.Context, groupID int) ([]models.GroupTeam, error) {
	return r.queryGroupTeams(ctx,
		`SELECT id, group_id, team_id FROM group_teams WHERE group_id = $1 ORDER BY id ASC`, groupID)
}

func (r *postgresGroupTeamRepository) DeleteByTeam(ctx context.Context, teamID int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM group_teams WHERE team_id = $1`, teamID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrGroupTeamNotFound)
}

func (r *postgresGroupTeamRepository) queryGroupTeams(ctx context.Context, query string, args ...interface{}) ([]models.GroupTeam, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groupTeams := make([]models.GroupTeam, 0)
	for rows.Next() {
		var gt models.GroupTeam
		if err := rows.Scan(&gt.ID, &gt.GroupID, &gt.TeamID); err != nil {
			return nil, err
		}
		groupTeams = append(groupTeams, gt)
	}
	return groupTeams, rows.Err()
}
