package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/niffitek/icke-scores/models"
)

var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchInvalidTeam = errors.New("match references an unknown team")
)

type MatchRepository interface {
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByCup(ctx context.Context, cupID int) ([]*models.Match, error)
	ListByCupAndRound(ctx context.Context, cupID int, round models.RoundLabel) ([]*models.Match, error)
	// UpsertBatch writes generated fixtures keyed on (cup_id, round, court,
	// start_at). Re-running a phase transition after a partial failure
	// therefore overwrites the rows it already wrote instead of duplicating
	// them.
	UpsertBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	UpdateScore(ctx context.Context, match *models.Match) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `
	id, cup_id, team_1_id, team_2_id, start_at, court, sitting, round,
	round1_points_team_1, round1_points_team_2,
	round2_points_team_1, round2_points_team_2,
	round1_winner, round2_winner`

func scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	m := &models.Match{}
	err := row.Scan(
		&m.ID, &m.CupID, &m.Team1ID, &m.Team2ID, &m.StartAt, &m.Court, &m.Sitting, &m.Round,
		&m.Round1PointsTeam1, &m.Round1PointsTeam2,
		&m.Round2PointsTeam1, &m.Round2PointsTeam2,
		&m.Round1Winner, &m.Round2Winner,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE id = $1`

	m, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByCup(ctx context.Context, cupID int) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE cup_id = $1 ORDER BY start_at ASC, court ASC`
	return r.queryMatches(ctx, query, cupID)
}

func (r *postgresMatchRepository) ListByCupAndRound(ctx context.Context, cupID int, round models.RoundLabel) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE cup_id = $1 AND round = $2 ORDER BY start_at ASC, court ASC`
	return r.queryMatches(ctx, query, cupID, round)
}

func (r *postgresMatchRepository) UpsertBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	if len(matches) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)

	query := `INSERT INTO matches (cup_id, team_1_id, team_2_id, start_at, court, sitting, round) VALUES `
	args := make([]interface{}, 0, len(matches)*7)
	for i, m := range matches {
		if i > 0 {
			query += ", "
		}
		base := i * 7
		query += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7)
		args = append(args, m.CupID, m.Team1ID, m.Team2ID, m.StartAt, m.Court, m.Sitting, m.Round)
	}
	query += `
		ON CONFLICT (cup_id, round, court, start_at) DO UPDATE
		SET team_1_id = EXCLUDED.team_1_id, team_2_id = EXCLUDED.team_2_id, sitting = EXCLUDED.sitting`

	_, err := executor.ExecContext(ctx, query, args...)
	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) UpdateScore(ctx context.Context, match *models.Match) error {
	query := `
		UPDATE matches SET
			round1_points_team_1 = $1,
			round1_points_team_2 = $2,
			round2_points_team_1 = $3,
			round2_points_team_2 = $4,
			round1_winner = $5,
			round2_winner = $6
		WHERE id = $7`

	result, err := r.db.ExecContext(ctx, query,
		match.Round1PointsTeam1, match.Round1PointsTeam2,
		match.Round2PointsTeam1, match.Round2PointsTeam2,
		match.Round1Winner, match.Round2Winner,
		match.ID,
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) queryMatches(ctx context.Context, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
		return ErrMatchInvalidTeam
	}
	return err
}
