package models

import "time"

// RoundLabel names the phase a match belongs to.
type RoundLabel string

const (
	RoundQualifying RoundLabel = "Vorrunde"
	RoundFinals     RoundLabel = "Finalrunde"
)

// Match is one game between two teams, played as two sub-rounds.
// Courts 1-3 are sitting courts, 4-6 standing. The per-sub-round winner
// reference is stored and authoritative; it is not recomputed from points.
type Match struct {
	ID      int        `json:"id" db:"id"`
	CupID   int        `json:"cup_id" db:"cup_id"`
	Team1ID int        `json:"team_1_id" db:"team_1_id"`
	Team2ID int        `json:"team_2_id" db:"team_2_id"`
	StartAt time.Time  `json:"start_at" db:"start_at"`
	Court   int        `json:"court" db:"court"`
	Sitting bool       `json:"sitting" db:"sitting"`
	Round   RoundLabel `json:"round" db:"round"`

	Round1PointsTeam1 *int `json:"round1_points_team_1,omitempty" db:"round1_points_team_1"`
	Round1PointsTeam2 *int `json:"round1_points_team_2,omitempty" db:"round1_points_team_2"`
	Round2PointsTeam1 *int `json:"round2_points_team_1,omitempty" db:"round2_points_team_1"`
	Round2PointsTeam2 *int `json:"round2_points_team_2,omitempty" db:"round2_points_team_2"`
	Round1Winner      *int `json:"round1_winner,omitempty" db:"round1_winner"`
	Round2Winner      *int `json:"round2_winner,omitempty" db:"round2_winner"`
}

// HasScores reports whether any sub-round points have been entered.
func (m *Match) HasScores() bool {
	return m.Round1PointsTeam1 != nil || m.Round1PointsTeam2 != nil ||
		m.Round2PointsTeam1 != nil || m.Round2PointsTeam2 != nil
}
