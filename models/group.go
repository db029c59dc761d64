package models

// Group names are fixed: A-D during the qualifying phase, E-H during finals.
// Exactly four groups are active per phase, each holding four teams.
var (
	QualifyingGroupNames = []string{"A", "B", "C", "D"}
	FinalGroupNames      = []string{"E", "F", "G", "H"}
)

type Group struct {
	ID    int    `json:"id" db:"id"`
	CupID int    `json:"cup_id" db:"cup_id"`
	Name  string `json:"name" db:"name"`
}

// GroupTeam assigns a team to a group. A team holds at most one assignment
// per phase; qualifying assignments stay in place when final ones are added,
// the two phases are told apart by which group-name set is queried.
type GroupTeam struct {
	ID      int `json:"id" db:"id"`
	GroupID int `json:"group_id" db:"group_id"`
	TeamID  int `json:"team_id" db:"team_id"`
}
