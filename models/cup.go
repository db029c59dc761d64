package models

import "time"

// CupState mirrors the cup state ENUM in the DB. Transitions are strictly
// monotonic: Bevorstehend, Vorrunde, Finalrunde, Abgeschlossen.
type CupState string

const (
	CupStateUpcoming   CupState = "Bevorstehend"
	CupStateQualifying CupState = "Vorrunde"
	CupStateFinals     CupState = "Finalrunde"
	CupStateClosed     CupState = "Abgeschlossen"
)

func (s CupState) Valid() bool {
	switch s {
	case CupStateUpcoming, CupStateQualifying, CupStateFinals, CupStateClosed:
		return true
	}
	return false
}

// Next returns the state that follows s in the cup lifecycle.
// The closed state has no successor.
func (s CupState) Next() (CupState, bool) {
	switch s {
	case CupStateUpcoming:
		return CupStateQualifying, true
	case CupStateQualifying:
		return CupStateFinals, true
	case CupStateFinals:
		return CupStateClosed, true
	}
	return "", false
}

// Cup is one tournament instance with its own teams, groups and matches.
type Cup struct {
	ID        int       `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Address   string    `json:"address" db:"address"`
	State     CupState  `json:"state" db:"state"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
