package models

import "time"

type Team struct {
	ID        int       `json:"id" db:"id"`
	CupID     int       `json:"cup_id" db:"cup_id"`
	Name      string    `json:"name" db:"name"`
	Contact   string    `json:"contact" db:"contact"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// FinalPlace is 1..16, set once when the cup is closed, nil before that.
	FinalPlace *int `json:"final_place,omitempty" db:"final_place"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}
