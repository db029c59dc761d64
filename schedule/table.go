// Package schedule turns the fixed fixture tables into concrete matches.
package schedule

import "github.com/niffitek/icke-scores/models"

// The fixture tables are static configuration: one row per 30-minute round,
// six court slots per row. Each entry pairs two group slots, where the slot
// number refers to a team's position within its group ordering. Courts 1-3
// (the first three columns) are sitting courts, 4-6 standing.
var VorrundeTable = [][]string{
	{"A1-A4", "B2-B3", "C1-C2", "D1-D2", "C3-C4", "A2-A3"},
	{"D1-D3", "A2-A3", "B1-B4", "B2-B3", "D2-D4", "C1-C3"},
	{"C1-C3", "D2-D3", "A3-A4", "A1-A2", "B1-B4", "C2-C4"},
	{"B2-B4", "D2-D4", "C3-C4", "B1-B3", "D1-D3", "A1-A4"},
	{"A1-A3", "B1-B3", "C2-C4", "B2-B4", "A2-A4", "D1-D4"},
	{"D1-D2", "A1-A2", "B1-B2", "D3-D4", "C1-C2", "B3-B4"},
	{"C1-C4", "D3-D4", "A2-A4", "A1-A3", "B1-B2", "C2-C3"},
	{"D1-D4", "C2-C3", "B3-B4", "D2-D3", "C1-C4", "A3-A4"},
}

var FinalrundeTable = [][]string{
	{"E1-E4", "F2-F3", "G1-G2", "H1-H2", "G3-G4", "E2-E3"},
	{"H1-H3", "E2-E3", "F1-F4", "F2-F3", "H2-H4", "G1-G3"},
	{"G1-G3", "H2-H3", "E3-E4", "E1-E2", "F1-F4", "G2-G4"},
	{"F2-F4", "H2-H4", "G3-G4", "F1-F3", "H1-H3", "E1-E4"},
	{"E1-E3", "F1-F3", "G2-G4", "F2-F4", "E2-E4", "H1-H4"},
	{"H1-H2", "E1-E2", "F1-F2", "H3-H4", "G1-G2", "F3-F4"},
	{"G1-G4", "H3-H4", "E2-E4", "F1-F3", "F1-F2", "G2-G3"},
	{"H1-H4", "G2-G3", "F3-F4", "H2-H3", "G1-G4", "E3-E4"},
}

// TableFor returns the fixture table belonging to a round label.
func TableFor(round models.RoundLabel) [][]string {
	if round == models.RoundFinals {
		return FinalrundeTable
	}
	return VorrundeTable
}
