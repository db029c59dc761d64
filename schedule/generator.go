package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/niffitek/icke-scores/models"
)

const (
	// RoundSpacing is the time between consecutive fixture rounds.
	RoundSpacing = 30 * time.Minute

	courtsPerRound = 6
	sittingCourts  = 3
)

// Slot addresses one team position within a group: "B3" is the third team of
// group B in that group's ordering.
type Slot struct {
	Group string
	Pos   int
}

// SlotMap resolves slots to concrete team ids.
type SlotMap map[Slot]int

// BuildSlotMap derives the slot ordering from group assignments: teams are
// collected per group and sorted by name ascending, slot numbers are
// 1-indexed positions in that order. This ordering is the sole seeding
// mechanism from group membership to fixture slots, so it must stay stable.
func BuildSlotMap(teams []models.Team, groups []models.Group, groupTeams []models.GroupTeam) SlotMap {
	teamsByID := make(map[int]models.Team, len(teams))
	for _, t := range teams {
		teamsByID[t.ID] = t
	}

	slots := make(SlotMap)
	for _, group := range groups {
		var members []models.Team
		for _, gt := range groupTeams {
			if gt.GroupID != group.ID {
				continue
			}
			if t, ok := teamsByID[gt.TeamID]; ok {
				members = append(members, t)
			}
		}
		sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })
		for i, t := range members {
			slots[Slot{Group: group.Name, Pos: i + 1}] = t.ID
		}
	}
	return slots
}

// Result is the outcome of one fixture generation run. Skipped counts table
// entries that referenced a slot the slot map could not resolve; those
// matches are dropped rather than treated as errors, but the count is
// surfaced so operators can spot incomplete group assignments.
type Result struct {
	Matches []*models.Match
	Skipped int
}

// Generate produces the matches for one phase from its fixture table. Round
// i starts at start + i*RoundSpacing; within a round courts are numbered in
// table order, 1-based. At most rounds*6 matches are produced and every
// produced match has both team ids resolved.
func Generate(table [][]string, round models.RoundLabel, cupID int, start time.Time, slots SlotMap) (*Result, error) {
	result := &Result{}

	for roundIdx, entries := range table {
		if len(entries) != courtsPerRound {
			return nil, fmt.Errorf("fixture table round %d has %d entries, want %d", roundIdx+1, len(entries), courtsPerRound)
		}
		startAt := start.Add(time.Duration(roundIdx) * RoundSpacing)

		for courtIdx, entry := range entries {
			left, right, err := parseEntry(entry)
			if err != nil {
				return nil, fmt.Errorf("fixture table round %d court %d: %w", roundIdx+1, courtIdx+1, err)
			}

			team1, ok1 := slots[left]
			team2, ok2 := slots[right]
			if !ok1 || !ok2 {
				// A group with fewer than the referenced slot count is not an
				// error: the match is simply not played.
				result.Skipped++
				continue
			}

			court := courtIdx + 1
			result.Matches = append(result.Matches, &models.Match{
				CupID:   cupID,
				Team1ID: team1,
				Team2ID: team2,
				StartAt: startAt,
				Court:   court,
				Sitting: court <= sittingCourts,
				Round:   round,
			})
		}
	}

	return result, nil
}

// parseEntry splits a table entry like "A1-A4" into its two slots.
func parseEntry(entry string) (Slot, Slot, error) {
	leftRaw, rightRaw, found := strings.Cut(entry, "-")
	if !found {
		return Slot{}, Slot{}, fmt.Errorf("malformed fixture entry %q", entry)
	}
	left, err := parseSlot(leftRaw)
	if err != nil {
		return Slot{}, Slot{}, err
	}
	right, err := parseSlot(rightRaw)
	if err != nil {
		return Slot{}, Slot{}, err
	}
	return left, right, nil
}

func parseSlot(raw string) (Slot, error) {
	if len(raw) < 2 {
		return Slot{}, fmt.Errorf("malformed fixture slot %q", raw)
	}
	pos, err := strconv.Atoi(raw[1:])
	if err != nil || pos < 1 {
		return Slot{}, fmt.Errorf("malformed fixture slot %q", raw)
	}
	return Slot{Group: raw[:1], Pos: pos}, nil
}
