// Package standings computes per-team statistics and group rankings from raw
// match results. All functions are pure: they are rebuilt from scratch on
// every call and always yield the same output for the same input, so callers
// may poll them freely.
package standings

import (
	"sort"

	"github.com/niffitek/icke-scores/models"
)

// Placement bonuses awarded within a group, indexed by rank. The sitting and
// standing sub-tournaments are ranked independently, each awarding its own
// set once per fully populated group.
var (
	sittingBonus  = []int{11, 9, 7, 5}
	standingBonus = []int{10, 8, 6, 4}
)

// TeamStats is the per-team accumulator for one ranking computation. It is
// derived data, never persisted.
type TeamStats struct {
	TeamID  int    `json:"id"`
	Name    string `json:"name"`
	GroupID *int   `json:"group_id,omitempty"`

	RoundsWonSitting      int `json:"rounds_won_sitting"`
	RoundsWonStanding     int `json:"rounds_won_standing"`
	PointsSitting         int `json:"points_sitting"`
	PointsAgainstSitting  int `json:"points_against_sitting"`
	PointsStanding        int `json:"points_standing"`
	PointsAgainstStanding int `json:"points_against_standing"`

	// FinalScore is the sum of the team's sitting and standing placement
	// bonuses. It is the primary criterion for seeding and final placement.
	FinalScore int `json:"final_score"`
}

func (s *TeamStats) SittingDiff() int  { return s.PointsSitting - s.PointsAgainstSitting }
func (s *TeamStats) StandingDiff() int { return s.PointsStanding - s.PointsAgainstStanding }

func (s *TeamStats) CombinedRoundsWon() int { return s.RoundsWonSitting + s.RoundsWonStanding }

func (s *TeamStats) CombinedDiff() int {
	return (s.PointsSitting + s.PointsStanding) - (s.PointsAgainstSitting + s.PointsAgainstStanding)
}

// Calculate builds one TeamStats per team from the given matches and awards
// the per-group placement bonuses. The matches must already be restricted to
// a single round label and groups to the groups that label applies to. Teams
// without a group assignment still appear in the returned map but take part
// in no group ranking.
func Calculate(teams []models.Team, groupTeams []models.GroupTeam, matches []*models.Match, groups []models.Group) map[int]*TeamStats {
	stats := initStats(teams, groupTeams)

	for _, m := range matches {
		s1, ok1 := stats[m.Team1ID]
		s2, ok2 := stats[m.Team2ID]
		if !ok1 || !ok2 {
			continue
		}
		accumulate(s1, s2, m)
	}

	for _, group := range groups {
		members := groupStats(stats, groupTeams, group.ID)

		bySitting := append([]*TeamStats(nil), members...)
		sort.SliceStable(bySitting, func(i, j int) bool {
			if bySitting[i].RoundsWonSitting != bySitting[j].RoundsWonSitting {
				return bySitting[i].RoundsWonSitting > bySitting[j].RoundsWonSitting
			}
			return bySitting[i].SittingDiff() > bySitting[j].SittingDiff()
		})
		for rank, s := range bySitting {
			s.FinalScore += bonusAt(sittingBonus, rank)
		}

		byStanding := append([]*TeamStats(nil), members...)
		sort.SliceStable(byStanding, func(i, j int) bool {
			if byStanding[i].RoundsWonStanding != byStanding[j].RoundsWonStanding {
				return byStanding[i].RoundsWonStanding > byStanding[j].RoundsWonStanding
			}
			return byStanding[i].StandingDiff() > byStanding[j].StandingDiff()
		})
		for rank, s := range byStanding {
			s.FinalScore += bonusAt(standingBonus, rank)
		}
	}

	return stats
}

// RankGroup returns the teams of one group ordered by final rank: final score,
// then combined rounds won, then combined point differential, then the winner
// of a direct sitting match between the two tied teams. Teams still tied after
// all criteria keep their assignment order.
func RankGroup(stats map[int]*TeamStats, groupTeams []models.GroupTeam, groupID int, matches []*models.Match) []*TeamStats {
	members := groupStats(stats, groupTeams, groupID)

	sort.SliceStable(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if a.FinalScore != b.FinalScore {
			return a.FinalScore > b.FinalScore
		}
		if a.CombinedRoundsWon() != b.CombinedRoundsWon() {
			return a.CombinedRoundsWon() > b.CombinedRoundsWon()
		}
		if a.CombinedDiff() != b.CombinedDiff() {
			return a.CombinedDiff() > b.CombinedDiff()
		}
		if winner, ok := headToHeadWinner(matches, a.TeamID, b.TeamID); ok {
			return winner == a.TeamID
		}
		return false
	})

	return members
}

func initStats(teams []models.Team, groupTeams []models.GroupTeam) map[int]*TeamStats {
	stats := make(map[int]*TeamStats, len(teams))
	for _, team := range teams {
		s := &TeamStats{TeamID: team.ID, Name: team.Name}
		for _, gt := range groupTeams {
			if gt.TeamID == team.ID {
				groupID := gt.GroupID
				s.GroupID = &groupID
				break
			}
		}
		stats[team.ID] = s
	}
	return stats
}

// accumulate applies one match to both teams' counters. The stored sub-round
// winner references are authoritative; points only feed the totals. Missing
// point fields count as zero.
func accumulate(s1, s2 *TeamStats, m *models.Match) {
	team1Won := wonRounds(m.Team1ID, m)
	team2Won := wonRounds(m.Team2ID, m)

	pointsTeam1 := intOrZero(m.Round1PointsTeam1) + intOrZero(m.Round2PointsTeam1)
	pointsTeam2 := intOrZero(m.Round1PointsTeam2) + intOrZero(m.Round2PointsTeam2)

	if m.Sitting {
		s1.RoundsWonSitting += team1Won
		s2.RoundsWonSitting += team2Won
		s1.PointsSitting += pointsTeam1
		s2.PointsSitting += pointsTeam2
		s1.PointsAgainstSitting += pointsTeam2
		s2.PointsAgainstSitting += pointsTeam1
	} else {
		s1.RoundsWonStanding += team1Won
		s2.RoundsWonStanding += team2Won
		s1.PointsStanding += pointsTeam1
		s2.PointsStanding += pointsTeam2
		s1.PointsAgainstStanding += pointsTeam2
		s2.PointsAgainstStanding += pointsTeam1
	}
}

func wonRounds(teamID int, m *models.Match) int {
	won := 0
	if m.Round1Winner != nil && *m.Round1Winner == teamID {
		won++
	}
	if m.Round2Winner != nil && *m.Round2Winner == teamID {
		won++
	}
	return won
}

// headToHeadWinner finds the direct sitting match between the two teams and
// decides it by combined sub-round points. A points tie yields no winner.
func headToHeadWinner(matches []*models.Match, teamA, teamB int) (int, bool) {
	for _, m := range matches {
		if !m.Sitting {
			continue
		}
		if (m.Team1ID != teamA || m.Team2ID != teamB) && (m.Team1ID != teamB || m.Team2ID != teamA) {
			continue
		}
		pointsTeam1 := intOrZero(m.Round1PointsTeam1) + intOrZero(m.Round2PointsTeam1)
		pointsTeam2 := intOrZero(m.Round1PointsTeam2) + intOrZero(m.Round2PointsTeam2)
		if pointsTeam1 == pointsTeam2 {
			return 0, false
		}
		if pointsTeam1 > pointsTeam2 {
			return m.Team1ID, true
		}
		return m.Team2ID, true
	}
	return 0, false
}

func groupStats(stats map[int]*TeamStats, groupTeams []models.GroupTeam, groupID int) []*TeamStats {
	members := make([]*TeamStats, 0, 4)
	for _, gt := range groupTeams {
		if gt.GroupID != groupID {
			continue
		}
		if s, ok := stats[gt.TeamID]; ok {
			members = append(members, s)
		}
	}
	return members
}

func bonusAt(bonuses []int, rank int) int {
	if rank < len(bonuses) {
		return bonuses[rank]
	}
	return 0
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
