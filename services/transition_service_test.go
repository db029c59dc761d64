package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niffitek/icke-scores/live"
	"github.com/niffitek/icke-scores/models"
	"github.com/niffitek/icke-scores/repositories"
)

// fakeStore is a mutex-guarded in-memory stand-in for the database. The
// repository fakes below mirror the upsert semantics of the real postgres
// repositories so retry behavior can be exercised.
type fakeStore struct {
	mu sync.Mutex

	cups       map[int]*models.Cup
	teams      map[int]*models.Team
	groups     map[int]*models.Group
	groupTeams []models.GroupTeam
	matches    []*models.Match

	nextGroupID     int
	nextGroupTeamID int
	nextMatchID     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		cups:            make(map[int]*models.Cup),
		teams:           make(map[int]*models.Team),
		groups:          make(map[int]*models.Group),
		nextGroupID:     1,
		nextGroupTeamID: 1,
		nextMatchID:     1,
	}
}

type fakeCupRepo struct{ s *fakeStore }

func (r *fakeCupRepo) Create(ctx context.Context, cup *models.Cup) error { return nil }

func (r *fakeCupRepo) GetByID(ctx context.Context, id int) (*models.Cup, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cup, ok := r.s.cups[id]
	if !ok {
		return nil, repositories.ErrCupNotFound
	}
	copied := *cup
	return &copied, nil
}

func (r *fakeCupRepo) GetActive(ctx context.Context) (*models.Cup, error) {
	return nil, repositories.ErrNoActiveCup
}

func (r *fakeCupRepo) List(ctx context.Context) ([]models.Cup, error) { return nil, nil }

func (r *fakeCupRepo) Update(ctx context.Context, cup *models.Cup) error { return nil }

func (r *fakeCupRepo) UpdateState(ctx context.Context, exec repositories.SQLExecutor, id int, state models.CupState) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cup, ok := r.s.cups[id]
	if !ok {
		return repositories.ErrCupNotFound
	}
	cup.State = state
	return nil
}

func (r *fakeCupRepo) Delete(ctx context.Context, id int) error { return nil }

type fakeTeamRepo struct{ s *fakeStore }

func (r *fakeTeamRepo) Create(ctx context.Context, team *models.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id := 1
	for existing := range r.s.teams {
		if existing >= id {
			id = existing + 1
		}
	}
	team.ID = id
	copied := *team
	r.s.teams[id] = &copied
	return nil
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, id int) (*models.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	team, ok := r.s.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	copied := *team
	return &copied, nil
}

func (r *fakeTeamRepo) ListByCup(ctx context.Context, cupID int) ([]models.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var teams []models.Team
	for _, team := range r.s.teams {
		if team.CupID == cupID {
			teams = append(teams, *team)
		}
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })
	return teams, nil
}

func (r *fakeTeamRepo) CountByCup(ctx context.Context, cupID int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, team := range r.s.teams {
		if team.CupID == cupID {
			count++
		}
	}
	return count, nil
}

func (r *fakeTeamRepo) Update(ctx context.Context, team *models.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.teams[team.ID]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	existing.Name = team.Name
	existing.Contact = team.Contact
	return nil
}

func (r *fakeTeamRepo) UpdateFinalPlace(ctx context.Context, exec repositories.SQLExecutor, teamID int, finalPlace int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	team, ok := r.s.teams[teamID]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	place := finalPlace
	team.FinalPlace = &place
	return nil
}

func (r *fakeTeamRepo) UpdateLogoKey(ctx context.Context, teamID int, logoKey *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	team, ok := r.s.teams[teamID]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	team.LogoKey = logoKey
	return nil
}

func (r *fakeTeamRepo) Delete(ctx context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(r.s.teams, id)
	return nil
}

type fakeGroupRepo struct{ s *fakeStore }

func (r *fakeGroupRepo) Create(ctx context.Context, exec repositories.SQLExecutor, group *models.Group) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.groups {
		if existing.CupID == group.CupID && existing.Name == group.Name {
			group.ID = existing.ID
			return nil
		}
	}
	group.ID = r.s.nextGroupID
	r.s.nextGroupID++
	copied := *group
	r.s.groups[group.ID] = &copied
	return nil
}

func (r *fakeGroupRepo) GetByID(ctx context.Context, id int) (*models.Group, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	group, ok := r.s.groups[id]
	if !ok {
		return nil, repositories.ErrGroupNotFound
	}
	copied := *group
	return &copied, nil
}

func (r *fakeGroupRepo) ListByCup(ctx context.Context, cupID int) ([]models.Group, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var groups []models.Group
	for _, group := range r.s.groups {
		if group.CupID == cupID {
			groups = append(groups, *group)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

func (r *fakeGroupRepo) Delete(ctx context.Context, id int) error { return nil }

type fakeGroupTeamRepo struct{ s *fakeStore }

func (r *fakeGroupTeamRepo) insertLocked(gt *models.GroupTeam) {
	for _, existing := range r.s.groupTeams {
		if existing.GroupID == gt.GroupID && existing.TeamID == gt.TeamID {
			gt.ID = existing.ID
			return
		}
	}
	gt.ID = r.s.nextGroupTeamID
	r.s.nextGroupTeamID++
	r.s.groupTeams = append(r.s.groupTeams, *gt)
}

func (r *fakeGroupTeamRepo) Create(ctx context.Context, exec repositories.SQLExecutor, groupTeam *models.GroupTeam) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.insertLocked(groupTeam)
	return nil
}

func (r *fakeGroupTeamRepo) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, groupTeams []*models.GroupTeam) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, gt := range groupTeams {
		r.insertLocked(gt)
	}
	return nil
}

func (r *fakeGroupTeamRepo) List(ctx context.Context) ([]models.GroupTeam, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]models.GroupTeam(nil), r.s.groupTeams...), nil
}

func (r *fakeGroupTeamRepo) ListByGroup(ctx context.Context, groupID int) ([]models.GroupTeam, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []models.GroupTeam
	for _, gt := range r.s.groupTeams {
		if gt.GroupID == groupID {
			result = append(result, gt)
		}
	}
	return result, nil
}

func (r *fakeGroupTeamRepo) DeleteByTeam(ctx context.Context, teamID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.groupTeams[:0]
	removed := false
	for _, gt := range r.s.groupTeams {
		if gt.TeamID == teamID {
			removed = true
			continue
		}
		kept = append(kept, gt)
	}
	r.s.groupTeams = kept
	if !removed {
		return repositories.ErrGroupTeamNotFound
	}
	return nil
}

type fakeMatchRepo struct {
	s          *fakeStore
	upsertErr  error
	upsertSeen int
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.matches {
		if m.ID == id {
			copied := *m
			return &copied, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) ListByCup(ctx context.Context, cupID int) ([]*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matches []*models.Match
	for _, m := range r.s.matches {
		if m.CupID == cupID {
			copied := *m
			matches = append(matches, &copied)
		}
	}
	return matches, nil
}

func (r *fakeMatchRepo) ListByCupAndRound(ctx context.Context, cupID int, round models.RoundLabel) ([]*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matches []*models.Match
	for _, m := range r.s.matches {
		if m.CupID == cupID && m.Round == round {
			copied := *m
			matches = append(matches, &copied)
		}
	}
	return matches, nil
}

func (r *fakeMatchRepo) UpsertBatch(ctx context.Context, exec repositories.SQLExecutor, matches []*models.Match) error {
	r.upsertSeen++
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range matches {
		replaced := false
		for _, existing := range r.s.matches {
			if existing.CupID == m.CupID && existing.Round == m.Round &&
				existing.Court == m.Court && existing.StartAt.Equal(m.StartAt) {
				existing.Team1ID = m.Team1ID
				existing.Team2ID = m.Team2ID
				existing.Sitting = m.Sitting
				replaced = true
				break
			}
		}
		if replaced {
			continue
		}
		copied := *m
		copied.ID = r.s.nextMatchID
		r.s.nextMatchID++
		r.s.matches = append(r.s.matches, &copied)
	}
	return nil
}

func (r *fakeMatchRepo) UpdateScore(ctx context.Context, match *models.Match) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.matches {
		if existing.ID == match.ID {
			existing.Round1PointsTeam1 = match.Round1PointsTeam1
			existing.Round1PointsTeam2 = match.Round1PointsTeam2
			existing.Round2PointsTeam1 = match.Round2PointsTeam1
			existing.Round2PointsTeam2 = match.Round2PointsTeam2
			existing.Round1Winner = match.Round1Winner
			existing.Round2Winner = match.Round2Winner
			return nil
		}
	}
	return repositories.ErrMatchNotFound
}

type transitionFixture struct {
	store   *fakeStore
	cups    *fakeCupRepo
	teams   *fakeTeamRepo
	groups  *fakeGroupRepo
	members *fakeGroupTeamRepo
	matches *fakeMatchRepo
	service TransitionService
}

// newTransitionFixture seeds one cup with 16 teams spread over the groups
// A-D. Team names sort in id order so slot and seeding positions are
// predictable.
func newTransitionFixture(t *testing.T, state models.CupState) *transitionFixture {
	t.Helper()

	store := newFakeStore()
	store.cups[1] = &models.Cup{ID: 1, Title: "Icke-Cup", State: state}

	groupIDs := make(map[string]int, 4)
	for _, name := range models.QualifyingGroupNames {
		id := store.nextGroupID
		store.nextGroupID++
		store.groups[id] = &models.Group{ID: id, CupID: 1, Name: name}
		groupIDs[name] = id
	}

	for i := 1; i <= 16; i++ {
		store.teams[i] = &models.Team{ID: i, CupID: 1, Name: fmt.Sprintf("Team %02d", i)}
		groupName := models.QualifyingGroupNames[(i-1)/4]
		store.groupTeams = append(store.groupTeams, models.GroupTeam{
			ID:      store.nextGroupTeamID,
			GroupID: groupIDs[groupName],
			TeamID:  i,
		})
		store.nextGroupTeamID++
	}

	f := &transitionFixture{
		store:   store,
		cups:    &fakeCupRepo{s: store},
		teams:   &fakeTeamRepo{s: store},
		groups:  &fakeGroupRepo{s: store},
		members: &fakeGroupTeamRepo{s: store},
		matches: &fakeMatchRepo{s: store},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.service = NewTransitionService(f.cups, f.teams, f.groups, f.members, f.matches, live.NewHub(), logger)
	return f
}

func (f *transitionFixture) groupID(t *testing.T, name string) int {
	t.Helper()
	for _, g := range f.store.groups {
		if g.Name == name {
			return g.ID
		}
	}
	t.Fatalf("group %s not found", name)
	return 0
}

func (f *transitionFixture) groupMembers(name string, t *testing.T) []int {
	t.Helper()
	id := f.groupID(t, name)
	var members []int
	for _, gt := range f.store.groupTeams {
		if gt.GroupID == id {
			members = append(members, gt.TeamID)
		}
	}
	return members
}

var testStart = time.Date(2026, time.June, 6, 9, 0, 0, 0, time.UTC)

func TestStartQualifyingCreatesFullFixturePlan(t *testing.T) {
	f := newTransitionFixture(t, models.CupStateUpcoming)

	result, err := f.service.StartQualifying(context.Background(), 1, testStart)
	require.NoError(t, err)

	assert.Equal(t, models.CupStateQualifying, result.State)
	assert.Equal(t, 48, result.MatchesCreated)
	assert.Equal(t, 0, result.MatchesSkipped)
	assert.Equal(t, "Vorrunde gestartet", result.Message)

	assert.Equal(t, models.CupStateQualifying, f.store.cups[1].State)
	assert.Len(t, f.store.matches, 48)
	for _, m := range f.store.matches {
		assert.Equal(t, models.RoundQualifying, m.Round)
		assert.False(t, m.StartAt.Before(testStart))
	}
}

func TestStartQualifyingRequiresSixteenTeams(t *testing.T) {
	f := newTransitionFixture(t, models.CupStateUpcoming)
	delete(f.store.teams, 16)

	_, err := f.service.StartQualifying(context.Background(), 1, testStart)
	require.ErrorIs(t, err, ErrCupNeedsSixteen)

	// No writes happened: the cup is untouched and no fixtures exist.
	assert.Equal(t, models.CupStateUpcoming, f.store.cups[1].State)
	assert.Empty(t, f.store.matches)
	assert.Zero(t, f.matches.upsertSeen)
}

func TestStartQualifyingRequiresAllGroups(t *testing.T) {
	f := newTransitionFixture(t, models.CupStateUpcoming)
	id := f.groupID(t, "D")
	delete(f.store.groups, id)

	_, err := f.service.StartQualifying(context.Background(), 1, testStart)
	require.ErrorIs(t, err, ErrGroupsIncomplete)
	assert.Equal(t, models.CupStateUpcoming, f.store.cups[1].State)
}

func TestStartQualifyingRejectsWrongState(t *testing.T) {
	for _, state := range []models.CupState{
		models.CupStateQualifying,
		models.CupStateFinals,
		models.CupStateClosed,
	} {
		t.Run(string(state), func(t *testing.T) {
			f := newTransitionFixture(t, state)
			_, err := f.service.StartQualifying(context.Background(), 1, testStart)
			assert.ErrorIs(t, err, ErrCupWrongState)
		})
	}
}

func TestStartQualifyingUnknownCup(t *testing.T) {
	f := newTransitionFixture(t, models.CupStateUpcoming)
	_, err := f.service.StartQualifying(context.Background(), 99, testStart)
	assert.ErrorIs(t, err, ErrCupNotFound)
}

func TestStartQualifyingRetryDoesNotDuplicate(t *testing.T) {
	f := newTransitionFixture(t, models.CupStateUpcoming)

	// First run fails after generating fixtures.
	f.matches.upsertErr = errors.New("connection reset")
	_, err := f.service.StartQualifying(context.Background(), 1, testStart)
	require.ErrorIs(t, err, ErrTransitionIncomplete)
	assert.Equal(t, models.CupStateUpcoming, f.store.cups[1].State)

	// The retry succeeds and ends with exactly one fixture plan.
	f.matches.upsertErr = nil
	result, err := f.service.StartQualifying(context.Background(), 1, testStart)
	require.NoError(t, err)
	assert.Equal(t, 48, result.MatchesCreated)
	assert.Len(t, f.store.matches, 48)
}

func TestStartFinalsSeedsFinalGroupsFromRankings(t *testing.T) {
	f := newTransitionFixture(t, models.CupStateQualifying)

	result, err := f.service.StartFinals(context.Background(), 1, testStart)
	require.NoError(t, err)

	assert.Equal(t, models.CupStateFinals, result.State)
	assert.Equal(t, 48, result.MatchesCreated)
	assert.Equal(t, "Finalrunde gestartet", result.Message)
	assert.Equal(t, models.CupStateFinals, f.store.cups[1].State)

	// All eight groups exist now.
	groups, err := f.groups.ListByCup(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, groups, 8)

	// Without any scores the rank within each qualifying group follows the
	// assignment order, so group E collects the first team of A-D, group H
	// the last.
	assert.ElementsMatch(t, []int{1, 5, 9, 13}, f.groupMembers("E", t))
	assert.ElementsMatch(t, []int{2, 6, 10, 14}, f.groupMembers("F", t))
	assert.ElementsMatch(t, []int{3, 7, 11, 15}, f.groupMembers("G", t))
	assert.ElementsMatch(t, []int{4, 8, 12, 16}, f.groupMembers("H", t))

	finals := 0
	for _, m := range f.store.matches {
		if m.Round == models.RoundFinals {
			finals++
		}
	}
	assert.Equal(t, 48, finals)
}

func TestStartFinalsRejectsWrongState(t *testing.T) {
	f := newTransitionFixture(t, models.CupStateUpcoming)
	_, err := f.service.StartFinals(context.Background(), 1, testStart)
	assert.ErrorIs(t, err, ErrCupWrongState)
}

func TestStartFinalsRetryDoesNotDuplicateGroups(t *testing.T) {
	f := newTransitionFixture(t, models.CupStateQualifying)

	f.matches.upsertErr = errors.New("connection reset")
	_, err := f.service.StartFinals(context.Background(), 1, testStart)
	require.ErrorIs(t, err, ErrTransitionIncomplete)

	f.matches.upsertErr = nil
	_, err = f.service.StartFinals(context.Background(), 1, testStart)
	require.NoError(t, err)

	groups, err := f.groups.ListByCup(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, groups, 8)
	// 16 qualifying assignments plus 16 final ones, no duplicates.
	assert.Len(t, f.store.groupTeams, 32)
}

func TestCloseCupAssignsAllPlacements(t *testing.T) {
	f := newTransitionFixture(t, models.CupStateQualifying)
	_, err := f.service.StartFinals(context.Background(), 1, testStart)
	require.NoError(t, err)

	result, err := f.service.CloseCup(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, models.CupStateClosed, result.State)
	assert.Equal(t, "Turnier abgeschlossen", result.Message)
	assert.Equal(t, models.CupStateClosed, f.store.cups[1].State)

	places := make(map[int]int, 16)
	for id, team := range f.store.teams {
		require.NotNil(t, team.FinalPlace, "team %d has no placement", id)
		places[*team.FinalPlace] = id
	}
	require.Len(t, places, 16)
	for place := 1; place <= 16; place++ {
		assert.Contains(t, places, place)
	}

	// Group E holds places 1-4, H places 13-16.
	for _, id := range f.groupMembers("E", t) {
		assert.LessOrEqual(t, *f.store.teams[id].FinalPlace, 4)
	}
	for _, id := range f.groupMembers("H", t) {
		assert.GreaterOrEqual(t, *f.store.teams[id].FinalPlace, 13)
	}
}

func TestCloseCupRejectsWrongState(t *testing.T) {
	for _, state := range []models.CupState{
		models.CupStateUpcoming,
		models.CupStateQualifying,
		models.CupStateClosed,
	} {
		t.Run(string(state), func(t *testing.T) {
			f := newTransitionFixture(t, state)
			_, err := f.service.CloseCup(context.Background(), 1)
			assert.ErrorIs(t, err, ErrCupWrongState)
		})
	}
}

func TestCloseCupRequiresFinalGroups(t *testing.T) {
	// A cup forced into Finalrunde without seeded final groups cannot close.
	f := newTransitionFixture(t, models.CupStateFinals)
	_, err := f.service.CloseCup(context.Background(), 1)
	assert.ErrorIs(t, err, ErrGroupsIncomplete)
}
