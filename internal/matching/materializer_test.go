package matching

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"
)

// fakeRepository is an in-memory Repository for engine-level tests.
type fakeRepository struct {
	profiles  map[int64]*MatchProfile
	matches   map[[2]int64]*Match
	requests  map[[2]int64]bool // directional sender->receiver, pending only
	favorites map[[2]int64]bool // directional owner->target
	blocked   map[[2]int64]bool

	recentlyApproved []int64
	staleUsers       []int64
	nextMatchID      int64
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		profiles:  make(map[int64]*MatchProfile),
		matches:   make(map[[2]int64]*Match),
		requests:  make(map[[2]int64]bool),
		favorites: make(map[[2]int64]bool),
		blocked:   make(map[[2]int64]bool),
	}
}

func (f *fakeRepository) addProfile(p *MatchProfile) {
	f.profiles[p.User.ID] = p
}

func (f *fakeRepository) GetUser(_ context.Context, userID int64) (*User, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return p.User, nil
}

func (f *fakeRepository) GetMatchProfile(_ context.Context, userID int64) (*MatchProfile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return p, nil
}

func (f *fakeRepository) FindEligibleCandidates(_ context.Context, userID int64, gender string) ([]*User, error) {
	var out []*User
	for id, p := range f.profiles {
		if id == userID || !p.User.Eligible() {
			continue
		}
		if !strings.EqualFold(p.User.Gender, gender) {
			continue
		}
		if f.blocked[[2]int64{userID, id}] || f.blocked[[2]int64{id, userID}] {
			continue
		}
		out = append(out, p.User)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepository) CountVisibleMatches(_ context.Context, userID int64) (int, error) {
	count := 0
	for key, m := range f.matches {
		if key[0] == userID && m.IsVisible {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepository) UpsertMatchPair(_ context.Context, pair *MatchPair) error {
	now := time.Now()
	for _, key := range [][2]int64{{pair.UserID, pair.CandidateID}, {pair.CandidateID, pair.UserID}} {
		existing, ok := f.matches[key]
		if !ok {
			f.nextMatchID++
			existing = &Match{ID: f.nextMatchID, UserID: key[0], CandidateID: key[1], CreatedAt: now}
			f.matches[key] = existing
		}
		existing.Score = pair.Score
		existing.Reasons = append([]string(nil), pair.Reasons...)
		existing.IsVisible = pair.IsVisible
		existing.HiddenReason = pair.HiddenReason
		existing.LastCalculatedAt = now
	}
	return nil
}

func (f *fakeRepository) SetPairVisibility(_ context.Context, userID, candidateID int64, visible bool, hiddenReason *string) (int64, error) {
	var rows int64
	for _, key := range [][2]int64{{userID, candidateID}, {candidateID, userID}} {
		if m, ok := f.matches[key]; ok {
			m.IsVisible = visible
			m.HiddenReason = hiddenReason
			rows++
		}
	}
	return rows, nil
}

func (f *fakeRepository) DeleteUserMatches(_ context.Context, userID int64) error {
	for key := range f.matches {
		if key[0] == userID || key[1] == userID {
			delete(f.matches, key)
		}
	}
	return nil
}

func (f *fakeRepository) GetUserMatches(_ context.Context, userID int64, page, limit int) ([]*Match, int, error) {
	var visible []*Match
	for key, m := range f.matches {
		if key[0] == userID && m.IsVisible {
			visible = append(visible, m)
		}
	}
	sort.Slice(visible, func(i, j int) bool { return visible[i].ID > visible[j].ID })

	total := len(visible)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return visible[start:end], total, nil
}

func (f *fakeRepository) HasActiveRequest(_ context.Context, userID, candidateID int64) (bool, error) {
	return f.requests[[2]int64{userID, candidateID}] || f.requests[[2]int64{candidateID, userID}], nil
}

func (f *fakeRepository) HasFavorite(_ context.Context, userID, candidateID int64) (bool, error) {
	return f.favorites[[2]int64{userID, candidateID}] || f.favorites[[2]int64{candidateID, userID}], nil
}

func (f *fakeRepository) ListRecentlyApproved(_ context.Context, _ time.Time) ([]int64, error) {
	return f.recentlyApproved, nil
}

func (f *fakeRepository) ListStaleMatchUsers(_ context.Context, _ time.Time) ([]int64, error) {
	return f.staleUsers, nil
}

func newTestService(repo Repository, cfg Config) Service {
	return NewService(repo, NewScoreEngine(), NewNoopScoreCache(), cfg)
}

func (f *fakeRepository) matchFor(userID, candidateID int64) *Match {
	return f.matches[[2]int64{userID, candidateID}]
}

func TestProcessNewUserMatchesCreatesBothDirections(t *testing.T) {
	repo := newFakeRepository()
	repo.addProfile(seekerWithExpectation(1, 29))
	repo.addProfile(fullCandidate(2, 27))

	svc := newTestService(repo, Config{MaxMatchesPerUser: 10, MinScore: 60})

	result, err := svc.ProcessNewUserMatches(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if result.Created != 2 || result.Skipped != 0 {
		t.Fatalf("result = %+v, want created=2 skipped=0", result)
	}

	forward := repo.matchFor(1, 2)
	reverse := repo.matchFor(2, 1)
	if forward == nil || reverse == nil {
		t.Fatal("expected both directions persisted")
	}
	if forward.Score != reverse.Score {
		t.Fatalf("scores diverge: %d vs %d", forward.Score, reverse.Score)
	}
	if len(forward.Reasons) == 0 || len(forward.Reasons) != len(reverse.Reasons) {
		t.Fatalf("reasons diverge: %v vs %v", forward.Reasons, reverse.Reasons)
	}
	if !forward.IsVisible || !reverse.IsVisible {
		t.Fatal("fresh pair with no relationship should be visible")
	}
}

func TestProcessNewUserMatchesIneligibleUser(t *testing.T) {
	repo := newFakeRepository()
	seeker := seekerWithExpectation(1, 29)
	seeker.User.IsProfileApproved = false
	repo.addProfile(seeker)
	repo.addProfile(fullCandidate(2, 27))

	svc := newTestService(repo, Config{MaxMatchesPerUser: 10, MinScore: 60})

	result, err := svc.ProcessNewUserMatches(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if result.Created != 0 {
		t.Fatalf("ineligible user created %d matches", result.Created)
	}
	if len(repo.matches) != 0 {
		t.Fatal("no match rows should exist")
	}
}

func TestProcessNewUserMatchesInvisibleUserTreatedAsIneligible(t *testing.T) {
	repo := newFakeRepository()
	seeker := seekerWithExpectation(1, 29)
	hidden := false
	seeker.User.IsVisible = &hidden
	repo.addProfile(seeker)
	repo.addProfile(fullCandidate(2, 27))

	svc := newTestService(repo, Config{MaxMatchesPerUser: 10, MinScore: 60})

	result, _ := svc.ProcessNewUserMatches(context.Background(), 1)
	if result.Created != 0 {
		t.Fatalf("invisible user created %d matches", result.Created)
	}
}

func TestProcessNewUserMatchesRespectsCandidateCap(t *testing.T) {
	repo := newFakeRepository()
	repo.addProfile(seekerWithExpectation(1, 29))
	candidate := fullCandidate(2, 27)
	repo.addProfile(candidate)

	// Saturate the candidate with visible matches against other users.
	for i := int64(100); i < 103; i++ {
		repo.matches[[2]int64{2, i}] = &Match{ID: i, UserID: 2, CandidateID: i, IsVisible: true}
	}

	svc := newTestService(repo, Config{MaxMatchesPerUser: 3, MinScore: 60})

	result, err := svc.ProcessNewUserMatches(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if result.Created != 0 || result.Skipped != 1 {
		t.Fatalf("result = %+v, want created=0 skipped=1", result)
	}
	if repo.matchFor(1, 2) != nil {
		t.Fatal("saturated candidate must not be paired")
	}
}

func TestProcessNewUserMatchesSeekerAtCap(t *testing.T) {
	repo := newFakeRepository()
	repo.addProfile(seekerWithExpectation(1, 29))
	repo.addProfile(fullCandidate(2, 27))

	for i := int64(100); i < 103; i++ {
		repo.matches[[2]int64{1, i}] = &Match{ID: i, UserID: 1, CandidateID: i, IsVisible: true}
	}

	svc := newTestService(repo, Config{MaxMatchesPerUser: 3, MinScore: 60})

	result, _ := svc.ProcessNewUserMatches(context.Background(), 1)
	if result.Created != 0 {
		t.Fatalf("capped seeker created %d matches", result.Created)
	}
}

func TestProcessNewUserMatchesSkipsLowScores(t *testing.T) {
	repo := newFakeRepository()
	repo.addProfile(seekerWithExpectation(1, 29))
	// A bare profile scores the floor on every factor.
	repo.addProfile(femaleProfile(2, 50))

	svc := newTestService(repo, Config{MaxMatchesPerUser: 10, MinScore: 60})

	result, err := svc.ProcessNewUserMatches(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if result.Created != 0 || result.Skipped != 1 {
		t.Fatalf("result = %+v, want created=0 skipped=1", result)
	}
	if len(repo.matches) != 0 {
		t.Fatal("low scores must not be persisted, even hidden")
	}
}

func TestProcessNewUserMatchesExcludesBlockedPairs(t *testing.T) {
	repo := newFakeRepository()
	repo.addProfile(seekerWithExpectation(1, 29))
	repo.addProfile(fullCandidate(2, 27))
	repo.blocked[[2]int64{2, 1}] = true // blocked in either direction counts

	svc := newTestService(repo, Config{MaxMatchesPerUser: 10, MinScore: 60})

	result, _ := svc.ProcessNewUserMatches(context.Background(), 1)
	if result.Created != 0 {
		t.Fatalf("blocked pair created %d matches", result.Created)
	}
}

func TestProcessNewUserMatchesHidesForPendingRequest(t *testing.T) {
	repo := newFakeRepository()
	repo.addProfile(seekerWithExpectation(1, 29))
	repo.addProfile(fullCandidate(2, 27))
	repo.requests[[2]int64{1, 2}] = true

	svc := newTestService(repo, Config{MaxMatchesPerUser: 10, MinScore: 60})

	result, err := svc.ProcessNewUserMatches(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if result.Created != 2 {
		t.Fatalf("hidden pair should still be created, got %+v", result)
	}

	m := repo.matchFor(1, 2)
	if m.IsVisible {
		t.Fatal("pair with pending request must be hidden")
	}
	if m.HiddenReason == nil || *m.HiddenReason != HiddenReasonRequest {
		t.Fatalf("hidden reason = %v, want request", m.HiddenReason)
	}
}

func TestProcessNewUserMatchesHidesForFavorite(t *testing.T) {
	repo := newFakeRepository()
	repo.addProfile(seekerWithExpectation(1, 29))
	repo.addProfile(fullCandidate(2, 27))
	repo.favorites[[2]int64{1, 2}] = true

	svc := newTestService(repo, Config{MaxMatchesPerUser: 10, MinScore: 60})

	if _, err := svc.ProcessNewUserMatches(context.Background(), 1); err != nil {
		t.Fatal(err)
	}

	m := repo.matchFor(1, 2)
	if m == nil || m.IsVisible {
		t.Fatal("favorited pair must be created hidden")
	}
	if m.HiddenReason == nil || *m.HiddenReason != HiddenReasonFavorite {
		t.Fatalf("hidden reason = %v, want favorite", m.HiddenReason)
	}
}

func TestHiddenMatchesDoNotConsumeVisibleSlots(t *testing.T) {
	repo := newFakeRepository()
	repo.addProfile(seekerWithExpectation(1, 29))
	repo.addProfile(fullCandidate(2, 27))
	repo.addProfile(fullCandidate(3, 28))
	repo.requests[[2]int64{1, 2}] = true

	// One visible slot: the hidden pair with 2 must not consume it.
	svc := newTestService(repo, Config{MaxMatchesPerUser: 1, MinScore: 60})

	result, err := svc.ProcessNewUserMatches(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if result.Created != 4 {
		t.Fatalf("created = %d, want 4 (one hidden pair, one visible pair)", result.Created)
	}
	if m := repo.matchFor(1, 3); m == nil || !m.IsVisible {
		t.Fatal("visible slot should have gone to candidate 3")
	}
}

func TestRecalculateUserMatchesIdempotent(t *testing.T) {
	repo := newFakeRepository()
	repo.addProfile(seekerWithExpectation(1, 29))
	repo.addProfile(fullCandidate(2, 27))
	repo.addProfile(fullCandidate(3, 26))

	svc := newTestService(repo, Config{MaxMatchesPerUser: 10, MinScore: 60})

	first, err := svc.RecalculateUserMatches(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	snapshot := snapshotMatches(repo)

	second, err := svc.RecalculateUserMatches(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if first.Created != second.Created || first.Skipped != second.Skipped {
		t.Fatalf("runs diverge: %+v vs %+v", first, second)
	}

	after := snapshotMatches(repo)
	if len(after) != len(snapshot) {
		t.Fatalf("match set size changed: %d vs %d", len(after), len(snapshot))
	}
	for key, m := range snapshot {
		again, ok := after[key]
		if !ok {
			t.Fatalf("pair %v disappeared", key)
		}
		if again.Score != m.Score || again.IsVisible != m.IsVisible {
			t.Fatalf("pair %v changed: %+v vs %+v", key, again, m)
		}
	}
}

func snapshotMatches(repo *fakeRepository) map[[2]int64]Match {
	out := make(map[[2]int64]Match, len(repo.matches))
	for key, m := range repo.matches {
		out[key] = *m
	}
	return out
}

func TestMaterializeRecentlyApprovedSweep(t *testing.T) {
	repo := newFakeRepository()
	repo.addProfile(seekerWithExpectation(1, 29))
	repo.addProfile(fullCandidate(2, 27))
	repo.recentlyApproved = []int64{1}

	svc := newTestService(repo, Config{MaxMatchesPerUser: 10, MinScore: 60})

	if err := svc.MaterializeRecentlyApproved(context.Background()); err != nil {
		t.Fatal(err)
	}
	if repo.matchFor(1, 2) == nil {
		t.Fatal("sweep did not materialize matches for the approved user")
	}
}

func TestRecalculateStaleMatchesSweep(t *testing.T) {
	repo := newFakeRepository()
	repo.addProfile(seekerWithExpectation(1, 29))
	repo.addProfile(fullCandidate(2, 27))
	repo.staleUsers = []int64{1}

	// A stale row that the recalculation should replace.
	repo.matches[[2]int64{1, 2}] = &Match{ID: 1, UserID: 1, CandidateID: 2, Score: 5, IsVisible: true}
	repo.matches[[2]int64{2, 1}] = &Match{ID: 2, UserID: 2, CandidateID: 1, Score: 5, IsVisible: true}

	svc := newTestService(repo, Config{MaxMatchesPerUser: 10, MinScore: 60})

	if err := svc.RecalculateStaleMatches(context.Background()); err != nil {
		t.Fatal(err)
	}

	m := repo.matchFor(1, 2)
	if m == nil {
		t.Fatal("stale pair vanished instead of being recalculated")
	}
	if m.Score == 5 {
		t.Fatal("stale score was not refreshed")
	}
}

func TestComputeMatchScoreMissingUser(t *testing.T) {
	repo := newFakeRepository()
	repo.addProfile(seekerWithExpectation(1, 29))

	svc := newTestService(repo, Config{})

	detail, err := svc.ComputeMatchScore(context.Background(), 1, 99)
	if err != nil {
		t.Fatal(err)
	}
	if detail != nil {
		t.Fatalf("missing candidate should yield nil detail, got %+v", detail)
	}
}

func TestGetUserMatchesPagination(t *testing.T) {
	repo := newFakeRepository()
	for i := int64(1); i <= 5; i++ {
		repo.matches[[2]int64{1, 100 + i}] = &Match{ID: i, UserID: 1, CandidateID: 100 + i, IsVisible: true}
	}
	repo.matches[[2]int64{1, 200}] = &Match{ID: 6, UserID: 1, CandidateID: 200, IsVisible: false}

	svc := newTestService(repo, Config{})

	page, err := svc.GetUserMatches(context.Background(), 1, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 5 {
		t.Fatalf("total = %d, want 5 (hidden rows excluded)", page.Total)
	}
	if len(page.Matches) != 2 {
		t.Fatalf("page size = %d, want 2", len(page.Matches))
	}

	if _, err := svc.GetUserMatches(context.Background(), 1, 0, 2); err != ErrInvalidPaging {
		t.Fatalf("expected ErrInvalidPaging, got %v", err)
	}
}
