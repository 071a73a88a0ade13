package matching

import (
	"context"
	"testing"
)

// seedVisiblePair puts a visible match pair straight into the fake
// store, bypassing materialization.
func seedVisiblePair(repo *fakeRepository, a, b int64) {
	repo.nextMatchID++
	repo.matches[[2]int64{a, b}] = &Match{ID: repo.nextMatchID, UserID: a, CandidateID: b, IsVisible: true}
	repo.nextMatchID++
	repo.matches[[2]int64{b, a}] = &Match{ID: repo.nextMatchID, UserID: b, CandidateID: a, IsVisible: true}
}

func assertPairState(t *testing.T, repo *fakeRepository, a, b int64, visible bool, reason *string) {
	t.Helper()
	for _, key := range [][2]int64{{a, b}, {b, a}} {
		m := repo.matches[key]
		if m == nil {
			t.Fatalf("pair %v missing", key)
		}
		if m.IsVisible != visible {
			t.Fatalf("pair %v visible = %v, want %v", key, m.IsVisible, visible)
		}
		switch {
		case reason == nil && m.HiddenReason != nil:
			t.Fatalf("pair %v hidden reason = %q, want nil", key, *m.HiddenReason)
		case reason != nil && (m.HiddenReason == nil || *m.HiddenReason != *reason):
			t.Fatalf("pair %v hidden reason = %v, want %q", key, m.HiddenReason, *reason)
		}
	}
}

func TestHideMatchForRequest(t *testing.T) {
	repo := newFakeRepository()
	seedVisiblePair(repo, 1, 2)
	svc := newTestService(repo, Config{})

	if err := svc.HideMatchForRequest(context.Background(), 1, 2); err != nil {
		t.Fatal(err)
	}
	assertPairState(t, repo, 1, 2, false, strPtr(HiddenReasonRequest))
}

func TestShowMatchForWithdrawRestoresVisibility(t *testing.T) {
	repo := newFakeRepository()
	seedVisiblePair(repo, 1, 2)
	svc := newTestService(repo, Config{})

	if err := svc.HideMatchForRequest(context.Background(), 1, 2); err != nil {
		t.Fatal(err)
	}
	if err := svc.ShowMatchForWithdraw(context.Background(), 1, 2); err != nil {
		t.Fatal(err)
	}
	assertPairState(t, repo, 1, 2, true, nil)
}

func TestShowMatchForWithdrawFavoriteTakesOver(t *testing.T) {
	repo := newFakeRepository()
	seedVisiblePair(repo, 1, 2)
	repo.favorites[[2]int64{2, 1}] = true // either direction holds the pair hidden
	svc := newTestService(repo, Config{})

	if err := svc.HideMatchForRequest(context.Background(), 1, 2); err != nil {
		t.Fatal(err)
	}
	if err := svc.ShowMatchForWithdraw(context.Background(), 1, 2); err != nil {
		t.Fatal(err)
	}
	assertPairState(t, repo, 1, 2, false, strPtr(HiddenReasonFavorite))
}

func TestHideMatchForFavorite(t *testing.T) {
	repo := newFakeRepository()
	seedVisiblePair(repo, 1, 2)
	svc := newTestService(repo, Config{})

	if err := svc.HideMatchForFavorite(context.Background(), 1, 2); err != nil {
		t.Fatal(err)
	}
	assertPairState(t, repo, 1, 2, false, strPtr(HiddenReasonFavorite))
}

func TestShowMatchForUnfavoriteRestoresVisibility(t *testing.T) {
	repo := newFakeRepository()
	seedVisiblePair(repo, 1, 2)
	svc := newTestService(repo, Config{})

	if err := svc.HideMatchForFavorite(context.Background(), 1, 2); err != nil {
		t.Fatal(err)
	}
	if err := svc.ShowMatchForUnfavorite(context.Background(), 1, 2); err != nil {
		t.Fatal(err)
	}
	assertPairState(t, repo, 1, 2, true, nil)
}

func TestShowMatchForUnfavoriteRequestTakesOver(t *testing.T) {
	repo := newFakeRepository()
	seedVisiblePair(repo, 1, 2)
	repo.requests[[2]int64{1, 2}] = true
	svc := newTestService(repo, Config{})

	if err := svc.HideMatchForFavorite(context.Background(), 1, 2); err != nil {
		t.Fatal(err)
	}
	if err := svc.ShowMatchForUnfavorite(context.Background(), 1, 2); err != nil {
		t.Fatal(err)
	}
	assertPairState(t, repo, 1, 2, false, strPtr(HiddenReasonRequest))
}

func TestVisibilityNeverCreatesPairs(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo, Config{})

	if err := svc.HideMatchForRequest(context.Background(), 1, 2); err != nil {
		t.Fatal(err)
	}
	if err := svc.ShowMatchForWithdraw(context.Background(), 1, 2); err != nil {
		t.Fatal(err)
	}
	if len(repo.matches) != 0 {
		t.Fatalf("transitions on an absent pair created %d rows", len(repo.matches))
	}
}

func TestHideAppliesFromEitherDirection(t *testing.T) {
	repo := newFakeRepository()
	seedVisiblePair(repo, 1, 2)
	svc := newTestService(repo, Config{})

	// Candidate-initiated actions hide the seeker's copy too.
	if err := svc.HideMatchForRequest(context.Background(), 2, 1); err != nil {
		t.Fatal(err)
	}
	assertPairState(t, repo, 1, 2, false, strPtr(HiddenReasonRequest))
}
