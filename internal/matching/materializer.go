package matching

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
)

func nowMinus(d time.Duration) time.Time {
	return time.Now().Add(-d)
}

// ProcessNewUserMatches materializes match pairs for a newly eligible
// user: it scores every opposite-gender eligible candidate, persists
// both directions of each accepted pairing, and respects the visible
// match cap on both sides.
//
// The cap check is advisory: two concurrent runs over overlapping users
// can transiently exceed MaxMatchesPerUser. Re-running is safe because
// the pair upsert is idempotent and visibility is recomputed fresh.
func (s *service) ProcessNewUserMatches(ctx context.Context, userID int64) (*MaterializeResult, error) {
	result := &MaterializeResult{}
	runID := uuid.NewString()

	seeker, err := s.repo.GetMatchProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !seeker.User.Eligible() {
		log.Printf("materialize run %s: user %d not eligible, nothing to do", runID, userID)
		return result, nil
	}

	visibleCount, err := s.repo.CountVisibleMatches(ctx, userID)
	if err != nil {
		return nil, err
	}
	remaining := s.cfg.MaxMatchesPerUser - visibleCount
	if remaining <= 0 {
		log.Printf("materialize run %s: user %d already at match cap", runID, userID)
		return result, nil
	}

	candidates, err := s.repo.FindEligibleCandidates(ctx, userID, oppositeGender(seeker.User.Gender))
	if err != nil {
		return nil, err
	}

	for _, candidate := range candidates {
		if remaining <= 0 {
			break
		}

		// The cap is symmetric: a saturated candidate cannot be loaded
		// further even when the seeker still has room.
		candidateCount, err := s.repo.CountVisibleMatches(ctx, candidate.ID)
		if err != nil {
			return result, err
		}
		if candidateCount >= s.cfg.MaxMatchesPerUser {
			result.Skipped++
			RecordCandidateSkipped(skipReasonCapped)
			continue
		}

		candidateProfile, err := s.repo.GetMatchProfile(ctx, candidate.ID)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				result.Skipped++
				RecordCandidateSkipped(skipReasonMissingProfile)
				continue
			}
			return result, err
		}

		detail := s.scorePair(ctx, seeker, candidateProfile)
		if detail == nil {
			result.Skipped++
			RecordCandidateSkipped(skipReasonMissingProfile)
			continue
		}
		if detail.Score < s.cfg.MinScore {
			result.Skipped++
			RecordCandidateSkipped(skipReasonLowScore)
			continue
		}

		visible, hiddenReason, err := s.pairVisibility(ctx, userID, candidate.ID)
		if err != nil {
			return result, err
		}

		pair := &MatchPair{
			UserID:       userID,
			CandidateID:  candidate.ID,
			Score:        detail.Score,
			Reasons:      detail.Reasons,
			IsVisible:    visible,
			HiddenReason: hiddenReason,
		}
		if err := s.repo.UpsertMatchPair(ctx, pair); err != nil {
			// Unordered batch semantics: one bad pair must not abort
			// the whole run.
			log.Printf("materialize run %s: upsert failed for pair %d/%d: %v", runID, userID, candidate.ID, err)
			result.Skipped++
			continue
		}

		result.Created += 2
		RecordPairCreated()
		// Hidden matches are bookkeeping only; they never consume
		// visible slots.
		if visible {
			remaining--
		}
	}

	s.cache.InvalidateUser(ctx, userID)
	log.Printf("materialize run %s: user %d created=%d skipped=%d", runID, userID, result.Created, result.Skipped)

	return result, nil
}

// pairVisibility derives the initial visibility of a new pair from the
// existing social relationship. A pending request wins over a favorite
// as the recorded reason.
func (s *service) pairVisibility(ctx context.Context, userID, candidateID int64) (bool, *string, error) {
	hasRequest, err := s.repo.HasActiveRequest(ctx, userID, candidateID)
	if err != nil {
		return false, nil, err
	}
	if hasRequest {
		reason := HiddenReasonRequest
		return false, &reason, nil
	}

	isFavorite, err := s.repo.HasFavorite(ctx, userID, candidateID)
	if err != nil {
		return false, nil, err
	}
	if isFavorite {
		reason := HiddenReasonFavorite
		return false, &reason, nil
	}

	return true, nil, nil
}

// RecalculateUserMatches deletes every match row touching the user and
// materializes fresh pairs. Running it twice with no intervening state
// change produces the same match set.
func (s *service) RecalculateUserMatches(ctx context.Context, userID int64) (*MaterializeResult, error) {
	if err := s.repo.DeleteUserMatches(ctx, userID); err != nil {
		return nil, err
	}

	s.cache.InvalidateUser(ctx, userID)

	return s.ProcessNewUserMatches(ctx, userID)
}

// MaterializeRecentlyApproved is the hourly sweep that picks up users
// whose profiles were approved since the last lookback window.
func (s *service) MaterializeRecentlyApproved(ctx context.Context) error {
	since := nowMinus(s.cfg.ApprovalLookback)
	userIDs, err := s.repo.ListRecentlyApproved(ctx, since)
	if err != nil {
		return err
	}

	for _, id := range userIDs {
		if _, err := s.ProcessNewUserMatches(ctx, id); err != nil {
			log.Printf("scheduled materialization failed for user %d: %v", id, err)
		}
	}

	return nil
}

// RecalculateStaleMatches is the daily sweep refreshing matches whose
// scores are older than the stale horizon.
func (s *service) RecalculateStaleMatches(ctx context.Context) error {
	olderThan := nowMinus(s.cfg.StaleHorizon)
	userIDs, err := s.repo.ListStaleMatchUsers(ctx, olderThan)
	if err != nil {
		return err
	}

	for _, id := range userIDs {
		if _, err := s.RecalculateUserMatches(ctx, id); err != nil {
			log.Printf("stale recalculation failed for user %d: %v", id, err)
		}
	}

	return nil
}
