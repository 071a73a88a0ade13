package matching

import (
	"context"
	"log"
)

// The visibility state machine moves a match pair between three states:
// visible, hidden:request, and hidden:favorite. Every transition is
// applied to both directions of the pair through a single bulk update,
// and never creates rows: a pair that was never materialized stays
// absent.
//
// Failures here are soft. Sending a connection request must succeed
// even when hiding the match record fails, so mutations log the
// inconsistency and still report the error to callers that care.

// HideMatchForRequest suppresses the pair after a connection request is
// sent.
func (s *service) HideMatchForRequest(ctx context.Context, userID, candidateID int64) error {
	reason := HiddenReasonRequest
	return s.setVisibility(ctx, "hide_request", userID, candidateID, false, &reason)
}

// ShowMatchForWithdraw restores the pair after a request is withdrawn,
// unless a favorite relationship still holds, which takes over as the
// hide reason.
func (s *service) ShowMatchForWithdraw(ctx context.Context, userID, candidateID int64) error {
	isFavorite, err := s.repo.HasFavorite(ctx, userID, candidateID)
	if err != nil {
		log.Printf("visibility: favorite lookup failed for pair %d/%d: %v", userID, candidateID, err)
		return err
	}
	if isFavorite {
		reason := HiddenReasonFavorite
		return s.setVisibility(ctx, "withdraw_to_favorite", userID, candidateID, false, &reason)
	}
	return s.setVisibility(ctx, "show_withdraw", userID, candidateID, true, nil)
}

// HideMatchForFavorite suppresses the pair when either side favorites
// the other, regardless of the current state.
func (s *service) HideMatchForFavorite(ctx context.Context, userID, candidateID int64) error {
	reason := HiddenReasonFavorite
	return s.setVisibility(ctx, "hide_favorite", userID, candidateID, false, &reason)
}

// ShowMatchForUnfavorite restores the pair after a favorite is removed,
// unless an active connection request still exists between the two.
func (s *service) ShowMatchForUnfavorite(ctx context.Context, userID, candidateID int64) error {
	hasRequest, err := s.repo.HasActiveRequest(ctx, userID, candidateID)
	if err != nil {
		log.Printf("visibility: request lookup failed for pair %d/%d: %v", userID, candidateID, err)
		return err
	}
	if hasRequest {
		reason := HiddenReasonRequest
		return s.setVisibility(ctx, "unfavorite_to_request", userID, candidateID, false, &reason)
	}
	return s.setVisibility(ctx, "show_unfavorite", userID, candidateID, true, nil)
}

func (s *service) setVisibility(ctx context.Context, action string, userID, candidateID int64, visible bool, hiddenReason *string) error {
	rows, err := s.repo.SetPairVisibility(ctx, userID, candidateID, visible, hiddenReason)
	if err != nil {
		log.Printf("visibility: %s failed for pair %d/%d: %v", action, userID, candidateID, err)
		return err
	}
	if rows == 0 {
		// No materialized pair; the state machine never creates one.
		return nil
	}

	RecordVisibilityTransition(action)
	return nil
}
