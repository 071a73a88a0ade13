package matching

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidPaging = errors.New("page and limit must be positive")
)

// Config carries the tunables of the matching core.
type Config struct {
	// MaxMatchesPerUser caps visible matches per user, on both sides of
	// a pairing.
	MaxMatchesPerUser int
	// MinScore is the materialization threshold; pairs scoring below it
	// are never persisted.
	MinScore int
	// ScoreCacheTTL bounds cached pairwise scores.
	ScoreCacheTTL time.Duration
	// ApprovalLookback is how far back the hourly sweep looks for newly
	// approved profiles.
	ApprovalLookback time.Duration
	// StaleHorizon is the age after which the daily sweep recalculates
	// a user's matches.
	StaleHorizon time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxMatchesPerUser: 100,
		MinScore:          60,
		ScoreCacheTTL:     time.Hour,
		ApprovalLookback:  2 * time.Hour,
		StaleHorizon:      7 * 24 * time.Hour,
	}
}

type Service interface {
	// Scoring
	ComputeMatchScore(ctx context.Context, seekerID, candidateID int64) (*ScoreDetail, error)

	// Materialization
	ProcessNewUserMatches(ctx context.Context, userID int64) (*MaterializeResult, error)
	RecalculateUserMatches(ctx context.Context, userID int64) (*MaterializeResult, error)

	// Query
	GetUserMatches(ctx context.Context, userID int64, page, limit int) (*MatchPage, error)

	// Visibility state machine
	HideMatchForRequest(ctx context.Context, userID, candidateID int64) error
	ShowMatchForWithdraw(ctx context.Context, userID, candidateID int64) error
	HideMatchForFavorite(ctx context.Context, userID, candidateID int64) error
	ShowMatchForUnfavorite(ctx context.Context, userID, candidateID int64) error

	// Cache maintenance
	InvalidateUserScores(ctx context.Context, userID int64)

	// Scheduled sweeps
	MaterializeRecentlyApproved(ctx context.Context) error
	RecalculateStaleMatches(ctx context.Context) error
}

type service struct {
	repo   Repository
	engine ScoreEngine
	cache  ScoreCache
	cfg    Config
}

func NewService(repo Repository, engine ScoreEngine, cache ScoreCache, cfg Config) Service {
	if cfg.MaxMatchesPerUser <= 0 {
		cfg.MaxMatchesPerUser = DefaultConfig().MaxMatchesPerUser
	}
	if cfg.MinScore <= 0 {
		cfg.MinScore = DefaultConfig().MinScore
	}
	if cfg.ApprovalLookback <= 0 {
		cfg.ApprovalLookback = DefaultConfig().ApprovalLookback
	}
	if cfg.StaleHorizon <= 0 {
		cfg.StaleHorizon = DefaultConfig().StaleHorizon
	}
	if cache == nil {
		cache = NewNoopScoreCache()
	}
	return &service{repo: repo, engine: engine, cache: cache, cfg: cfg}
}

// ComputeMatchScore scores one directed pairing. It returns (nil, nil)
// when either user does not exist, so callers can treat a vanished
// profile as "skip" rather than a failure.
func (s *service) ComputeMatchScore(ctx context.Context, seekerID, candidateID int64) (*ScoreDetail, error) {
	seeker, err := s.repo.GetMatchProfile(ctx, seekerID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}

	candidate, err := s.repo.GetMatchProfile(ctx, candidateID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return s.scorePair(ctx, seeker, candidate), nil
}

// scorePair consults the cache before invoking the engine. Cache
// failures downgrade to a miss.
func (s *service) scorePair(ctx context.Context, seeker, candidate *MatchProfile) *ScoreDetail {
	if detail, ok := s.cache.GetScore(ctx, seeker.User.ID, candidate.User.ID); ok {
		return detail
	}

	detail := s.engine.CalculateMatchScore(seeker, candidate)
	if detail != nil {
		s.cache.SetScore(ctx, seeker.User.ID, candidate.User.ID, detail)
	}

	return detail
}

func (s *service) GetUserMatches(ctx context.Context, userID int64, page, limit int) (*MatchPage, error) {
	if page <= 0 || limit <= 0 {
		return nil, ErrInvalidPaging
	}

	matches, total, err := s.repo.GetUserMatches(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}
	if matches == nil {
		matches = []*Match{}
	}

	return &MatchPage{Matches: matches, Total: total, Page: page, Limit: limit}, nil
}

func (s *service) InvalidateUserScores(ctx context.Context, userID int64) {
	s.cache.InvalidateUser(ctx, userID)
}
