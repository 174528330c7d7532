// Package recommend implements the deterministic rule engine that turns a
// user's transaction history and preferences into ranked, explainable
// recommendations, plus the applier that executes a confirmed one.
package recommend

import (
	"context"
	"errors"
	"sync"

	"github.com/gastosmart/backend/internal/domain"
	"github.com/gastosmart/backend/internal/logger"
	"github.com/gastosmart/backend/internal/regional"
	"github.com/gastosmart/backend/internal/store"
)

const (
	// DefaultFetchLimit bounds how many transactions one run reads.
	DefaultFetchLimit = 2000

	// DefaultSmallExpenseThreshold is the COP amount at or under which an
	// expense counts as "small".
	DefaultSmallExpenseThreshold = 20000

	// DefaultMaxResults caps the ranked list returned to clients.
	DefaultMaxResults = 20

	// DefaultGoalFraction is the income share suggested as a savings goal.
	DefaultGoalFraction = 0.10

	// FallbackGoalAmount is used when a goal is created and no amount can be
	// derived from the request or the user's income.
	FallbackGoalAmount = 50000
)

// Options tune an Engine. Zero values fall back to the defaults above.
type Options struct {
	FetchLimit            int
	SmallExpenseThreshold float64
	MaxResults            int
	GoalFraction          float64
	FallbackGoalAmount    float64
	Formatter             *regional.Formatter
}

// Engine generates and applies recommendations. The stores it wraps may be
// nil; generation degrades to an empty dataset and application reports the
// storage as unavailable.
type Engine struct {
	transactions store.TransactionReader
	preferences  store.PreferencesStore
	goals        store.GoalsWriter
	format       *regional.Formatter

	fetchLimit            int
	smallExpenseThreshold float64
	maxResults            int
	goalFraction          float64
	fallbackGoalAmount    float64
}

func New(transactions store.TransactionReader, preferences store.PreferencesStore, goals store.GoalsWriter, opts Options) *Engine {
	e := &Engine{
		transactions:          transactions,
		preferences:           preferences,
		goals:                 goals,
		format:                opts.Formatter,
		fetchLimit:            opts.FetchLimit,
		smallExpenseThreshold: opts.SmallExpenseThreshold,
		maxResults:            opts.MaxResults,
		goalFraction:          opts.GoalFraction,
		fallbackGoalAmount:    opts.FallbackGoalAmount,
	}
	if e.format == nil {
		e.format = regional.NewFormatter(regional.Default())
	}
	if e.fetchLimit <= 0 {
		e.fetchLimit = DefaultFetchLimit
	}
	if e.smallExpenseThreshold <= 0 {
		e.smallExpenseThreshold = DefaultSmallExpenseThreshold
	}
	if e.maxResults <= 0 {
		e.maxResults = DefaultMaxResults
	}
	if e.goalFraction <= 0 {
		e.goalFraction = DefaultGoalFraction
	}
	if e.fallbackGoalAmount <= 0 {
		e.fallbackGoalAmount = FallbackGoalAmount
	}
	return e
}

// Generate runs the full pipeline for one user: fetch, aggregate, evaluate,
// rank. It never fails; unreachable stores are logged and treated as empty
// data so the caller always gets a coherent list. Two runs over the same
// data produce identical output.
func (e *Engine) Generate(ctx context.Context, userID string) []domain.Recommendation {
	raw, prefs := e.fetchUserData(ctx, userID)
	signals := BuildSignals(raw, e.smallExpenseThreshold)

	var candidates []domain.Recommendation
	for _, r := range e.rules() {
		candidates = append(candidates, r(signals, prefs)...)
	}
	if signals.TransactionCount == 0 {
		candidates = append([]domain.Recommendation{noDataCandidate()}, candidates...)
	}
	return rank(candidates, e.maxResults)
}

// fetchUserData reads transactions and settings concurrently. Read errors
// degrade to empty data; ErrNotFound on settings is the normal "user has not
// configured anything yet" case and is not logged.
func (e *Engine) fetchUserData(ctx context.Context, userID string) ([]map[string]interface{}, domain.UserSettings) {
	log := logger.FromContext(ctx)

	var (
		wg       sync.WaitGroup
		raw      []map[string]interface{}
		settings map[string]interface{}
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		if e.transactions == nil {
			return
		}
		var err error
		raw, err = e.transactions.ListTransactions(ctx, userID, e.fetchLimit)
		if err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("listing transactions failed, generating without them")
			raw = nil
		}
	}()
	go func() {
		defer wg.Done()
		if e.preferences == nil {
			return
		}
		var err error
		settings, err = e.preferences.GetSettings(ctx, userID)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				log.Warn().Err(err).Str("user_id", userID).Msg("reading settings failed, generating without them")
			}
			settings = nil
		}
	}()
	wg.Wait()

	return raw, domain.NormalizeSettings(userID, settings)
}
