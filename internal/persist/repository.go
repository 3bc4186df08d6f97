package persist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rshade/retrofit/internal/logging"
	"github.com/rshade/retrofit/internal/project"
)

// DefaultKey is the storage key of the working project.
const DefaultKey = "retrofit-project-state"

// Repository loads and saves one project document under a fixed key.
type Repository struct {
	store    Store
	key      string
	now      func() time.Time
	defaults func() *project.State

	saveMu sync.Mutex
}

// NewRepository returns a repository over store. An empty key selects DefaultKey.
func NewRepository(store Store, key string) *Repository {
	if key == "" {
		key = DefaultKey
	}
	return &Repository{store: store, key: key, now: time.Now, defaults: DefaultState}
}

// WithDefaults replaces the state returned when nothing usable is stored.
func (r *Repository) WithDefaults(fn func() *project.State) *Repository {
	if fn != nil {
		r.defaults = fn
	}
	return r
}

// Key returns the storage key.
func (r *Repository) Key() string {
	return r.key
}

// Load returns the stored project. A missing or unusable document yields
// the default state with a warning in the result. A store read failure is returned
// together with the default state so callers can continue.
func (r *Repository) Load(ctx context.Context) (*project.State, ImportResult, error) {
	log := logging.FromContext(ctx).With().
		Str("component", "persist").
		Str("operation", "load").
		Str("key", r.key).
		Logger()

	raw, err := r.store.GetItem(ctx, r.key)
	switch {
	case errors.Is(err, ErrItemNotFound):
		log.Debug().Msg("no stored project, starting from defaults")
		return r.defaults(), ImportResult{
			Warnings: []Issue{{Message: "no stored project, using defaults"}},
		}, nil
	case err != nil:
		log.Error().Err(err).Msg("failed to read stored project")
		return r.defaults(), ImportResult{}, fmt.Errorf("loading project %q: %w", r.key, err)
	}

	s, res := Import(raw)
	if !res.OK() {
		log.Warn().Str("reason", res.Err().Error()).Msg("stored project is unusable, starting from defaults")
		fallback := ImportResult{Warnings: append(res.Errors, res.Warnings...)}
		fallback.Warnings = append(fallback.Warnings, Issue{Message: "stored project was malformed, using defaults"})
		return r.defaults(), fallback, nil
	}
	for _, w := range res.Warnings {
		log.Warn().Str("path", w.Path).Msg(w.Message)
	}
	return s, res, nil
}

// Save writes s. Concurrent calls are serialised. s is never modified, and a
// failure leaves the previously stored document in place.
func (r *Repository) Save(ctx context.Context, s *project.State) error {
	r.saveMu.Lock()
	defer r.saveMu.Unlock()

	data, err := Export(s, r.now())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	if err := r.store.SetItem(ctx, r.key, data); err != nil {
		logging.FromContext(ctx).Error().
			Str("component", "persist").
			Str("operation", "save").
			Err(err).
			Msg("failed to save project")
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	return nil
}

// Reset removes the stored project and returns the default state.
func (r *Repository) Reset(ctx context.Context) (*project.State, error) {
	r.saveMu.Lock()
	defer r.saveMu.Unlock()

	if err := r.store.RemoveItem(ctx, r.key); err != nil {
		return nil, fmt.Errorf("resetting project %q: %w", r.key, err)
	}
	return r.defaults(), nil
}
