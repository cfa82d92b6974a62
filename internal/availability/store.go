package availability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/teemow/teamdates/internal/instrumentation"
	"github.com/teemow/teamdates/internal/logging"
	"github.com/teemow/teamdates/internal/storage"
)

// Store operation names used for logs, metrics and spans.
const (
	OpGetUser   = "get_user"
	OpSave      = "save"
	OpUpdate    = "update"
	OpSummary   = "summary"
	OpBestDates = "best_dates"
	OpUsers     = "users"
	OpTeammates = "teammates"
)

// Config configures a Store.
type Config struct {
	// Backend persists the document. Required.
	Backend storage.Backend

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Metrics may be nil.
	Metrics *instrumentation.Metrics
}

// Store is the availability repository. Every operation loads the whole
// document from the backend, and mutations write it back in full. All
// operations are serialized by one mutex, so goroutines sharing a Store never
// lose each other's writes. Separate processes sharing a backend are not
// coordinated: the last write wins.
type Store struct {
	mu      sync.Mutex
	backend storage.Backend
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

// NewStore creates a Store over cfg.Backend.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Backend == nil {
		return nil, errors.New("availability store requires a storage backend")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		backend: cfg.Backend,
		logger:  logging.WithBackend(logger, cfg.Backend.Name()),
		metrics: cfg.Metrics,
	}, nil
}

// Backend returns the underlying storage backend.
func (s *Store) Backend() storage.Backend {
	return s.backend
}

// UserAvailability returns the dates user has picked, in ascending order.
// Unreadable storage reads as an empty record.
func (s *Store) UserAvailability(ctx context.Context, user string) ([]string, error) {
	if err := ValidateUser(user); err != nil {
		return nil, err
	}
	record := s.read(ctx, OpGetUser)
	return record.DatesFor(user), nil
}

// SaveUserAvailability replaces user's selection with dates. An empty dates
// slice removes the user from the record.
func (s *Store) SaveUserAvailability(ctx context.Context, user string, dates []string) error {
	if err := ValidateUser(user); err != nil {
		return err
	}
	normalized, err := NormalizeDates(dates)
	if err != nil {
		return err
	}

	err = s.update(ctx, OpSave, func(r Record) (Record, error) {
		return r.Replace(user, normalized), nil
	})
	if err != nil {
		s.logger.Error("failed to save availability",
			logging.Operation(OpSave),
			logging.UserHash(user),
			logging.Err(err))
		return err
	}

	s.metrics.RecordSavedDates(ctx, len(normalized))
	s.logger.Info("availability saved",
		logging.Operation(OpSave),
		logging.UserHash(user),
		logging.Count(len(normalized)))
	return nil
}

// Update applies fn to the current record and persists the result. fn runs
// with the store lock held and must not call back into the Store. If fn
// returns an error nothing is written.
func (s *Store) Update(ctx context.Context, fn func(Record) (Record, error)) error {
	return s.update(ctx, OpUpdate, fn)
}

// Summary returns one entry per date with at least one user, sorted by count
// descending and then by date ascending.
func (s *Store) Summary(ctx context.Context) []SummaryEntry {
	return Summarize(s.read(ctx, OpSummary))
}

// SummaryRange is Summary restricted to dates within [from, to]. Empty
// bounds are open.
func (s *Store) SummaryRange(ctx context.Context, from, to string) ([]SummaryEntry, error) {
	for _, bound := range []string{from, to} {
		if bound == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, bound); err != nil {
			return nil, fmt.Errorf("%w %q: expected YYYY-MM-DD", ErrInvalidDate, bound)
		}
	}
	return FilterRange(Summarize(s.read(ctx, OpSummary)), from, to), nil
}

// BestDates returns the summary entries tied for the highest count.
func (s *Store) BestDates(ctx context.Context) []SummaryEntry {
	return BestDates(Summarize(s.read(ctx, OpBestDates)))
}

// AllUsers returns every participant, sorted case-insensitively.
func (s *Store) AllUsers(ctx context.Context) []string {
	return s.read(ctx, OpUsers).Users()
}

// Teammates returns every participant other than user, in AllUsers order.
func (s *Store) Teammates(ctx context.Context, user string) ([]string, error) {
	if err := ValidateUser(user); err != nil {
		return nil, err
	}
	all := s.read(ctx, OpTeammates).Users()
	others := make([]string, 0, len(all))
	for _, name := range all {
		if name != user {
			others = append(others, name)
		}
	}
	return others, nil
}

// Ping checks the backend when it supports health checks.
func (s *Store) Ping(ctx context.Context) error {
	if p, ok := s.backend.(storage.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close releases backend resources when the backend holds any.
func (s *Store) Close() error {
	if c, ok := s.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// read loads the record for a read-only operation. Any failure is logged and
// yields an empty record.
func (s *Store) read(ctx context.Context, op string) Record {
	ctx, finish := s.observe(ctx, op)

	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.load(ctx, op)
	if err != nil {
		s.logger.Warn("availability unreadable, using empty record",
			logging.Operation(op),
			logging.Err(err))
		finish(err)
		return make(Record)
	}
	finish(nil)
	return record
}

func (s *Store) update(ctx context.Context, op string, fn func(Record) (Record, error)) (err error) {
	ctx, finish := s.observe(ctx, op)
	defer func() { finish(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx, op)
	if err != nil {
		return fmt.Errorf("load availability: %w", err)
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	data, err := Encode(next)
	if err != nil {
		return fmt.Errorf("encode availability: %w", err)
	}
	if err := s.backend.Save(ctx, data); err != nil {
		return fmt.Errorf("save availability: %w", err)
	}
	return nil
}

// load returns an error only when the backend could not be read. A
// malformed document decodes as an empty record.
func (s *Store) load(ctx context.Context, op string) (Record, error) {
	data, err := s.backend.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !IsValidDocument(data) {
		s.logger.Warn("malformed availability document, treating as empty",
			logging.Operation(op))
	}
	return Decode(data), nil
}

func (s *Store) observe(ctx context.Context, op string) (context.Context, func(error)) {
	start := time.Now()
	backend := s.backend.Name()
	ctx, span := instrumentation.StartStoreSpan(ctx, backend, op)

	return ctx, func(err error) {
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
		} else {
			instrumentation.SetSpanSuccess(span)
		}
		span.End()

		s.metrics.RecordStoreOperation(ctx, backend, op, status, time.Since(start))
		s.logger.Debug("store operation",
			logging.Operation(op),
			logging.Status(status),
			slog.Duration(logging.KeyDuration, time.Since(start)))
	}
}
