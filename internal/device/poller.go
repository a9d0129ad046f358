package device

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/wardtrack/wardtrack-backend/internal/attendance/reconcile"
	"github.com/wardtrack/wardtrack-backend/pkg/config"
	"github.com/wardtrack/wardtrack-backend/pkg/logger"
)

// ErrSessionActive is returned when a poll is requested while a device
// session is already open. The terminal cannot survive two concurrent
// sockets, so the second caller fails fast instead of corrupting state.
var ErrSessionActive = errors.New("device session already active")

// PunchStore receives normalized punches. Submission must be idempotent on
// (employee identifier, timestamp); the repository enforces that with a
// unique key.
type PunchStore interface {
	SavePunches(ctx context.Context, punches []reconcile.RawPunch) (stored int, err error)
}

// Poller pulls raw attendance records from the terminal, normalizes their
// timestamps to the deployment time zone and submits them to the punch
// store with retry on transient failure.
type Poller struct {
	terminal Terminal
	store    PunchStore
	location *time.Location
	maxRetry time.Duration
	logger   *logger.Logger

	mu     sync.Mutex
	active bool
}

// NewPoller creates a poller. The device timezone from configuration is
// resolved once here so no downstream code ever does manual offset
// arithmetic on device timestamps.
func NewPoller(terminal Terminal, store PunchStore, cfg *config.DeviceConfig, log *logger.Logger) (*Poller, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid device timezone %q: %w", cfg.Timezone, err)
	}

	return &Poller{
		terminal: terminal,
		store:    store,
		location: loc,
		maxRetry: cfg.MaxSubmitRetry,
		logger:   log.WithComponent("device-poller"),
	}, nil
}

// Poll opens one device session, drains the attendance log and submits the
// normalized punches. Only one session may be open at a time; concurrent
// calls fail fast with ErrSessionActive.
func (p *Poller) Poll(ctx context.Context) (int, error) {
	if !p.acquire() {
		return 0, ErrSessionActive
	}
	defer p.release()

	if err := p.terminal.Connect(ctx); err != nil {
		return 0, fmt.Errorf("failed to connect to terminal: %w", err)
	}
	defer func() {
		if err := p.terminal.Disconnect(); err != nil {
			p.logger.Warn().Err(err).Msg("failed to disconnect from terminal")
		}
	}()

	records, err := p.terminal.Attendances(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read attendance log: %w", err)
	}

	punches := p.normalize(records)
	if len(punches) == 0 {
		return 0, nil
	}

	stored, err := p.submit(ctx, punches)
	if err != nil {
		return 0, err
	}

	p.logger.Info().
		Int("records", len(records)).
		Int("stored", stored).
		Int("duplicates", len(punches)-stored).
		Msg("device poll completed")

	return stored, nil
}

// Users reads the terminal's user list within a serialized session
func (p *Poller) Users(ctx context.Context) ([]User, error) {
	if !p.acquire() {
		return nil, ErrSessionActive
	}
	defer p.release()

	if err := p.terminal.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to terminal: %w", err)
	}
	defer func() {
		if err := p.terminal.Disconnect(); err != nil {
			p.logger.Warn().Err(err).Msg("failed to disconnect from terminal")
		}
	}()

	return p.terminal.Users(ctx)
}

func (p *Poller) acquire() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active {
		return false
	}
	p.active = true
	return true
}

func (p *Poller) release() {
	p.mu.Lock()
	p.active = false
	p.mu.Unlock()
}

// normalize rebinds each record's wall-clock reading to the configured
// zone. The terminal keeps local time with no zone information, so the
// clock fields are preserved and only the location is attached.
func (p *Poller) normalize(records []Record) []reconcile.RawPunch {
	punches := make([]reconcile.RawPunch, 0, len(records))
	for _, rec := range records {
		t := rec.Timestamp
		normalized := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, p.location)

		punches = append(punches, reconcile.RawPunch{
			EmployeeIdentifier: rec.UserID,
			Timestamp:          normalized,
			Kind:               rec.Kind(),
		})
	}
	return punches
}

// submit stores punches with exponential backoff on transient failure.
// The store deduplicates on (identifier, timestamp), so a retry after a
// half-applied submission cannot double-count.
func (p *Poller) submit(ctx context.Context, punches []reconcile.RawPunch) (int, error) {
	var stored int

	operation := func() error {
		n, err := p.store.SavePunches(ctx, punches)
		if err != nil {
			p.logger.Warn().Err(err).Msg("punch submission failed, retrying")
			return err
		}
		stored = n
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = p.maxRetry
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return 0, fmt.Errorf("failed to submit punches: %w", err)
	}

	return stored, nil
}

// Run polls on a fixed interval until the context is cancelled
func (p *Poller) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("device poller stopped")
			return
		case <-ticker.C:
			if _, err := p.Poll(ctx); err != nil && !errors.Is(err, ErrSessionActive) {
				p.logger.Error().Err(err).Msg("device poll failed")
			}
		}
	}
}
