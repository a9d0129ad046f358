package device

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardtrack/wardtrack-backend/internal/attendance/reconcile"
	"github.com/wardtrack/wardtrack-backend/pkg/config"
	"github.com/wardtrack/wardtrack-backend/pkg/logger"
)

type fakeTerminal struct {
	mu        sync.Mutex
	connected bool
	records   []Record
	users     []User
	connectFn func() error
	hold      chan struct{} // when set, Attendances blocks until closed
}

func (f *fakeTerminal) Connect(ctx context.Context) error {
	if f.connectFn != nil {
		if err := f.connectFn(); err != nil {
			return err
		}
	}
	f.mu.Lock()
	f.connected = true
	f.mu.Unlock()
	return nil
}

func (f *fakeTerminal) Disconnect() error {
	f.mu.Lock()
	f.connected = false
	f.mu.Unlock()
	return nil
}

func (f *fakeTerminal) Users(ctx context.Context) ([]User, error) {
	return f.users, nil
}

func (f *fakeTerminal) Attendances(ctx context.Context) ([]Record, error) {
	if f.hold != nil {
		<-f.hold
	}
	return f.records, nil
}

type fakeStore struct {
	mu       sync.Mutex
	punches  []reconcile.RawPunch
	seen     map[string]bool
	failures int
}

func newFakeStore() *fakeStore {
	return &fakeStore{seen: make(map[string]bool)}
}

func (s *fakeStore) SavePunches(ctx context.Context, punches []reconcile.RawPunch) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failures > 0 {
		s.failures--
		return 0, errors.New("transient store failure")
	}

	stored := 0
	for _, p := range punches {
		key := p.EmployeeIdentifier + "|" + p.Timestamp.Format(time.RFC3339)
		if s.seen[key] {
			continue
		}
		s.seen[key] = true
		s.punches = append(s.punches, p)
		stored++
	}
	return stored, nil
}

func testDeviceConfig() *config.DeviceConfig {
	return &config.DeviceConfig{
		Host:           "127.0.0.1",
		Port:           4370,
		Timezone:       "Asia/Baghdad",
		PollInterval:   time.Minute,
		MaxSubmitRetry: 2 * time.Second,
	}
}

func TestPoller_Poll_NormalizesAndStores(t *testing.T) {
	deviceClock := time.Date(2024, 1, 1, 9, 5, 30, 0, time.UTC) // zone on the reading is meaningless
	terminal := &fakeTerminal{
		records: []Record{
			{UserID: "101", Timestamp: deviceClock, Status: statusCheckIn},
			{UserID: "101", Timestamp: deviceClock.Add(8 * time.Hour), Status: statusCheckOut},
		},
	}
	store := newFakeStore()

	p, err := NewPoller(terminal, store, testDeviceConfig(), logger.Nop())
	require.NoError(t, err)

	stored, err := p.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stored)

	require.Len(t, store.punches, 2)
	first := store.punches[0]
	assert.Equal(t, "101", first.EmployeeIdentifier)
	assert.Equal(t, reconcile.PunchCheckIn, first.Kind)

	// Wall-clock fields survive, only the zone is rebound
	assert.Equal(t, 9, first.Timestamp.Hour())
	assert.Equal(t, 5, first.Timestamp.Minute())
	assert.Equal(t, "Asia/Baghdad", first.Timestamp.Location().String())

	assert.Equal(t, reconcile.PunchCheckOut, store.punches[1].Kind)
}

func TestPoller_Poll_SecondSessionFailsFast(t *testing.T) {
	hold := make(chan struct{})
	terminal := &fakeTerminal{hold: hold}
	store := newFakeStore()

	p, err := NewPoller(terminal, store, testDeviceConfig(), logger.Nop())
	require.NoError(t, err)

	firstDone := make(chan error, 1)
	go func() {
		_, err := p.Poll(context.Background())
		firstDone <- err
	}()

	// Wait for the first session to be inside the device call
	require.Eventually(t, func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.active
	}, time.Second, 5*time.Millisecond)

	_, err = p.Poll(context.Background())
	assert.ErrorIs(t, err, ErrSessionActive)

	close(hold)
	require.NoError(t, <-firstDone)
}

func TestPoller_Poll_RetriesTransientFailure(t *testing.T) {
	terminal := &fakeTerminal{
		records: []Record{
			{UserID: "101", Timestamp: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), Status: statusCheckIn},
		},
	}
	store := newFakeStore()
	store.failures = 2

	p, err := NewPoller(terminal, store, testDeviceConfig(), logger.Nop())
	require.NoError(t, err)

	stored, err := p.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stored)
	assert.Len(t, store.punches, 1)
}

func TestPoller_Poll_DuplicateSubmissionDoesNotDoubleCount(t *testing.T) {
	terminal := &fakeTerminal{
		records: []Record{
			{UserID: "101", Timestamp: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), Status: statusCheckIn},
		},
	}
	store := newFakeStore()

	p, err := NewPoller(terminal, store, testDeviceConfig(), logger.Nop())
	require.NoError(t, err)

	stored, err := p.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stored)

	// Same device log drained again: everything is a duplicate
	stored, err = p.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stored)
	assert.Len(t, store.punches, 1)
}

func TestPoller_InvalidTimezoneRejected(t *testing.T) {
	cfg := testDeviceConfig()
	cfg.Timezone = "Mars/Olympus"

	_, err := NewPoller(&fakeTerminal{}, newFakeStore(), cfg, logger.Nop())
	assert.Error(t, err)
}

func TestRecord_KindMapping(t *testing.T) {
	tests := []struct {
		status int
		want   reconcile.PunchKind
	}{
		{statusCheckIn, reconcile.PunchCheckIn},
		{statusCheckOut, reconcile.PunchCheckOut},
		{statusBreakOut, reconcile.PunchBreakOut},
		{statusBreakIn, reconcile.PunchBreakIn},
		{statusOvertimeIn, reconcile.PunchOvertimeIn},
		{statusOvertimeOut, reconcile.PunchOvertimeOut},
		{99, reconcile.PunchCheckIn},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Record{Status: tt.status}.Kind())
	}
}
