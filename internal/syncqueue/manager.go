package syncqueue

import (
	"context"
	"sync"
	"time"

	"pos-terminal/internal/model"
	"pos-terminal/internal/storage"

	"github.com/rs/zerolog"
)

// OrderSyncAPI is the slice of the backend the drain loop needs. SyncOrder
// must be idempotent on the payload's offline UUID.
type OrderSyncAPI interface {
	SyncOrder(ctx context.Context, payload *model.OrderPayload) (*model.OrderAck, error)
}

// OnlineChecker reports composed system connectivity.
type OnlineChecker interface {
	Online() bool
}

// Manager drains the offline queue whenever the system is online. isSyncing
// is the sole lock in the system: the automatic trigger and the operator's
// manual retry both funnel through it, so a drain can never run twice
// concurrently.
type Manager struct {
	api    OrderSyncAPI
	queue  storage.OrderQueue
	online OnlineChecker
	logger zerolog.Logger

	mu           sync.Mutex
	isSyncing    bool
	pendingCount int
}

// NewManager creates a sync manager over the given queue and backend.
func NewManager(api OrderSyncAPI, queue storage.OrderQueue, online OnlineChecker, logger zerolog.Logger) *Manager {
	return &Manager{
		api:    api,
		queue:  queue,
		online: online,
		logger: logger.With().Str("component", "sync-manager").Logger(),
	}
}

// Status is the operator-facing sync state.
type Status struct {
	Online       bool `json:"online"`
	PendingCount int  `json:"pendingCount"`
	Syncing      bool `json:"syncing"`
}

// Status returns the current sync state for the "Offline Mode (N pending)"
// indicator.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{
		Online:       m.online.Online(),
		PendingCount: m.pendingCount,
		Syncing:      m.isSyncing,
	}
}

// Run refreshes the pending count and checks the drain condition on their
// respective intervals until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, countRefresh, drainPoll time.Duration) {
	m.refreshCount(ctx)

	countTicker := time.NewTicker(countRefresh)
	defer countTicker.Stop()
	drainTicker := time.NewTicker(drainPoll)
	defer drainTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-countTicker.C:
			m.refreshCount(ctx)
		case <-drainTicker.C:
			if m.online.Online() && m.pending() > 0 {
				m.Drain(ctx)
			}
		}
	}
}

// TriggerRetry requests an immediate drain without waiting for the next
// poll. A drain already in progress makes this a no-op.
func (m *Manager) TriggerRetry(ctx context.Context) {
	go m.Drain(ctx)
}

// Drain snapshots the queue once and submits entries strictly in enqueue
// order, one at a time. An unreachable backend stops the loop immediately:
// skipping ahead would both reorder delivery and hammer a host that is
// known down. A definitive rejection is moved to the rejected log and the
// loop continues, so one poisoned order cannot dam the queue forever.
func (m *Manager) Drain(ctx context.Context) {
	if !m.begin() {
		return
	}
	defer m.end()

	entries, err := m.queue.GetAll(ctx)
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to read queue for drain")
		return
	}

	if len(entries) == 0 {
		return
	}

	m.logger.Info().Int("pending", len(entries)).Msg("starting queue drain")

	for _, entry := range entries {
		ack, err := m.api.SyncOrder(ctx, &entry.Payload)
		if err != nil {
			if model.IsRejection(err) {
				m.logger.Warn().
					Err(err).
					Str("offline_uuid", entry.OfflineUUID).
					Msg("backend rejected queued order, moving to rejected log")
				if rejErr := m.queue.Reject(ctx, entry, err.Error()); rejErr != nil {
					m.logger.Error().Err(rejErr).
						Str("offline_uuid", entry.OfflineUUID).
						Msg("failed to record rejection, stopping drain")
					return
				}
				m.decrement()
				continue
			}

			m.logger.Warn().
				Err(err).
				Str("offline_uuid", entry.OfflineUUID).
				Msg("backend unreachable, stopping drain")
			return
		}

		if err := m.queue.Remove(ctx, entry.OfflineUUID); err != nil {
			m.logger.Error().Err(err).
				Str("offline_uuid", entry.OfflineUUID).
				Msg("failed to remove synced entry, stopping drain")
			return
		}
		m.decrement()

		m.logger.Info().
			Str("offline_uuid", entry.OfflineUUID).
			Str("order_number", ack.OrderNumber).
			Msg("queued order synced")
	}
}

// begin claims the drain critical section. Returns false if a drain is
// already running.
func (m *Manager) begin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.isSyncing {
		return false
	}
	m.isSyncing = true
	return true
}

func (m *Manager) end() {
	m.mu.Lock()
	m.isSyncing = false
	m.mu.Unlock()
}

func (m *Manager) pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pendingCount
}

func (m *Manager) decrement() {
	m.mu.Lock()
	if m.pendingCount > 0 {
		m.pendingCount--
	}
	m.mu.Unlock()
}

// refreshCount re-reads the durable queue depth so the indicator never
// shows a stale count after a restart.
func (m *Manager) refreshCount(ctx context.Context) {
	count, err := m.queue.Count(ctx)
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to refresh pending count")
		return
	}

	m.mu.Lock()
	m.pendingCount = count
	m.mu.Unlock()
}
