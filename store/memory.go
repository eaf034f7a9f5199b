package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"pagai-backend/models"
)

// MemoryStore is an in-process Store with the same snapshot semantics as
// the Firestore one. It backs the engine and handler tests.
type MemoryStore struct {
	mu       sync.Mutex
	debtors  map[string]models.Debtor
	payments map[string]map[string]models.Payment // debtorID -> paymentID -> payment
	subs     map[int]*memorySub
	nextSub  int
}

type memorySub struct {
	push    func() // invoked with mu held after every mutation
	release func() // closes the channel; invoked once
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		debtors:  make(map[string]models.Debtor),
		payments: make(map[string]map[string]models.Payment),
		subs:     make(map[int]*memorySub),
	}
}

// NumSubscribers reports live watches, so tests can assert that tearing
// down a view released everything.
func (m *MemoryStore) NumSubscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

// ============================================================
// WATCHES
// ============================================================

func (m *MemoryStore) WatchDebtors(ctx context.Context, ownerID string) (<-chan []models.Debtor, CancelFunc, error) {
	out := make(chan []models.Debtor, 1)
	cancel := subscribe(m, ctx, out, func() {
		sendLatest(out, m.snapshotDebtors(ownerID))
	})
	return out, cancel, nil
}

func (m *MemoryStore) WatchDebtor(ctx context.Context, ownerID, debtorID string) (<-chan *models.Debtor, CancelFunc, error) {
	out := make(chan *models.Debtor, 1)
	cancel := subscribe(m, ctx, out, func() {
		d, ok := m.debtors[debtorID]
		if !ok || d.OwnerID != ownerID {
			sendLatest(out, nil)
			return
		}
		copied := d
		sendLatest(out, &copied)
	})
	return out, cancel, nil
}

func (m *MemoryStore) WatchPayments(ctx context.Context, ownerID, debtorID string) (<-chan []models.Payment, CancelFunc, error) {
	out := make(chan []models.Payment, 1)
	cancel := subscribe(m, ctx, out, func() {
		var snap []models.Payment
		for _, p := range m.payments[debtorID] {
			if p.OwnerID == ownerID {
				snap = append(snap, p)
			}
		}
		sortPaymentsByDateDesc(snap)
		sendLatest(out, snap)
	})
	return out, cancel, nil
}

func (m *MemoryStore) WatchOwnerPayments(ctx context.Context, ownerID string) (<-chan []models.Payment, CancelFunc, error) {
	out := make(chan []models.Payment, 1)
	cancel := subscribe(m, ctx, out, func() {
		var snap []models.Payment
		for _, byID := range m.payments {
			for _, p := range byID {
				if p.OwnerID == ownerID {
					snap = append(snap, p)
				}
			}
		}
		sortPaymentsByDateDesc(snap)
		sendLatest(out, snap)
	})
	return out, cancel, nil
}

// subscribe registers a push callback, delivers the initial snapshot and
// returns an idempotent cancel.
func subscribe[T any](m *MemoryStore, ctx context.Context, out chan T, push func()) CancelFunc {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	var once sync.Once
	m.subs[id] = &memorySub{
		push:    push,
		release: func() { once.Do(func() { close(out) }) },
	}
	push()
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		if sub, ok := m.subs[id]; ok {
			delete(m.subs, id)
			sub.release()
		}
		m.mu.Unlock()
	}
	context.AfterFunc(ctx, cancel)
	return cancel
}

func (m *MemoryStore) publish() {
	for _, sub := range m.subs {
		sub.push()
	}
}

func (m *MemoryStore) snapshotDebtors(ownerID string) []models.Debtor {
	var snap []models.Debtor
	for _, d := range m.debtors {
		if d.OwnerID == ownerID {
			snap = append(snap, d)
		}
	}
	sort.Slice(snap, func(i, j int) bool { return snap[i].CreatedAt > snap[j].CreatedAt })
	return snap
}

func sortPaymentsByDateDesc(ps []models.Payment) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].Date > ps[j].Date })
}

// ============================================================
// WRITES
// ============================================================

func (m *MemoryStore) CreateDebtor(ctx context.Context, d *models.Debtor) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = uuid.NewString()
	m.debtors[d.ID] = *d
	m.publish()
	return d.ID, nil
}

func (m *MemoryStore) SetDebtorArchived(ctx context.Context, ownerID, debtorID string, archived bool, at int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, err := m.guardDebtor(ownerID, debtorID)
	if err != nil {
		return err
	}
	d.Archived = archived
	d.ArchivedAt = 0
	if archived {
		d.ArchivedAt = at
	}
	m.debtors[debtorID] = d
	m.publish()
	return nil
}

func (m *MemoryStore) SoftDeleteDebtor(ctx context.Context, ownerID, debtorID string, at int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, err := m.guardDebtor(ownerID, debtorID)
	if err != nil {
		return err
	}
	d.Deleted = true
	d.DeletedAt = at
	d.DeletedBy = ownerID
	m.debtors[debtorID] = d
	m.publish()
	return nil
}

func (m *MemoryStore) CreatePayment(ctx context.Context, p *models.Payment) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.guardDebtor(p.OwnerID, p.DebtorID); err != nil {
		return "", err
	}
	p.ID = uuid.NewString()
	if m.payments[p.DebtorID] == nil {
		m.payments[p.DebtorID] = make(map[string]models.Payment)
	}
	m.payments[p.DebtorID][p.ID] = *p
	m.publish()
	return p.ID, nil
}

func (m *MemoryStore) SoftDeletePayment(ctx context.Context, ownerID, debtorID, paymentID string, at int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[debtorID][paymentID]
	if !ok {
		return ErrNotFound
	}
	if p.OwnerID != ownerID {
		return ErrPermissionDenied
	}
	if p.Deleted {
		return ErrNotFound
	}
	p.Deleted = true
	p.DeletedAt = at
	p.DeletedBy = ownerID
	m.payments[debtorID][paymentID] = p
	m.publish()
	return nil
}

func (m *MemoryStore) guardDebtor(ownerID, debtorID string) (models.Debtor, error) {
	d, ok := m.debtors[debtorID]
	if !ok {
		return d, ErrNotFound
	}
	if d.OwnerID != ownerID {
		return d, ErrPermissionDenied
	}
	if d.Deleted {
		// soft-deleted concurrently; same stale reference as missing
		return d, ErrNotFound
	}
	return d, nil
}

var _ Store = (*MemoryStore)(nil)
