package services

import (
	"context"
	"log"
	"sort"
	"sync"

	"pagai-backend/models"
	"pagai-backend/store"
)

// LedgerWatcher keeps a live view of one owner's dashboard: one
// subscription to the debtor collection plus one payment subscription per
// live debtor, tracked in a registry so they are released as debtors come
// and go and torn down as a set on Close. Every inbound snapshot triggers
// a full recompute from the latest value of each stream — derived state is
// never patched in place, and re-delivering a snapshot yields the same
// output. All recomputation happens on a single goroutine.
type LedgerWatcher struct {
	store   store.Store
	ownerID string

	ctx    context.Context
	cancel context.CancelFunc

	events chan watchEvent
	out    chan []models.DebtorResponse
	done   chan struct{}

	closeOnce sync.Once
}

type watchEvent struct {
	debtors  []models.Debtor // debtor-collection snapshot, nil for payment events
	debtorID string
	payments []models.Payment
	isDebtor bool
}

func NewLedgerWatcher(ctx context.Context, s store.Store, ownerID string) (*LedgerWatcher, error) {
	ctx, cancel := context.WithCancel(ctx)
	w := &LedgerWatcher{
		store:   s,
		ownerID: ownerID,
		ctx:     ctx,
		cancel:  cancel,
		events:  make(chan watchEvent),
		out:     make(chan []models.DebtorResponse, 1),
		done:    make(chan struct{}),
	}

	ch, cancelDebtors, err := s.WatchDebtors(ctx, ownerID)
	if err != nil {
		cancel()
		return nil, err
	}

	go w.forwardDebtors(ch)
	go w.run(cancelDebtors)
	return w, nil
}

// Snapshots carries the recomputed active-debtor view. The channel holds
// only the latest snapshot and is closed on teardown.
func (w *LedgerWatcher) Snapshots() <-chan []models.DebtorResponse {
	return w.out
}

// Close releases every subscription. Safe to call at any time, repeatedly;
// in-flight writes are unaffected, only the read side is released.
func (w *LedgerWatcher) Close() {
	w.closeOnce.Do(w.cancel)
	<-w.done
}

func (w *LedgerWatcher) forwardDebtors(ch <-chan []models.Debtor) {
	for {
		select {
		case snap, ok := <-ch:
			if !ok {
				return
			}
			select {
			case w.events <- watchEvent{debtors: snap, isDebtor: true}:
			case <-w.ctx.Done():
				return
			}
		case <-w.ctx.Done():
			return
		}
	}
}

func (w *LedgerWatcher) forwardPayments(debtorID string, ch <-chan []models.Payment) {
	for {
		select {
		case snap, ok := <-ch:
			if !ok {
				return
			}
			select {
			case w.events <- watchEvent{debtorID: debtorID, payments: snap}:
			case <-w.ctx.Done():
				return
			}
		case <-w.ctx.Done():
			return
		}
	}
}

func (w *LedgerWatcher) run(cancelDebtors store.CancelFunc) {
	defer close(w.done)

	var latestDebtors []models.Debtor
	paymentsByDebtor := make(map[string][]models.Payment)
	watches := make(map[string]store.CancelFunc)

	defer func() {
		cancelDebtors()
		for _, cancel := range watches {
			cancel()
		}
		close(w.out)
	}()

	for {
		select {
		case <-w.ctx.Done():
			return
		case ev := <-w.events:
			if ev.isDebtor {
				latestDebtors = ev.debtors
				w.reconcileWatches(latestDebtors, watches, paymentsByDebtor)
			} else if _, watched := watches[ev.debtorID]; watched {
				paymentsByDebtor[ev.debtorID] = ev.payments
			} else {
				continue // late delivery for an unsubscribed debtor
			}
			pushLatest(w.out, w.recompute(latestDebtors, paymentsByDebtor))
		}
	}
}

// reconcileWatches diffs the live debtor set against the registry:
// subscribe to newcomers, release watchers for debtors that left.
func (w *LedgerWatcher) reconcileWatches(debtors []models.Debtor, watches map[string]store.CancelFunc, paymentsByDebtor map[string][]models.Payment) {
	live := make(map[string]bool)
	for _, d := range LiveDebtors(debtors) {
		live[d.ID] = true
		if _, ok := watches[d.ID]; ok {
			continue
		}
		ch, cancel, err := w.store.WatchPayments(w.ctx, w.ownerID, d.ID)
		if err != nil {
			log.Printf("⚠️  Payment watch for debtor %s failed: %v", d.ID, err)
			continue
		}
		watches[d.ID] = cancel
		go w.forwardPayments(d.ID, ch)
	}

	for id, cancel := range watches {
		if !live[id] {
			cancel()
			delete(watches, id)
			delete(paymentsByDebtor, id)
		}
	}
}

func (w *LedgerWatcher) recompute(debtors []models.Debtor, paymentsByDebtor map[string][]models.Payment) []models.DebtorResponse {
	active := ActiveDebtors(debtors)
	sort.Slice(active, func(i, j int) bool { return active[i].CreatedAt > active[j].CreatedAt })

	out := make([]models.DebtorResponse, 0, len(active))
	for _, d := range active {
		out = append(out, BuildDebtorResponse(d, paymentsByDebtor[d.ID]))
	}
	return out
}

func pushLatest(ch chan []models.DebtorResponse, v []models.DebtorResponse) {
	for {
		select {
		case ch <- v:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
