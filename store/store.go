// Package store defines the record store the ledger engine runs against.
// Reads are push-based: every watch delivers the full current snapshot of
// the collection and re-delivers it on every change. Firestore backs the
// production implementation; the in-memory one backs tests.
package store

import (
	"context"
	"errors"

	"pagai-backend/models"
)

// CancelFunc releases a watch. Safe to call more than once and at any time,
// including while a write from the same view is still in flight.
type CancelFunc func()

var (
	// ErrNotFound covers stale references: the record is missing or was
	// soft-deleted concurrently. Distinct from connectivity failures —
	// retrying will not help.
	ErrNotFound = errors.New("record not found")
	// ErrPermissionDenied means the acting identity does not own the record.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrUnavailable wraps connectivity-class failures; these are the only
	// retry-worthy errors.
	ErrUnavailable = errors.New("store unavailable")
)

type Store interface {
	// WatchDebtors streams snapshots of every debtor owned by ownerID,
	// including deleted and archived ones — visibility is the caller's
	// concern. The channel carries the latest snapshot (buffer of one,
	// stale values dropped) and is closed after cancellation.
	WatchDebtors(ctx context.Context, ownerID string) (<-chan []models.Debtor, CancelFunc, error)

	// WatchDebtor streams a single debtor record; nil when the record is
	// missing or owned by someone else.
	WatchDebtor(ctx context.Context, ownerID, debtorID string) (<-chan *models.Debtor, CancelFunc, error)

	// WatchPayments streams snapshots of one debtor's payments, newest
	// date first.
	WatchPayments(ctx context.Context, ownerID, debtorID string) (<-chan []models.Payment, CancelFunc, error)

	// WatchOwnerPayments streams every payment of the owner across all
	// debtors, so aggregate views need one subscription instead of one
	// per debtor.
	WatchOwnerPayments(ctx context.Context, ownerID string) (<-chan []models.Payment, CancelFunc, error)

	CreateDebtor(ctx context.Context, d *models.Debtor) (string, error)
	SetDebtorArchived(ctx context.Context, ownerID, debtorID string, archived bool, at int64) error
	SoftDeleteDebtor(ctx context.Context, ownerID, debtorID string, at int64) error
	CreatePayment(ctx context.Context, p *models.Payment) (string, error)
	SoftDeletePayment(ctx context.Context, ownerID, debtorID, paymentID string, at int64) error
}

// One-shot reads: take the first snapshot of a watch and release it.

func ReadDebtors(ctx context.Context, s Store, ownerID string) ([]models.Debtor, error) {
	ch, cancel, err := s.WatchDebtors(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return firstSnapshot(ctx, ch, cancel)
}

func ReadDebtor(ctx context.Context, s Store, ownerID, debtorID string) (*models.Debtor, error) {
	ch, cancel, err := s.WatchDebtor(ctx, ownerID, debtorID)
	if err != nil {
		return nil, err
	}
	return firstSnapshot(ctx, ch, cancel)
}

func ReadPayments(ctx context.Context, s Store, ownerID, debtorID string) ([]models.Payment, error) {
	ch, cancel, err := s.WatchPayments(ctx, ownerID, debtorID)
	if err != nil {
		return nil, err
	}
	return firstSnapshot(ctx, ch, cancel)
}

func ReadOwnerPayments(ctx context.Context, s Store, ownerID string) ([]models.Payment, error) {
	ch, cancel, err := s.WatchOwnerPayments(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return firstSnapshot(ctx, ch, cancel)
}

func firstSnapshot[T any](ctx context.Context, ch <-chan T, cancel CancelFunc) (T, error) {
	defer cancel()
	var zero T
	select {
	case snap, ok := <-ch:
		if !ok {
			return zero, ErrUnavailable
		}
		return snap, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// sendLatest delivers v on a 1-buffered snapshot channel, displacing any
// undelivered older snapshot. Single producer per channel.
func sendLatest[T any](ch chan T, v T) {
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
