package store

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pagai-backend/models"
)

const (
	debtorsCollection  = "debtors"
	paymentsCollection = "payments"
)

// FirestoreStore is the production Store: snapshot listeners over the
// `debtors` collection, its `payments` subcollections and the `payments`
// collection group, transactional writes for the soft-delete paths.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) debtors() *firestore.CollectionRef {
	return s.client.Collection(debtorsCollection)
}

func (s *FirestoreStore) payments(debtorID string) *firestore.CollectionRef {
	return s.debtors().Doc(debtorID).Collection(paymentsCollection)
}

// ============================================================
// WATCHES
// ============================================================

func (s *FirestoreStore) WatchDebtors(ctx context.Context, ownerID string) (<-chan []models.Debtor, CancelFunc, error) {
	q := s.debtors().Where("ownerUid", "==", ownerID)
	return watchQuery(ctx, q, func(doc *firestore.DocumentSnapshot) (models.Debtor, bool) {
		var d models.Debtor
		if err := doc.DataTo(&d); err != nil {
			log.Printf("⚠️  Skipping malformed debtor %s: %v", doc.Ref.ID, err)
			return d, false
		}
		d.ID = doc.Ref.ID
		return d, true
	})
}

func (s *FirestoreStore) WatchDebtor(ctx context.Context, ownerID, debtorID string) (<-chan *models.Debtor, CancelFunc, error) {
	ctx, cancelCtx := context.WithCancel(ctx)
	iter := s.debtors().Doc(debtorID).Snapshots(ctx)
	out := make(chan *models.Debtor, 1)

	go func() {
		defer close(out)
		defer iter.Stop()
		for {
			snap, err := iter.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					log.Printf("⚠️  Debtor listener stopped: %v", err)
				}
				return
			}
			if !snap.Exists() {
				sendLatest(out, nil)
				continue
			}
			var d models.Debtor
			if err := snap.DataTo(&d); err != nil {
				log.Printf("⚠️  Skipping malformed debtor %s: %v", debtorID, err)
				continue
			}
			if d.OwnerID != ownerID {
				sendLatest(out, nil)
				continue
			}
			d.ID = snap.Ref.ID
			sendLatest(out, &d)
		}
	}()

	return out, CancelFunc(cancelCtx), nil
}

func (s *FirestoreStore) WatchPayments(ctx context.Context, ownerID, debtorID string) (<-chan []models.Payment, CancelFunc, error) {
	q := s.payments(debtorID).Where("ownerUid", "==", ownerID).OrderBy("date", firestore.Desc)
	return watchQuery(ctx, q, func(doc *firestore.DocumentSnapshot) (models.Payment, bool) {
		return decodePayment(doc)
	})
}

func (s *FirestoreStore) WatchOwnerPayments(ctx context.Context, ownerID string) (<-chan []models.Payment, CancelFunc, error) {
	q := s.client.CollectionGroup(paymentsCollection).Where("ownerUid", "==", ownerID)
	return watchQuery(ctx, q, func(doc *firestore.DocumentSnapshot) (models.Payment, bool) {
		return decodePayment(doc)
	})
}

func decodePayment(doc *firestore.DocumentSnapshot) (models.Payment, bool) {
	var p models.Payment
	if err := doc.DataTo(&p); err != nil {
		log.Printf("⚠️  Skipping malformed payment %s: %v", doc.Ref.ID, err)
		return p, false
	}
	p.ID = doc.Ref.ID
	if p.DebtorID == "" && doc.Ref.Parent.Parent != nil {
		p.DebtorID = doc.Ref.Parent.Parent.ID
	}
	return p, true
}

// watchQuery runs one snapshot listener and forwards decoded snapshots
// until the context is cancelled.
func watchQuery[T any](ctx context.Context, q firestore.Query, decode func(*firestore.DocumentSnapshot) (T, bool)) (<-chan []T, CancelFunc, error) {
	ctx, cancelCtx := context.WithCancel(ctx)
	iter := q.Snapshots(ctx)
	out := make(chan []T, 1)

	go func() {
		defer close(out)
		defer iter.Stop()
		for {
			snap, err := iter.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					log.Printf("⚠️  Snapshot listener stopped: %v", err)
				}
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				log.Printf("⚠️  Reading snapshot documents: %v", err)
				continue
			}
			items := make([]T, 0, len(docs))
			for _, doc := range docs {
				if item, ok := decode(doc); ok {
					items = append(items, item)
				}
			}
			sendLatest(out, items)
		}
	}()

	return out, CancelFunc(cancelCtx), nil
}

// ============================================================
// WRITES
// ============================================================

func (s *FirestoreStore) CreateDebtor(ctx context.Context, d *models.Debtor) (string, error) {
	ref, _, err := s.debtors().Add(ctx, d)
	if err != nil {
		return "", mapFirestoreErr(err)
	}
	d.ID = ref.ID
	return ref.ID, nil
}

func (s *FirestoreStore) SetDebtorArchived(ctx context.Context, ownerID, debtorID string, archived bool, at int64) error {
	ref := s.debtors().Doc(debtorID)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := s.guardDebtor(tx, ref, ownerID); err != nil {
			return err
		}
		var archivedAt interface{} = at
		if !archived {
			archivedAt = firestore.Delete
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "archived", Value: archived},
			{Path: "archivedAt", Value: archivedAt},
		})
	})
	return mapFirestoreErr(err)
}

func (s *FirestoreStore) SoftDeleteDebtor(ctx context.Context, ownerID, debtorID string, at int64) error {
	ref := s.debtors().Doc(debtorID)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := s.guardDebtor(tx, ref, ownerID); err != nil {
			return err
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "deleted", Value: true},
			{Path: "deletedAt", Value: at},
			{Path: "deletedBy", Value: ownerID},
		})
	})
	return mapFirestoreErr(err)
}

func (s *FirestoreStore) CreatePayment(ctx context.Context, p *models.Payment) (string, error) {
	ref := s.payments(p.DebtorID).NewDoc()
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := s.guardDebtor(tx, s.debtors().Doc(p.DebtorID), p.OwnerID); err != nil {
			return err
		}
		return tx.Create(ref, p)
	})
	if err != nil {
		return "", mapFirestoreErr(err)
	}
	p.ID = ref.ID
	return ref.ID, nil
}

func (s *FirestoreStore) SoftDeletePayment(ctx context.Context, ownerID, debtorID, paymentID string, at int64) error {
	ref := s.payments(debtorID).Doc(paymentID)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return err
		}
		var p models.Payment
		if err := snap.DataTo(&p); err != nil {
			return fmt.Errorf("decoding payment %s: %w", paymentID, err)
		}
		if p.OwnerID != ownerID {
			return ErrPermissionDenied
		}
		if p.Deleted {
			// already removed by a concurrent actor
			return ErrNotFound
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "deleted", Value: true},
			{Path: "deletedAt", Value: at},
			{Path: "deletedBy", Value: ownerID},
		})
	})
	return mapFirestoreErr(err)
}

// guardDebtor verifies existence and ownership inside a transaction.
func (s *FirestoreStore) guardDebtor(tx *firestore.Transaction, ref *firestore.DocumentRef, ownerID string) error {
	snap, err := tx.Get(ref)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return err
	}
	var d models.Debtor
	if err := snap.DataTo(&d); err != nil {
		return fmt.Errorf("decoding debtor %s: %w", ref.ID, err)
	}
	if d.OwnerID != ownerID {
		return ErrPermissionDenied
	}
	if d.Deleted {
		// soft-deleted concurrently; same stale reference as missing
		return ErrNotFound
	}
	return nil
}

// mapFirestoreErr folds gRPC status codes into the store's error taxonomy
// so callers can tell bad references from retry-worthy outages.
func mapFirestoreErr(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.NotFound:
		return ErrNotFound
	case codes.PermissionDenied, codes.Unauthenticated:
		return ErrPermissionDenied
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
