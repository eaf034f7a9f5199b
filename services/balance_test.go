package services

import (
	"testing"

	"pagai-backend/models"
)

func pay(amount float64, deleted bool) models.Payment {
	return models.Payment{Amount: amount, Deleted: deleted}
}

func TestComputeBalance(t *testing.T) {
	debtor := models.Debtor{Total: 1000.00}
	payments := []models.Payment{
		pay(300.00, false),
		pay(250.50, false),
		pay(500.00, true), // soft-deleted, never counted
	}

	b := ComputeBalance(debtor, payments)
	if b.Paid != 550.50 {
		t.Errorf("paid = %v, want 550.50", b.Paid)
	}
	if b.Remaining != 449.50 {
		t.Errorf("remaining = %v, want 449.50", b.Remaining)
	}
	if b.ProgressPercent != 55 {
		t.Errorf("progress = %d, want 55", b.ProgressPercent)
	}
	if b.Settled {
		t.Error("settled = true, want false")
	}
}

func TestComputeBalanceNeverNegative(t *testing.T) {
	debtor := models.Debtor{Total: 100}
	b := ComputeBalance(debtor, []models.Payment{pay(150, false)})
	if b.Remaining != 0 {
		t.Errorf("remaining = %v, want 0 on overpayment", b.Remaining)
	}
	if !b.Settled {
		t.Error("overpaid debtor should be settled")
	}
	if b.ProgressPercent != 100 {
		t.Errorf("progress = %d, want capped at 100", b.ProgressPercent)
	}
}

func TestComputeBalanceZeroTotal(t *testing.T) {
	b := ComputeBalance(models.Debtor{Total: 0}, nil)
	if b.Remaining != 0 || !b.Settled || b.ProgressPercent != 100 {
		t.Errorf("zero-total debtor: got %+v, want settled at 100%%", b)
	}
}

func TestComputeBalanceEpsilon(t *testing.T) {
	tests := []struct {
		name      string
		total     float64
		paid      float64
		settled   bool
	}{
		{"exactly epsilon remaining", 100.00, 99.99, true},
		{"just over epsilon remaining", 100.00, 99.98, false},
		{"fully paid", 100.00, 100.00, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ComputeBalance(models.Debtor{Total: tt.total}, []models.Payment{pay(tt.paid, false)})
			if b.Settled != tt.settled {
				t.Errorf("settled = %v, want %v (remaining %v)", b.Settled, tt.settled, b.Remaining)
			}
			// settled must agree with the remaining the caller sees
			if got := b.Remaining <= Epsilon; got != b.Settled {
				t.Errorf("settled = %v contradicts remaining %v", b.Settled, b.Remaining)
			}
		})
	}
}

func TestSoftDeletedPaymentLeavesTotalAlone(t *testing.T) {
	debtor := models.Debtor{Total: 500}
	live := []models.Payment{pay(200, false)}
	before := ComputeBalance(debtor, live)

	// the same payment soft-deleted drops out of paid on recompute
	after := ComputeBalance(debtor, []models.Payment{pay(200, true)})

	if before.Paid != 200 || after.Paid != 0 {
		t.Errorf("paid before/after = %v/%v, want 200/0", before.Paid, after.Paid)
	}
	if debtor.Total != 500 {
		t.Errorf("total mutated to %v", debtor.Total)
	}
	if after.Remaining != 500 {
		t.Errorf("remaining = %v, want full total back", after.Remaining)
	}
}
