package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

const (
	TableName  = "deposit_transactions"
	EntityName = "deposit_transaction"

	FieldID        = "id"
	FieldBookingID = "booking_id"
	FieldCreatedAt = "created_at"
)

const (
	MsgNotHeld        = "deposit not held"
	MsgCannotForfeit  = "deposit not held and cannot be forfeited"
	MsgInvalidPartial = "partial release amount must be positive and below the held balance"
)

type Status string

const (
	StatusNotRequired       Status = "NOT_REQUIRED"
	StatusPending           Status = "PENDING"
	StatusHeld              Status = "HELD"
	StatusPartiallyReleased Status = "PARTIALLY_RELEASED"
	StatusReleased          Status = "RELEASED"
	StatusForfeited         Status = "FORFEITED"
)

// InitialStatus is the deposit status of a freshly created booking.
func InitialStatus(amount int64) Status {
	if amount > 0 {
		return StatusPending
	}

	return StatusNotRequired
}

func (s Status) Terminal() bool {
	return s == StatusReleased || s == StatusForfeited
}

func (s Status) CanRelease() bool {
	return s == StatusHeld || s == StatusPartiallyReleased
}

// CanForfeit also accepts PENDING: a deposit that was never put on hold may be forfeited.
func (s Status) CanForfeit() bool {
	return s.CanRelease() || s == StatusPending
}

type TransactionType string

const (
	TransactionHold    TransactionType = "HOLD"
	TransactionRelease TransactionType = "RELEASE"
	TransactionForfeit TransactionType = "FORFEIT"
)

// rank orders entries sharing a timestamp so a HOLD always opens its epoch.
func (t TransactionType) rank() int {
	switch t {
	case TransactionHold:
		return 0
	case TransactionRelease:
		return 1
	default:
		return 2
	}
}

// Transaction is an immutable ledger row.
type Transaction struct {
	ID          string          `db:"id"`
	BookingID   string          `db:"booking_id"`
	Type        TransactionType `db:"type"`
	Amount      int64           `db:"amount"`
	Description *string         `db:"description"`
	ActorID     string          `db:"actor_id"`
	CreatedAt   time.Time       `db:"created_at"`
}

func NewTransaction(bookingID string, typ TransactionType, amount int64, description *string, actor string, now time.Time) Transaction {
	return Transaction{
		ID:          uuid.NewString(),
		BookingID:   bookingID,
		Type:        typ,
		Amount:      amount,
		Description: description,
		ActorID:     actor,
		CreatedAt:   now,
	}
}

type Ledger []Transaction

// Sorted returns a copy ordered by time, holds first on ties.
func (l Ledger) Sorted() Ledger {
	out := slices.Clone(l)

	slices.SortStableFunc(out, func(a, b Transaction) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}

		return a.Type.rank() - b.Type.rank()
	})

	return out
}

// Epoch returns the entries from the latest HOLD onwards. A ledger without a HOLD has no epoch.
func (l Ledger) Epoch() Ledger {
	sorted := l.Sorted()

	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].Type == TransactionHold {
			return sorted[i:]
		}
	}

	return nil
}

// Balance is what is still held in the current epoch.
func (l Ledger) Balance() int64 {
	var balance int64

	for _, tx := range l.Epoch() {
		switch tx.Type {
		case TransactionHold:
			balance += tx.Amount
		case TransactionRelease, TransactionForfeit:
			balance -= tx.Amount
		}
	}

	return max(balance, 0)
}

type Summary struct {
	Held      int64 `json:"held"`
	Released  int64 `json:"released"`
	Forfeited int64 `json:"forfeited"`
	Balance   int64 `json:"balance"`
}

// Summary totals the whole ledger; Balance is the open amount of the current epoch.
func (l Ledger) Summary() Summary {
	var s Summary

	for _, tx := range l {
		switch tx.Type {
		case TransactionHold:
			s.Held += tx.Amount
		case TransactionRelease:
			s.Released += tx.Amount
		case TransactionForfeit:
			s.Forfeited += tx.Amount
		}
	}

	s.Balance = l.Balance()

	return s
}

// ClampPenalty bounds a requested penalty to [0, min(deposit, balance)]. A nil request forfeits the whole balance.
func ClampPenalty(requested *int64, deposit, balance int64) int64 {
	ceiling := max(min(deposit, balance), 0)
	if requested == nil {
		return ceiling
	}

	return max(0, min(*requested, ceiling))
}
