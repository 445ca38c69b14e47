package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"parkspot/config"
)

type Policy string

const (
	PolicyFlexible Policy = "FLEXIBLE"
	PolicyModerate Policy = "MODERATE"
	PolicyStrict   Policy = "STRICT"

	DefaultPolicy        = PolicyModerate
	DefaultDeadlineHours = 24

	fullRefund          = 100
	halfRefund          = 50
	noRefund            = 0
	commissionPercent   = 10
	percentOfPercentDiv = 100 * 100
)

// ParsePolicy accepts a policy name in any case.
func ParsePolicy(s string) (Policy, bool) {
	switch p := Policy(strings.ToUpper(strings.TrimSpace(s))); p {
	case PolicyFlexible, PolicyModerate, PolicyStrict:
		return p, true
	default:
		return "", false
	}
}

var ErrUnknownPolicy = errors.New("unknown cancellation policy")

// Validate backs the `parkspot` validator tag on request fields.
func (p Policy) Validate(_ *config.Config) error {
	if _, ok := ParsePolicy(string(p)); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPolicy, string(p))
	}

	return nil
}

type Input struct {
	TotalPrice    int64
	DepositAmount int64
	StartAt       time.Time
	CreatedAt     time.Time
	CancelledAt   time.Time
	Policy        Policy
	DeadlineHours int
}

type Result struct {
	RefundPercent    int     `json:"refund_percent"`
	RefundAmount     int64   `json:"refund_amount"`
	DepositRefund    int64   `json:"deposit_refund"`
	CommissionRefund int64   `json:"commission_refund"`
	Penalty          int64   `json:"penalty"`
	HoursUntilStart  float64 `json:"hours_until_start"`
	BeforeDeadline   bool    `json:"before_deadline"`
	Reason           string  `json:"reason"`
}

func percentOf(amount int64, pct int) int64 {
	return (amount*int64(pct) + fullRefund/2) / fullRefund
}

// Calculate is pure. The deposit is always returned in full; forfeiting it is a separate owner action.
func Calculate(in Input) Result {
	policy := in.Policy
	if policy == "" {
		policy = DefaultPolicy
	}

	hours := in.StartAt.Sub(in.CancelledAt).Hours()
	before := hours >= float64(in.DeadlineHours)

	var (
		pct     int
		penalty int64
		reason  string
	)

	switch {
	case policy == PolicyFlexible:
		pct = fullRefund
		reason = "Flexible policy: full refund at any time"
	case before:
		pct = fullRefund
		reason = fmt.Sprintf("%s policy: cancelled %.1fh before start, at or before the %dh deadline; full refund", label(policy), hours, in.DeadlineHours)
	case policy == PolicyStrict:
		pct = noRefund
		penalty = in.TotalPrice
		reason = fmt.Sprintf("Strict policy: cancelled %.1fh before start, after the %dh deadline; no refund", hours, in.DeadlineHours)
	default:
		pct = halfRefund
		penalty = percentOf(in.TotalPrice, halfRefund)
		reason = fmt.Sprintf("Moderate policy: cancelled %.1fh before start, after the %dh deadline; 50%% refund", hours, in.DeadlineHours)
	}

	return Result{
		RefundPercent:    pct,
		RefundAmount:     in.TotalPrice - penalty,
		DepositRefund:    in.DepositAmount,
		CommissionRefund: (in.TotalPrice*commissionPercent*int64(pct) + percentOfPercentDiv/2) / percentOfPercentDiv,
		Penalty:          penalty,
		HoursUntilStart:  hours,
		BeforeDeadline:   before,
		Reason:           reason,
	}
}

func label(p Policy) string {
	s := strings.ToLower(string(p))

	return strings.ToUpper(s[:1]) + s[1:]
}
