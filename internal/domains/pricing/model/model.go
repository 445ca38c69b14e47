package model

import (
	"math"
	"time"
)

const (
	DefaultCommissionPercent = 10
	DefaultDepositPercent    = 20
	DefaultDemandMultiplier  = 1.0

	// Demand multipliers are expected in [MinDemandMultiplier, MaxDemandMultiplier]. The bound is
	// documented for callers and not enforced here.
	MinDemandMultiplier = 0.5
	MaxDemandMultiplier = 2.0

	nightMultiplier   = 0.8
	peakMultiplier    = 1.3
	weekendMultiplier = 1.2

	percentBase       = 100
	roundingEpsilon   = 1e-9
	neutralMultiplier = 1.0
)

// Deposit describes the security deposit rules of a spot.
type Deposit struct {
	Required bool
	Amount   *int64
	Percent  *int
}

type Input struct {
	Hours        int
	PricePerHour int64
	StartAt      time.Time
	// CommissionPercent of zero falls back to DefaultCommissionPercent.
	CommissionPercent int
	// DemandMultiplier of zero falls back to DefaultDemandMultiplier.
	DemandMultiplier float64
	Deposit          Deposit
}

// Quote holds every amount in minor currency units.
type Quote struct {
	Hours            int     `json:"hours"`
	BasePrice        int64   `json:"base_price"`
	AdjustedPrice    int64   `json:"adjusted_price"`
	TotalPrice       int64   `json:"total_price"`
	CommissionAmount int64   `json:"commission_amount"`
	OwnerAmount      int64   `json:"owner_amount"`
	DepositAmount    int64   `json:"deposit_amount"`
	TimeMultiplier   float64 `json:"time_multiplier"`
	DayMultiplier    float64 `json:"day_multiplier"`
	DemandMultiplier float64 `json:"demand_multiplier"`
}

// TimeMultiplier prices night starts down and rush hour starts up, by UTC start hour.
func TimeMultiplier(start time.Time) float64 {
	switch h := start.UTC().Hour(); {
	case h >= 22 || h < 6:
		return nightMultiplier
	case (h >= 8 && h < 10) || (h >= 17 && h < 19):
		return peakMultiplier
	default:
		return neutralMultiplier
	}
}

func DayMultiplier(start time.Time) float64 {
	switch start.UTC().Weekday() {
	case time.Saturday, time.Sunday:
		return weekendMultiplier
	default:
		return neutralMultiplier
	}
}

// Round rounds half up. Amounts here are never negative.
func Round(v float64) int64 {
	return int64(math.Floor(v + 0.5 + roundingEpsilon))
}

// Percent returns round(amount * pct / 100) without going through floats.
func Percent(amount int64, pct int) int64 {
	return (amount*int64(pct) + percentBase/2) / percentBase
}

// Calculate is a pure function of in.
func Calculate(in Input) Quote {
	commission := in.CommissionPercent
	if commission == 0 {
		commission = DefaultCommissionPercent
	}

	demand := in.DemandMultiplier
	if demand == 0 {
		demand = DefaultDemandMultiplier
	}

	timeMul := TimeMultiplier(in.StartAt)
	dayMul := DayMultiplier(in.StartAt)

	base := int64(in.Hours) * in.PricePerHour
	adjusted := Round(float64(base) * timeMul * dayMul * demand)
	commissionAmount := Percent(adjusted, commission)

	return Quote{
		Hours:            in.Hours,
		BasePrice:        base,
		AdjustedPrice:    adjusted,
		TotalPrice:       adjusted,
		CommissionAmount: commissionAmount,
		OwnerAmount:      adjusted - commissionAmount,
		DepositAmount:    depositAmount(adjusted, in.Deposit),
		TimeMultiplier:   timeMul,
		DayMultiplier:    dayMul,
		DemandMultiplier: demand,
	}
}

func depositAmount(adjusted int64, d Deposit) int64 {
	switch {
	case !d.Required:
		return 0
	case d.Amount != nil:
		return *d.Amount
	case d.Percent != nil:
		return Percent(adjusted, *d.Percent)
	default:
		return Percent(adjusted, DefaultDepositPercent)
	}
}
