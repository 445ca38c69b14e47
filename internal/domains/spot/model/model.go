package model

import (
	"errors"
	"fmt"

	"parkspot/config"
	moderationModel "parkspot/internal/domains/moderation/model"
	pricingModel "parkspot/internal/domains/pricing/model"
	refundModel "parkspot/internal/domains/refund/model"
	"parkspot/shared/model"
)

const (
	TableName  = "spots"
	EntityName = "spot"

	FieldID         = "id"
	FieldOwnerID    = "owner_id"
	FieldStatus     = "status"
	FieldAccessType = "access_type"
)

const (
	PhotoTableName  = "spot_photos"
	PhotoEntityName = "spot_photo"

	PhotoFieldID     = "id"
	PhotoFieldSpotID = "spot_id"
)

// Cache prefixes of the spot read model. Every writer of a spot row clears them.
const (
	CacheGetSpot    = "spot:get"
	CacheGetAllSpot = "spot:gets"
	CacheCountSpot  = "spot:count"
)

var ErrUnknownAccessType = errors.New("unknown access type")

type AccessType string

const (
	AccessPrivateGate AccessType = "PRIVATE_GATE"
	AccessStreet      AccessType = "STREET"
	AccessGarage      AccessType = "GARAGE"
	AccessYard        AccessType = "YARD"
	AccessOther       AccessType = "OTHER"
)

func (a AccessType) Validate(_ *config.Config) error {
	switch a {
	case AccessPrivateGate, AccessStreet, AccessGarage, AccessYard, AccessOther:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAccessType, string(a))
	}
}

type Spot struct {
	ID                        string                 `db:"id"`
	OwnerID                   string                 `db:"owner_id"`
	Title                     string                 `db:"title"`
	Description               string                 `db:"description"`
	Rules                     string                 `db:"rules"`
	PricePerHour              int64                  `db:"price_per_hour"`
	LengthCM                  int                    `db:"length_cm"`
	WidthCM                   int                    `db:"width_cm"`
	HeightCM                  *int                   `db:"height_cm"`
	Covered                   bool                   `db:"covered"`
	Guarded                   bool                   `db:"guarded"`
	Camera                    bool                   `db:"camera"`
	EVCharging                bool                   `db:"ev_charging"`
	Accessible                bool                   `db:"accessible"`
	AccessType                AccessType             `db:"access_type"`
	Latitude                  float64                `db:"latitude"`
	Longitude                 float64                `db:"longitude"`
	Address                   string                 `db:"address"`
	Status                    moderationModel.Status `db:"status"`
	CancellationPolicy        *refundModel.Policy    `db:"cancellation_policy"`
	CancellationDeadlineHours *int                   `db:"cancellation_deadline_hours"`
	DepositRequired           bool                   `db:"deposit_required"`
	DepositAmount             *int64                 `db:"deposit_amount"`
	DepositPercent            *int                   `db:"deposit_percent"`
	model.Metadata
}

// Bookable reports whether renters may book the spot.
func (s Spot) Bookable() bool {
	return s.Status.Approved()
}

// Policy returns the cancellation policy and deadline, falling back to the given defaults when unset.
func (s Spot) Policy(fallback refundModel.Policy, fallbackHours int) (refundModel.Policy, int) {
	policy, hours := fallback, fallbackHours

	if s.CancellationPolicy != nil && *s.CancellationPolicy != "" {
		policy = *s.CancellationPolicy
	}

	if s.CancellationDeadlineHours != nil {
		hours = *s.CancellationDeadlineHours
	}

	return policy, hours
}

func (s Spot) Deposit() pricingModel.Deposit {
	return pricingModel.Deposit{
		Required: s.DepositRequired,
		Amount:   s.DepositAmount,
		Percent:  s.DepositPercent,
	}
}

func (s Spot) Submission(photos int) moderationModel.SpotSubmission {
	return moderationModel.SpotSubmission{
		PricePerHour: s.PricePerHour,
		Description:  s.Description,
		Rules:        s.Rules,
		Latitude:     s.Latitude,
		Longitude:    s.Longitude,
		Photos:       photos,
	}
}

type Photo struct {
	ID     string `db:"id"`
	SpotID string `db:"spot_id"`
	URL    string `db:"url"`
	model.Metadata
}
