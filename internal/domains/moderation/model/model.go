package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"parkspot/shared/constant"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

const (
	TableName  = "moderation_logs"
	EntityName = "moderation_log"

	FieldID         = "id"
	FieldEntityType = "entity_type"
	FieldEntityID   = "entity_id"
	FieldCreatedAt  = "created_at"
)

const (
	MinScore         = -100
	MaxScore         = 100
	RejectBelow      = -10
	ApproveFrom      = 30
	MaxApproveIssues = 1
)

var (
	ErrInvalidOverride = fmt.Errorf("override status must be %s or %s", StatusApproved, StatusRejected)
)

// Status is the moderation status shared by spot listings and identity verifications.
type Status string

const (
	StatusPendingVerification Status = "PENDING_VERIFICATION"
	StatusPendingReview       Status = "PENDING_REVIEW"
	StatusAutoApproved        Status = "AUTO_APPROVED"
	StatusAutoRejected        Status = "AUTO_REJECTED"
	StatusApproved            Status = "APPROVED"
	StatusRejected            Status = "REJECTED"
)

// Approved reports whether an entity with this status may be used by renters.
func (s Status) Approved() bool {
	return s == StatusApproved || s == StatusAutoApproved
}

// ApprovedStatuses are the statuses for which Approved reports true.
var ApprovedStatuses = []Status{StatusApproved, StatusAutoApproved}

type Decision string

const (
	DecisionAutoApproved   Decision = "AUTO_APPROVED"
	DecisionAutoRejected   Decision = "AUTO_REJECTED"
	DecisionAutoFlagged    Decision = "AUTO_FLAGGED"
	DecisionManualApproved Decision = "MANUAL_APPROVED"
	DecisionManualRejected Decision = "MANUAL_REJECTED"
)

type EntityType string

const (
	EntitySpot         EntityType = "SPOT"
	EntityVerification EntityType = "VERIFICATION"
)

type Result struct {
	Status   Status   `json:"status"`
	Decision Decision `json:"decision"`
	Score    int      `json:"score"`
	Notes    string   `json:"notes"`
	Issues   []string `json:"issues"`
}

// SpotSubmission carries the listing fields the scorer looks at. PricePerHour is in minor units.
type SpotSubmission struct {
	PricePerHour int64
	Description  string
	Rules        string
	Latitude     float64
	Longitude    float64
	Photos       int
}

const (
	IssueSpotPriceLow     = "price per hour is below 30.00"
	IssueSpotPriceHigh    = "price per hour is above 2000.00"
	IssueSpotDescription  = "description is shorter than 50 characters"
	IssueSpotRules        = "rules are shorter than 20 characters"
	IssueSpotCoordinates  = "coordinates missing/invalid"
	IssueSpotPhotos       = "no photos uploaded"
	minDisplayPrice       = 30
	maxDisplayPrice       = 2000
	minDescriptionLength  = 50
	minRulesLength        = 20
	coordinateEpsilon     = 0.0001
	descriptionStep       = 100
	descriptionStepPoints = 5
	descriptionMaxPoints  = 20
	manyPhotos            = 3
)

// ScoreSpot rates a listing submission. It has no side effects.
func ScoreSpot(sub SpotSubmission) Result {
	var (
		score  int
		issues []string
	)

	price := float64(sub.PricePerHour) / constant.MinorUnitsPer

	switch {
	case price < minDisplayPrice:
		issues = append(issues, IssueSpotPriceLow)
		score -= 30
	case price > maxDisplayPrice:
		issues = append(issues, IssueSpotPriceHigh)
		score -= 10
	default:
		score += 20
	}

	if length := utf8.RuneCountInString(sub.Description); length < minDescriptionLength {
		issues = append(issues, IssueSpotDescription)
		score -= 15
	} else {
		score += min(descriptionMaxPoints, length/descriptionStep*descriptionStepPoints)
	}

	if utf8.RuneCountInString(sub.Rules) < minRulesLength {
		issues = append(issues, IssueSpotRules)
		score -= 10
	} else {
		score += 10
	}

	if math.Abs(sub.Latitude) < coordinateEpsilon && math.Abs(sub.Longitude) < coordinateEpsilon {
		issues = append(issues, IssueSpotCoordinates)
		score -= 25
	}

	switch {
	case sub.Photos == 0:
		issues = append(issues, IssueSpotPhotos)
		score -= 25
	case sub.Photos >= manyPhotos:
		score += 15
	}

	return decide(score, issues)
}

type DocumentType string

const (
	DocumentPassport      DocumentType = "PASSPORT"
	DocumentIDCard        DocumentType = "ID_CARD"
	DocumentDriverLicense DocumentType = "DRIVER_LICENSE"
)

const minDocumentNumberChars = 6

func (d DocumentType) Valid() bool {
	switch d {
	case DocumentPassport, DocumentIDCard, DocumentDriverLicense:
		return true
	default:
		return false
	}
}

type VerificationSubmission struct {
	DocumentType     DocumentType
	DocumentNumber   string
	FullName         string
	AccountName      string
	DocumentPhotoURL string
	SelfieURL        string
}

const (
	IssueDocumentNumber = "document number is shorter than 6 characters"
	IssueDocumentPhoto  = "document photo missing"
	IssueSelfie         = "selfie missing"
	IssueNameMismatch   = "full name does not match the account name"
)

// ScoreVerification rates an identity verification submission with the same decision rule as ScoreSpot.
func ScoreVerification(sub VerificationSubmission) Result {
	var (
		score  int
		issues []string
	)

	if utf8.RuneCountInString(strings.TrimSpace(sub.DocumentNumber)) >= minDocumentNumberChars {
		score += 20
	} else {
		issues = append(issues, IssueDocumentNumber)
		score -= 30
	}

	if strings.TrimSpace(sub.DocumentPhotoURL) != constant.Empty {
		score += 20
	} else {
		issues = append(issues, IssueDocumentPhoto)
		score -= 30
	}

	if strings.TrimSpace(sub.SelfieURL) != constant.Empty {
		score += 15
	} else {
		issues = append(issues, IssueSelfie)
		score -= 15
	}

	if strings.EqualFold(strings.TrimSpace(sub.FullName), strings.TrimSpace(sub.AccountName)) {
		score += 15
	} else {
		issues = append(issues, IssueNameMismatch)
		score -= 10
	}

	if sub.DocumentType.Valid() {
		score += 10
	}

	return decide(score, issues)
}

func decide(score int, issues []string) Result {
	score = max(MinScore, min(MaxScore, score))
	if issues == nil {
		issues = []string{}
	}

	res := Result{Score: score, Issues: issues}

	switch {
	case len(issues) > 0 && score < RejectBelow:
		res.Status, res.Decision = StatusAutoRejected, DecisionAutoRejected
	case len(issues) <= MaxApproveIssues && score >= ApproveFrom:
		res.Status, res.Decision = StatusAutoApproved, DecisionAutoApproved
	default:
		res.Status, res.Decision = StatusPendingReview, DecisionAutoFlagged
	}

	res.Notes = fmt.Sprintf("auto-moderation score %d with %d issue(s)", score, len(issues))
	if len(issues) > 0 {
		res.Notes += ": " + strings.Join(issues, "; ")
	}

	return res
}

// OverrideDecision maps an administrator's target status onto its manual decision.
func OverrideDecision(target Status) (Decision, error) {
	switch target {
	case StatusApproved:
		return DecisionManualApproved, nil
	case StatusRejected:
		return DecisionManualRejected, nil
	default:
		return constant.Empty, ErrInvalidOverride
	}
}

type LogMetadata struct {
	Score  *int     `json:"score,omitempty"`
	Issues []string `json:"issues"`
}

// Log is an append-only audit row. It is never updated or deleted.
type Log struct {
	ID           string         `db:"id"`
	EntityType   EntityType     `db:"entity_type"`
	EntityID     string         `db:"entity_id"`
	Decision     Decision       `db:"decision"`
	StatusBefore Status         `db:"status_before"`
	StatusAfter  Status         `db:"status_after"`
	Auto         bool           `db:"auto"`
	ReviewerID   *string        `db:"reviewer_id"`
	Notes        string         `db:"notes"`
	Metadata     types.JSONText `db:"metadata"`
	CreatedAt    time.Time      `db:"created_at"`
}

// NewAutoLog records a scorer run.
func NewAutoLog(entity EntityType, entityID string, before Status, res Result, now time.Time) Log {
	score := res.Score

	return Log{
		ID:           uuid.NewString(),
		EntityType:   entity,
		EntityID:     entityID,
		Decision:     res.Decision,
		StatusBefore: before,
		StatusAfter:  res.Status,
		Auto:         true,
		Notes:        res.Notes,
		Metadata:     encodeMetadata(LogMetadata{Score: &score, Issues: res.Issues}),
		CreatedAt:    now,
	}
}

// NewManualLog records an administrator override.
func NewManualLog(entity EntityType, entityID string, before, after Status, decision Decision, reviewer, notes string, now time.Time) Log {
	return Log{
		ID:           uuid.NewString(),
		EntityType:   entity,
		EntityID:     entityID,
		Decision:     decision,
		StatusBefore: before,
		StatusAfter:  after,
		Auto:         false,
		ReviewerID:   &reviewer,
		Notes:        notes,
		Metadata:     encodeMetadata(LogMetadata{Issues: []string{}}),
		CreatedAt:    now,
	}
}

func (l Log) DecodeMetadata() (LogMetadata, error) {
	var meta LogMetadata
	if len(l.Metadata) == 0 {
		return meta, nil
	}

	if err := l.Metadata.Unmarshal(&meta); err != nil {
		return meta, fmt.Errorf("failed to decode moderation metadata: %w", err)
	}

	return meta, nil
}

func encodeMetadata(meta LogMetadata) types.JSONText {
	// LogMetadata only holds ints and strings, so Marshal cannot fail.
	raw, _ := json.Marshal(meta)

	return types.JSONText(raw)
}
