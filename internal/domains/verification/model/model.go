package model

import (
	moderationModel "parkspot/internal/domains/moderation/model"
	"parkspot/shared/model"
)

const (
	TableName  = "verifications"
	EntityName = "verification"

	FieldID     = "id"
	FieldUserID = "user_id"
	FieldStatus = "status"
)

// Verification is an identity document submission of a user.
type Verification struct {
	ID               string                       `db:"id"`
	UserID           string                       `db:"user_id"`
	DocumentType     moderationModel.DocumentType `db:"document_type"`
	DocumentNumber   string                       `db:"document_number"`
	FullName         string                       `db:"full_name"`
	DocumentPhotoURL *string                      `db:"document_photo_url"`
	SelfieURL        *string                      `db:"selfie_url"`
	Status           moderationModel.Status       `db:"status"`
	model.Metadata
}

func (v Verification) Submission(accountName string) moderationModel.VerificationSubmission {
	return moderationModel.VerificationSubmission{
		DocumentType:     v.DocumentType,
		DocumentNumber:   v.DocumentNumber,
		FullName:         v.FullName,
		AccountName:      accountName,
		DocumentPhotoURL: deref(v.DocumentPhotoURL),
		SelfieURL:        deref(v.SelfieURL),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
