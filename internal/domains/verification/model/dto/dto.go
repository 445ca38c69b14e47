package dto

import (
	moderationModel "parkspot/internal/domains/moderation/model"
	"parkspot/internal/domains/verification/model"
	gDto "parkspot/shared/dto"
	gModel "parkspot/shared/model"
	"parkspot/shared/timezone"

	"github.com/google/uuid"
)

type SubmitVerificationRequest struct {
	DocumentType     string  `json:"document_type"                validate:"required,max=32"`
	DocumentNumber   string  `json:"document_number"              validate:"required,max=64"`
	FullName         string  `json:"full_name"                    validate:"required,max=255"`
	DocumentPhotoURL *string `json:"document_photo_url,omitempty" validate:"omitempty,url"`
	SelfieURL        *string `json:"selfie_url,omitempty"         validate:"omitempty,url"`
}

// ToModel keeps unrecognised document types: the scorer penalises them instead of the validator.
func (r *SubmitVerificationRequest) ToModel(userID string) model.Verification {
	return model.Verification{
		ID:               uuid.NewString(),
		UserID:           userID,
		DocumentType:     moderationModel.DocumentType(r.DocumentType),
		DocumentNumber:   r.DocumentNumber,
		FullName:         r.FullName,
		DocumentPhotoURL: r.DocumentPhotoURL,
		SelfieURL:        r.SelfieURL,
		Status:           moderationModel.StatusPendingVerification,
		Metadata:         gModel.NewMetadata(userID, timezone.Now()),
	}
}

type VerificationResponse struct {
	ID               string                       `json:"id"`
	UserID           string                       `json:"user_id"`
	DocumentType     moderationModel.DocumentType `json:"document_type"`
	DocumentNumber   string                       `json:"document_number"`
	FullName         string                       `json:"full_name"`
	DocumentPhotoURL *string                      `json:"document_photo_url,omitempty"`
	SelfieURL        *string                      `json:"selfie_url,omitempty"`
	Status           moderationModel.Status       `json:"status"`
	gDto.Metadata
}

func (r *VerificationResponse) FromModel(m model.Verification) {
	r.ID = m.ID
	r.UserID = m.UserID
	r.DocumentType = m.DocumentType
	r.DocumentNumber = m.DocumentNumber
	r.FullName = m.FullName
	r.DocumentPhotoURL = m.DocumentPhotoURL
	r.SelfieURL = m.SelfieURL
	r.Status = m.Status
	r.Metadata.FromModel(m.Metadata)
}

type SubmitVerificationResponse struct {
	Verification VerificationResponse   `json:"verification"`
	Moderation   moderationModel.Result `json:"moderation"`
}

type GetVerificationsResponse struct {
	Verifications []VerificationResponse `json:"verifications"`
}

func (r *GetVerificationsResponse) FromModels(models []model.Verification) {
	r.Verifications = make([]VerificationResponse, len(models))
	for i, m := range models {
		r.Verifications[i].FromModel(m)
	}
}
