package dto

import (
	moderationModel "parkspot/internal/domains/moderation/model"
	refundModel "parkspot/internal/domains/refund/model"
	"parkspot/internal/domains/spot/model"
	"parkspot/shared"
	gDto "parkspot/shared/dto"
	gModel "parkspot/shared/model"
	"parkspot/shared/timezone"

	"github.com/google/uuid"
)

type CreateSpotRequest struct {
	Title                     string              `json:"title"                                 validate:"required,min=3,max=120"`
	Description               string              `json:"description"                           validate:"omitempty,max=5000"`
	Rules                     string              `json:"rules"                                 validate:"omitempty,max=2000"`
	PricePerHour              int64               `json:"price_per_hour"                        validate:"required,gt=0"`
	LengthCM                  int                 `json:"length_cm"                             validate:"required,gt=0"`
	WidthCM                   int                 `json:"width_cm"                              validate:"required,gt=0"`
	HeightCM                  *int                `json:"height_cm,omitempty"                   validate:"omitempty,gt=0"`
	Covered                   bool                `json:"covered"`
	Guarded                   bool                `json:"guarded"`
	Camera                    bool                `json:"camera"`
	EVCharging                bool                `json:"ev_charging"`
	Accessible                bool                `json:"accessible"`
	AccessType                model.AccessType    `json:"access_type"                           validate:"required,parkspot"`
	Latitude                  float64             `json:"latitude"                              validate:"latitude"`
	Longitude                 float64             `json:"longitude"                             validate:"longitude"`
	Address                   string              `json:"address"                               validate:"omitempty,max=255"`
	CancellationPolicy        *refundModel.Policy `json:"cancellation_policy,omitempty"         validate:"omitempty,parkspot"`
	CancellationDeadlineHours *int                `json:"cancellation_deadline_hours,omitempty" validate:"omitempty,gte=0,lte=720"`
	DepositRequired           bool                `json:"deposit_required"`
	DepositAmount             *int64              `json:"deposit_amount,omitempty"              validate:"omitempty,gte=0"`
	DepositPercent            *int                `json:"deposit_percent,omitempty"             validate:"omitempty,gte=0,lte=100"`
	Photos                    []string            `json:"photos,omitempty"                      validate:"omitempty,max=10,dive,url"`
}

// ToModel builds a spot awaiting its first moderation run.
func (c *CreateSpotRequest) ToModel(owner string) model.Spot {
	return model.Spot{
		ID:                        uuid.NewString(),
		OwnerID:                   owner,
		Title:                     c.Title,
		Description:               c.Description,
		Rules:                     c.Rules,
		PricePerHour:              c.PricePerHour,
		LengthCM:                  c.LengthCM,
		WidthCM:                   c.WidthCM,
		HeightCM:                  c.HeightCM,
		Covered:                   c.Covered,
		Guarded:                   c.Guarded,
		Camera:                    c.Camera,
		EVCharging:                c.EVCharging,
		Accessible:                c.Accessible,
		AccessType:                c.AccessType,
		Latitude:                  c.Latitude,
		Longitude:                 c.Longitude,
		Address:                   c.Address,
		Status:                    moderationModel.StatusPendingVerification,
		CancellationPolicy:        c.CancellationPolicy,
		CancellationDeadlineHours: c.CancellationDeadlineHours,
		DepositRequired:           c.DepositRequired,
		DepositAmount:             c.DepositAmount,
		DepositPercent:            c.DepositPercent,
		Metadata:                  gModel.NewMetadata(owner, timezone.Now()),
	}
}

// UpdateSpotRequest has no status field; the owner cannot set the moderation status.
type UpdateSpotRequest struct {
	Title                     string              `db:"title"                       json:"title"                       validate:"omitempty,min=3,max=120"`
	Description               string              `db:"description"                 json:"description"                 validate:"omitempty,max=5000"`
	Rules                     string              `db:"rules"                       json:"rules"                       validate:"omitempty,max=2000"`
	PricePerHour              int64               `db:"price_per_hour"              json:"price_per_hour"              validate:"omitempty,gt=0"`
	HeightCM                  *int                `db:"height_cm"                   json:"height_cm"                   validate:"omitempty,gt=0"`
	Covered                   *bool               `db:"covered"                     json:"covered"`
	Guarded                   *bool               `db:"guarded"                     json:"guarded"`
	Camera                    *bool               `db:"camera"                      json:"camera"`
	EVCharging                *bool               `db:"ev_charging"                 json:"ev_charging"`
	Accessible                *bool               `db:"accessible"                  json:"accessible"`
	AccessType                model.AccessType    `db:"access_type"                 json:"access_type"                 validate:"omitempty,parkspot"`
	Address                   string              `db:"address"                     json:"address"                     validate:"omitempty,max=255"`
	CancellationPolicy        *refundModel.Policy `db:"cancellation_policy"         json:"cancellation_policy"         validate:"omitempty,parkspot"`
	CancellationDeadlineHours *int                `db:"cancellation_deadline_hours" json:"cancellation_deadline_hours" validate:"omitempty,gte=0,lte=720"`
	DepositRequired           *bool               `db:"deposit_required"            json:"deposit_required"`
	DepositAmount             *int64              `db:"deposit_amount"              json:"deposit_amount"              validate:"omitempty,gte=0"`
	DepositPercent            *int                `db:"deposit_percent"             json:"deposit_percent"             validate:"omitempty,gte=0,lte=100"`
}

func (u UpdateSpotRequest) IsEmpty() bool {
	return u == UpdateSpotRequest{}
}

// Rescores reports whether the edit touches a field the moderation scorer reads.
func (u UpdateSpotRequest) Rescores() bool {
	return u.PricePerHour != 0 || u.Description != "" || u.Rules != ""
}

// Apply returns the spot as it reads after the edit, for scoring.
func (u UpdateSpotRequest) Apply(spot model.Spot) model.Spot {
	if u.PricePerHour != 0 {
		spot.PricePerHour = u.PricePerHour
	}

	if u.Description != "" {
		spot.Description = u.Description
	}

	if u.Rules != "" {
		spot.Rules = u.Rules
	}

	return spot
}

type SpotResponse struct {
	ID                        string                 `json:"id"`
	OwnerID                   string                 `json:"owner_id"`
	Title                     string                 `json:"title"`
	Description               string                 `json:"description"`
	Rules                     string                 `json:"rules"`
	PricePerHour              int64                  `json:"price_per_hour"`
	LengthCM                  int                    `json:"length_cm"`
	WidthCM                   int                    `json:"width_cm"`
	HeightCM                  *int                   `json:"height_cm,omitempty"`
	Covered                   bool                   `json:"covered"`
	Guarded                   bool                   `json:"guarded"`
	Camera                    bool                   `json:"camera"`
	EVCharging                bool                   `json:"ev_charging"`
	Accessible                bool                   `json:"accessible"`
	AccessType                model.AccessType       `json:"access_type"`
	Latitude                  float64                `json:"latitude"`
	Longitude                 float64                `json:"longitude"`
	Address                   string                 `json:"address"`
	Status                    moderationModel.Status `json:"status"`
	CancellationPolicy        refundModel.Policy     `json:"cancellation_policy"`
	CancellationDeadlineHours int                    `json:"cancellation_deadline_hours"`
	DepositRequired           bool                   `json:"deposit_required"`
	DepositAmount             *int64                 `json:"deposit_amount,omitempty"`
	DepositPercent            *int                   `json:"deposit_percent,omitempty"`
	Photos                    []string               `json:"photos,omitempty"`
	gDto.Metadata
}

func (r *SpotResponse) FromModel(m model.Spot) {
	r.ID = m.ID
	r.OwnerID = m.OwnerID
	r.Title = m.Title
	r.Description = m.Description
	r.Rules = m.Rules
	r.PricePerHour = m.PricePerHour
	r.LengthCM = m.LengthCM
	r.WidthCM = m.WidthCM
	r.HeightCM = m.HeightCM
	r.Covered = m.Covered
	r.Guarded = m.Guarded
	r.Camera = m.Camera
	r.EVCharging = m.EVCharging
	r.Accessible = m.Accessible
	r.AccessType = m.AccessType
	r.Latitude = m.Latitude
	r.Longitude = m.Longitude
	r.Address = m.Address
	r.Status = m.Status
	r.CancellationPolicy, r.CancellationDeadlineHours = m.Policy(refundModel.DefaultPolicy, refundModel.DefaultDeadlineHours)
	r.DepositRequired = m.DepositRequired
	r.DepositAmount = m.DepositAmount
	r.DepositPercent = m.DepositPercent
	r.Metadata.FromModel(m.Metadata)
}

func (r *SpotResponse) WithPhotos(photos []model.Photo) {
	r.Photos = make([]string, len(photos))
	for i, p := range photos {
		r.Photos[i] = p.URL
	}
}

type GetSpotsResponse struct {
	Spots     []SpotResponse `json:"spots"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetSpotsResponse) FromModels(models []model.Spot, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Spots = make([]SpotResponse, len(models))
	for i, m := range models {
		r.Spots[i].FromModel(m)
	}
}

type CreateSpotResponse struct {
	Spot       SpotResponse           `json:"spot"`
	Moderation moderationModel.Result `json:"moderation"`
}

// UploadPhotoRequest carries the image as a data URI, e.g. "data:image/png;base64,...".
type UploadPhotoRequest struct {
	Image string `json:"image" validate:"required,mimetypes=image/png image/jpeg image/webp,maxfilesize=5"`
}

type PhotoResponse struct {
	ID     string `json:"id"`
	SpotID string `json:"spot_id"`
	URL    string `json:"url"`
}

func (r *PhotoResponse) FromModel(m model.Photo) {
	r.ID = m.ID
	r.SpotID = m.SpotID
	r.URL = m.URL
}

// ToPhotos attaches the already uploaded photo urls to the new spot, keeping request order.
func (c *CreateSpotRequest) ToPhotos(spotID, owner string) []model.Photo {
	photos := make([]model.Photo, 0, len(c.Photos))

	for _, url := range c.Photos {
		photos = append(photos, NewPhoto(spotID, url, owner))
	}

	return photos
}

func NewPhoto(spotID, url, actor string) model.Photo {
	return model.Photo{
		ID:       uuid.NewString(),
		SpotID:   spotID,
		URL:      url,
		Metadata: gModel.NewMetadata(actor, timezone.Now()),
	}
}
