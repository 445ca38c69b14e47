package validator_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"parkspot/config"
	"parkspot/shared/failure"
	"parkspot/shared/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type accessType string

func (a accessType) Validate(_ *config.Config) error {
	if a == "GARAGE" || a == "STREET" {
		return nil
	}

	return errors.New("unknown access type")
}

type spotRequest struct {
	Title        string     `json:"title"          validate:"required,min=3"`
	Email        string     `json:"email"          validate:"omitempty,email"`
	PricePerHour int64      `json:"price_per_hour" validate:"gt=0"`
	Policy       string     `json:"policy"         validate:"oneof=FLEXIBLE MODERATE STRICT"`
	AccessType   accessType `json:"access_type"    validate:"parkspot"`
}

type photoRequest struct {
	Image string `json:"image" validate:"required,mimetypes=image/png image/jpeg,maxfilesize=0.0001"`
}

func validSpot() spotRequest {
	return spotRequest{Title: "Garage near station", PricePerHour: 2500, Policy: "MODERATE", AccessType: "GARAGE"}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *spotRequest)
		field   string
		message string
	}{
		{name: "valid", mutate: func(*spotRequest) {}},
		{name: "missing title", mutate: func(r *spotRequest) { r.Title = "" }, field: "title", message: "title is required"},
		{name: "bad email", mutate: func(r *spotRequest) { r.Email = "nope" }, field: "email", message: "email must be a valid email address"},
		{name: "zero price", mutate: func(r *spotRequest) { r.PricePerHour = 0 }, field: "price_per_hour", message: "price_per_hour must be greater than 0"},
		{name: "unknown policy", mutate: func(r *spotRequest) { r.Policy = "LENIENT" }, field: "policy", message: "policy must be one of FLEXIBLE MODERATE STRICT"},
		{name: "custom rule", mutate: func(r *spotRequest) { r.AccessType = "ROOFTOP" }, field: "access_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSpot()
			tt.mutate(&req)

			err := validator.ValidateStruct(&req)
			if tt.field == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
			assert.Contains(t, failure.GetDetails(err), tt.field)

			if tt.message != "" {
				assert.Equal(t, tt.message, err.Error())
			}
		})
	}
}

func TestValidate_DecodesBody(t *testing.T) {
	var req spotRequest

	err := validator.Validate(strings.NewReader(`{"title":"Yard","price_per_hour":900,"policy":"STRICT","access_type":"STREET"}`), &req)
	require.NoError(t, err)
	assert.Equal(t, int64(900), req.PricePerHour)

	err = validator.Validate(strings.NewReader(`{"title":`), &req)
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
}

func TestValidateOptional(t *testing.T) {
	type reasonRequest struct {
		Reason *string `json:"reason,omitempty" validate:"omitempty,max=5"`
	}

	var req reasonRequest

	require.NoError(t, validator.ValidateOptional(strings.NewReader(""), &req))
	assert.Nil(t, req.Reason)

	err := validator.ValidateOptional(strings.NewReader(`{"reason":"too long"}`), &req)
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))

	err = validator.ValidateOptional(strings.NewReader(`{"reason":`), &req)
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
}

func TestValidate_Base64Image(t *testing.T) {
	ok := photoRequest{Image: "data:image/png;base64,iVBORw0KGgo="}
	assert.NoError(t, validator.ValidateStruct(&ok))

	wrongType := photoRequest{Image: "data:image/gif;base64,R0lGOD=="}
	assert.Error(t, validator.ValidateStruct(&wrongType))

	tooLarge := photoRequest{Image: "data:image/png;base64," + strings.Repeat("A", 200)}
	assert.Error(t, validator.ValidateStruct(&tooLarge))
}

func TestValidateVar(t *testing.T) {
	assert.NoError(t, validator.ValidateVar("owner@parkspot.io", "email"))
	assert.Error(t, validator.ValidateVar("not-an-email", "email"))
}
