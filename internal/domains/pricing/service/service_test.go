package service_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"parkspot/config"
	"parkspot/infras/otel/mocks"
	availabilityModel "parkspot/internal/domains/availability/model"
	moderationModel "parkspot/internal/domains/moderation/model"
	"parkspot/internal/domains/pricing/model/dto"
	"parkspot/internal/domains/pricing/service"
	spotMocks "parkspot/internal/domains/spot/mocks"
	spotModel "parkspot/internal/domains/spot/model"
	"parkspot/shared/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestPricingService_Quote(t *testing.T) {
	// A Wednesday, 12:00 UTC: neutral time and day multipliers.
	start := time.Date(2030, 1, 2, 12, 0, 0, 0, time.UTC)
	percent := 25
	double := 2.0

	ctrl := gomock.NewController(t)
	mockSpotRepo := spotMocks.NewMockSpot(ctrl)

	cfg := &config.Config{}
	cfg.App.Booking.CommissionPercent = 10
	cfg.App.Booking.DemandMultiplier = 1.0
	cfg.App.Booking.HorizonMonths = 120

	svc := service.New(mockSpotRepo, cfg, mocks.NewOtel())

	spot := spotModel.Spot{
		ID:              "spot-1",
		PricePerHour:    1000,
		Status:          moderationModel.StatusApproved,
		DepositRequired: true,
		DepositPercent:  &percent,
	}

	tests := []struct {
		name      string
		req       dto.QuoteRequest
		setupMock func()
		wantCode  int
		wantTotal int64
		wantDep   int64
	}{
		{
			name: "three hour quote",
			req:  dto.QuoteRequest{StartAt: start, EndAt: start.Add(3 * time.Hour)},
			setupMock: func() {
				mockSpotRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(spot, nil)
			},
			wantTotal: 3000,
			wantDep:   750,
		},
		{
			name: "demand multiplier from the request",
			req:  dto.QuoteRequest{StartAt: start, EndAt: start.Add(time.Hour), DemandMultiplier: &double},
			setupMock: func() {
				mockSpotRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(spot, nil)
			},
			wantTotal: 2000,
			wantDep:   500,
		},
		{
			name:      "invalid window",
			req:       dto.QuoteRequest{StartAt: start, EndAt: start},
			setupMock: func() {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "unbookable spot",
			req:  dto.QuoteRequest{StartAt: start, EndAt: start.Add(time.Hour)},
			setupMock: func() {
				pending := spot
				pending.Status = moderationModel.StatusPendingReview
				mockSpotRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pending, nil)
			},
			wantCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			res, err := svc.Quote(context.Background(), "spot-1", tt.req)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, res.Quote.TotalPrice)
			assert.Equal(t, tt.wantDep, res.Quote.DepositAmount)
			assert.Equal(t, tt.wantTotal, res.Quote.CommissionAmount+res.Quote.OwnerAmount)
			assert.Equal(t, availabilityModel.Hours(tt.req.StartAt, tt.req.EndAt), res.Quote.Hours)
		})
	}
}
