package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"parkspot/infras/otel/mocks"
	"parkspot/internal/domains/availability/model"
	"parkspot/internal/domains/availability/service"
	blackoutMocks "parkspot/internal/domains/blackout/mocks"
	blackoutModel "parkspot/internal/domains/blackout/model"
	bookingMocks "parkspot/internal/domains/booking/mocks"
	bookingModel "parkspot/internal/domains/booking/model"
	moderationModel "parkspot/internal/domains/moderation/model"
	spotMocks "parkspot/internal/domains/spot/mocks"
	spotModel "parkspot/internal/domains/spot/model"
	"parkspot/shared/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAvailabilityService_AvailableSlots(t *testing.T) {
	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return day.Add(time.Duration(h) * time.Hour) }

	ctrl := gomock.NewController(t)

	mockSpotRepo := spotMocks.NewMockSpot(ctrl)
	mockBookingRepo := bookingMocks.NewMockBooking(ctrl)
	mockBlackoutRepo := blackoutMocks.NewMockBlackout(ctrl)

	svc := service.New(mockSpotRepo, mockBookingRepo, mockBlackoutRepo, mocks.NewOtel())

	tests := []struct {
		name      string
		setupMock func()
		wantCode  int
		wantFree  int
		wantGap   []int
	}{
		{
			name: "booked and blacked out hours are removed",
			setupMock: func() {
				mockSpotRepo.EXPECT().Get(gomock.Any(), gomock.Any()).
					Return(spotModel.Spot{ID: "spot-1", Status: moderationModel.StatusAutoApproved}, nil)
				mockBookingRepo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					Return([]bookingModel.Booking{
						{StartAt: at(9), EndAt: at(11)},
						// Started the previous evening.
						{StartAt: at(-2), EndAt: at(1)},
					}, nil)
				mockBlackoutRepo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					Return([]blackoutModel.Blackout{{StartsAt: at(20), EndsAt: at(22)}}, nil)
			},
			wantFree: 19,
			wantGap:  []int{0, 9, 10, 20, 21},
		},
		{
			name: "free day",
			setupMock: func() {
				mockSpotRepo.EXPECT().Get(gomock.Any(), gomock.Any()).
					Return(spotModel.Spot{ID: "spot-1", Status: moderationModel.StatusApproved}, nil)
				mockBookingRepo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
				mockBlackoutRepo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
			},
			wantFree: model.SlotsPerDay,
		},
		{
			name: "spot not bookable",
			setupMock: func() {
				mockSpotRepo.EXPECT().Get(gomock.Any(), gomock.Any()).
					Return(spotModel.Spot{ID: "spot-1", Status: moderationModel.StatusRejected}, nil)
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "unknown spot",
			setupMock: func() {
				mockSpotRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(spotModel.Spot{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "booking query fails",
			setupMock: func() {
				mockSpotRepo.EXPECT().Get(gomock.Any(), gomock.Any()).
					Return(spotModel.Spot{ID: "spot-1", Status: moderationModel.StatusApproved}, nil)
				mockBookingRepo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			res, err := svc.AvailableSlots(context.Background(), "spot-1", day.Add(13*time.Hour))

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "2026-05-04", res.Date)
			assert.Len(t, res.Slots, tt.wantFree)

			for i := 1; i < len(res.Slots); i++ {
				assert.True(t, res.Slots[i-1].Start.Before(res.Slots[i].Start), "slots must ascend")
			}

			for _, h := range tt.wantGap {
				for _, slot := range res.Slots {
					assert.NotEqual(t, at(h), slot.Start)
				}
			}
		})
	}
}
