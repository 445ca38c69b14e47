package spot

import (
	"net/http"

	"parkspot/infras/otel"
	availabilityService "parkspot/internal/domains/availability/service"
	blackoutDto "parkspot/internal/domains/blackout/model/dto"
	blackoutService "parkspot/internal/domains/blackout/service"
	moderationModel "parkspot/internal/domains/moderation/model"
	moderationDto "parkspot/internal/domains/moderation/model/dto"
	moderationService "parkspot/internal/domains/moderation/service"
	pricingDto "parkspot/internal/domains/pricing/model/dto"
	pricingService "parkspot/internal/domains/pricing/service"
	"parkspot/internal/domains/spot/model"
	"parkspot/internal/domains/spot/model/dto"
	"parkspot/internal/domains/spot/service"
	"parkspot/shared"
	"parkspot/shared/constant"
	gDto "parkspot/shared/dto"
	"parkspot/shared/failure"
	"parkspot/shared/timezone"
	"parkspot/shared/validator"
	"parkspot/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service      service.Spot
	pricing      pricingService.Pricing
	availability availabilityService.Availability
	blackout     blackoutService.Blackout
	moderation   moderationService.Moderation
	otel         otel.Otel
}

func New(
	service service.Spot,
	pricing pricingService.Pricing,
	availability availabilityService.Availability,
	blackout blackoutService.Blackout,
	moderation moderationService.Moderation,
	otel otel.Otel,
) Handler {
	return Handler{
		service:      service,
		pricing:      pricing,
		availability: availability,
		blackout:     blackout,
		moderation:   moderation,
		otel:         otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/spots", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateSpot)
		routerGroup.Get("/", handler.GetSpots)
		routerGroup.Get("/mine", handler.GetMySpots)
		routerGroup.Get("/{id}", handler.GetSpotByID)
		routerGroup.Patch("/{id}", handler.UpdateSpot)
		routerGroup.Post("/{id}/photos", handler.UploadPhoto)
		routerGroup.Post("/{id}/quote", handler.Quote)
		routerGroup.Get("/{id}/availability", handler.GetAvailability)
		routerGroup.Get("/{id}/blackouts", handler.GetBlackouts)
		routerGroup.Post("/{id}/blackouts", handler.CreateBlackout)
		routerGroup.Delete("/{id}/blackouts/{blackoutID}", handler.DeleteBlackout)
		routerGroup.Get("/{id}/moderation", handler.GetModerationHistory)
		routerGroup.Post("/{id}/moderation/rescore", handler.Rescore)
		routerGroup.Post("/{id}/moderation/override", handler.Override)
	})
}

// CreateSpot lists a new parking spot and runs the first moderation pass.
// @Summary Create a spot
// @Tags Spot
// @Accept json
// @Produce json
// @Param request body dto.CreateSpotRequest true "Create Spot Request"
// @Success 201 {object} response.Data[dto.CreateSpotResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/spots [post]
// @Security BearerAuth
func (handler *Handler) CreateSpot(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateSpot")
	defer scope.End()

	req := dto.CreateSpotRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	res, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create spot")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Spot created with status " + string(res.Spot.Status))

	response.WithJSON(writer, http.StatusCreated, res)
}

// GetSpots lists bookable spots.
// @Summary List bookable spots
// @Tags Spot
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param owner_id query string false "Filter by owner"
// @Param access_type query string false "Filter by access type"
// @Success 200 {object} response.Data[dto.GetSpotsResponse]
// @Failure 500 {object} response.Error
// @Router /v1/spots [get]
func (handler *Handler) GetSpots(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSpots")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	filterGroup := listFilter(request)
	filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
		Field:    model.FieldStatus,
		Operator: gDto.FilterOperatorIn,
		Value:    moderationModel.ApprovedStatuses,
		Table:    model.TableName,
	})

	if owner := request.URL.Query().Get(model.FieldOwnerID); owner != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldOwnerID,
			Operator: gDto.FilterOperatorEq,
			Value:    owner,
			Table:    model.TableName,
		})
	}

	spots, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get spots")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, spots)
}

// GetMySpots lists the caller's spots in every moderation status.
// @Summary List my spots
// @Tags Spot
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param status query string false "Filter by moderation status"
// @Param access_type query string false "Filter by access type"
// @Success 200 {object} response.Data[dto.GetSpotsResponse]
// @Failure 500 {object} response.Error
// @Router /v1/spots/mine [get]
// @Security BearerAuth
func (handler *Handler) GetMySpots(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetMySpots")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	owner, _ := shared.Principal(ctx)

	filterGroup := listFilter(request)
	filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
		Field:    model.FieldOwnerID,
		Operator: gDto.FilterOperatorEq,
		Value:    owner,
		Table:    model.TableName,
	})

	if status := request.URL.Query().Get(model.FieldStatus); status != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldStatus,
			Operator: gDto.FilterOperatorEq,
			Value:    status,
			Table:    model.TableName,
		})
	}

	spots, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get own spots")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, spots)
}

func listFilter(request *http.Request) gDto.FilterGroup {
	filterGroup := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	if accessType := request.URL.Query().Get(model.FieldAccessType); accessType != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldAccessType,
			Operator: gDto.FilterOperatorEq,
			Value:    accessType,
			Table:    model.TableName,
		})
	}

	return filterGroup
}

// GetSpotByID retrieves a spot with its photos.
// @Summary Get a spot
// @Tags Spot
// @Produce json
// @Param id path string true "Spot ID"
// @Success 200 {object} response.Data[dto.SpotResponse]
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/spots/{id} [get]
func (handler *Handler) GetSpotByID(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSpotByID")
	defer scope.End()

	spot, err := handler.service.Get(ctx, chi.URLParam(request, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get spot by ID")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, spot)
}

// UpdateSpot edits the owner's listing.
// @Summary Update a spot
// @Tags Spot
// @Accept json
// @Produce json
// @Param id path string true "Spot ID"
// @Param request body dto.UpdateSpotRequest true "Update Spot Request"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/spots/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateSpot(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateSpot")
	defer scope.End()

	req := dto.UpdateSpotRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	if err := handler.service.Update(ctx, req, chi.URLParam(request, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update spot")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Spot updated successfully")
}

// UploadPhoto attaches a base64 encoded image to the spot.
// @Summary Upload a spot photo
// @Tags Spot
// @Accept json
// @Produce json
// @Param id path string true "Spot ID"
// @Param request body dto.UploadPhotoRequest true "Upload Photo Request"
// @Success 201 {object} response.Data[dto.PhotoResponse]
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Router /v1/spots/{id}/photos [post]
// @Security BearerAuth
func (handler *Handler) UploadPhoto(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UploadPhoto")
	defer scope.End()

	req := dto.UploadPhotoRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	photo, err := handler.service.UploadPhoto(ctx, req, chi.URLParam(request, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to upload spot photo")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusCreated, photo)
}

// Quote prices a candidate window without booking it.
// @Summary Quote a booking window
// @Tags Spot
// @Accept json
// @Produce json
// @Param id path string true "Spot ID"
// @Param request body pricingDto.QuoteRequest true "Quote Request"
// @Success 200 {object} response.Data[pricingDto.QuoteResponse]
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/spots/{id}/quote [post]
func (handler *Handler) Quote(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Quote")
	defer scope.End()

	req := pricingDto.QuoteRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	quote, err := handler.pricing.Quote(ctx, chi.URLParam(request, constant.RequestParamID), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to quote booking window")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, quote)
}

// GetAvailability lists the free hour slots of a UTC day.
// @Summary Get available slots
// @Tags Spot
// @Produce json
// @Param id path string true "Spot ID"
// @Param date query string true "Day in YYYY-MM-DD"
// @Success 200 {object} response.Data[availabilityDto.AvailabilityResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/spots/{id}/availability [get]
func (handler *Handler) GetAvailability(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAvailability")
	defer scope.End()

	day, err := timezone.ParseDay(request.URL.Query().Get(constant.RequestParamDate))
	if err != nil {
		err = failure.Validation("date must be formatted as YYYY-MM-DD", map[string]any{constant.RequestParamDate: err.Error()})
		scope.TraceError(err)

		response.WithError(writer, err)

		return
	}

	slots, err := handler.availability.AvailableSlots(ctx, chi.URLParam(request, constant.RequestParamID), day)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get available slots")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, slots)
}

// GetBlackouts lists the owner's blocked windows.
// @Summary List blackouts
// @Tags Spot
// @Produce json
// @Param id path string true "Spot ID"
// @Success 200 {object} response.Data[blackoutDto.GetBlackoutsResponse]
// @Failure 403 {object} response.Error
// @Router /v1/spots/{id}/blackouts [get]
// @Security BearerAuth
func (handler *Handler) GetBlackouts(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBlackouts")
	defer scope.End()

	blackouts, err := handler.blackout.GetAll(ctx, chi.URLParam(request, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get blackouts")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, blackouts)
}

// CreateBlackout blocks a window for new bookings.
// @Summary Create a blackout
// @Tags Spot
// @Accept json
// @Produce json
// @Param id path string true "Spot ID"
// @Param request body blackoutDto.CreateBlackoutRequest true "Create Blackout Request"
// @Success 201 {object} response.Data[blackoutDto.BlackoutResponse]
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Router /v1/spots/{id}/blackouts [post]
// @Security BearerAuth
func (handler *Handler) CreateBlackout(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateBlackout")
	defer scope.End()

	req := blackoutDto.CreateBlackoutRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	blackout, err := handler.blackout.Create(ctx, chi.URLParam(request, constant.RequestParamID), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create blackout")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusCreated, blackout)
}

// DeleteBlackout reopens a blocked window.
// @Summary Delete a blackout
// @Tags Spot
// @Produce json
// @Param id path string true "Spot ID"
// @Param blackoutID path string true "Blackout ID"
// @Success 200 {object} response.Message
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/spots/{id}/blackouts/{blackoutID} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteBlackout(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteBlackout")
	defer scope.End()

	spotID := chi.URLParam(request, constant.RequestParamID)

	if err := handler.blackout.Delete(ctx, spotID, chi.URLParam(request, constant.RequestParamBlackoutID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete blackout")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Blackout deleted successfully")
}

// GetModerationHistory returns the moderation log of a spot, oldest first.
// @Summary Get spot moderation history
// @Tags Moderation
// @Produce json
// @Param id path string true "Spot ID"
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[moderationDto.HistoryResponse]
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/spots/{id}/moderation [get]
// @Security BearerAuth
func (handler *Handler) GetModerationHistory(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetModerationHistory")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	history, err := handler.moderation.History(ctx, moderationModel.EntitySpot, chi.URLParam(request, constant.RequestParamID), queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get spot moderation history")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, history)
}

// Rescore re-runs automatic moderation, e.g. after photos were added.
// @Summary Rescore a spot
// @Tags Moderation
// @Produce json
// @Param id path string true "Spot ID"
// @Success 200 {object} response.Data[moderationDto.RescoreResponse]
// @Failure 403 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/spots/{id}/moderation/rescore [post]
// @Security BearerAuth
func (handler *Handler) Rescore(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Rescore")
	defer scope.End()

	res, err := handler.moderation.Rescore(ctx, chi.URLParam(request, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to rescore spot")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// Override records an administrator's decision on a spot.
// @Summary Override spot moderation
// @Tags Moderation
// @Accept json
// @Produce json
// @Param id path string true "Spot ID"
// @Param request body moderationDto.OverrideRequest true "Override Request"
// @Success 200 {object} response.Data[moderationDto.OverrideResponse]
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Router /v1/spots/{id}/moderation/override [post]
// @Security BearerAuth
func (handler *Handler) Override(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Override")
	defer scope.End()

	req := moderationDto.OverrideRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	res, err := handler.moderation.Override(ctx, moderationModel.EntitySpot, chi.URLParam(request, constant.RequestParamID), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to override spot moderation")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}
