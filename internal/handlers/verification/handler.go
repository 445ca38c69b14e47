package verification

import (
	"net/http"

	"parkspot/infras/otel"
	moderationModel "parkspot/internal/domains/moderation/model"
	moderationDto "parkspot/internal/domains/moderation/model/dto"
	moderationService "parkspot/internal/domains/moderation/service"
	"parkspot/internal/domains/verification/model/dto"
	"parkspot/internal/domains/verification/service"
	"parkspot/shared/constant"
	gDto "parkspot/shared/dto"
	"parkspot/shared/validator"
	"parkspot/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service    service.Verification
	moderation moderationService.Moderation
	otel       otel.Otel
}

func New(service service.Verification, moderation moderationService.Moderation, otel otel.Otel) Handler {
	return Handler{
		service:    service,
		moderation: moderation,
		otel:       otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/verifications", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.SubmitVerification)
		routerGroup.Get("/mine", handler.GetMyVerifications)
		routerGroup.Post("/{id}/override", handler.Override)
		routerGroup.Get("/{id}/history", handler.GetHistory)
	})
}

// SubmitVerification scores an identity document and stores the outcome.
// @Summary Submit identity verification
// @Tags Verification
// @Accept json
// @Produce json
// @Param request body dto.SubmitVerificationRequest true "Submit Verification Request"
// @Success 201 {object} response.Data[dto.SubmitVerificationResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/verifications [post]
// @Security BearerAuth
func (handler *Handler) SubmitVerification(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SubmitVerification")
	defer scope.End()

	req := dto.SubmitVerificationRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	res, err := handler.service.Submit(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to submit verification")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusCreated, res)
}

// GetMyVerifications lists the caller's submissions.
// @Summary Get my verifications
// @Tags Verification
// @Produce json
// @Success 200 {object} response.Data[dto.GetVerificationsResponse]
// @Failure 500 {object} response.Error
// @Router /v1/verifications/mine [get]
// @Security BearerAuth
func (handler *Handler) GetMyVerifications(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetMyVerifications")
	defer scope.End()

	res, err := handler.service.Mine(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get own verifications")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// Override records an administrator's decision on a verification.
// @Summary Override verification moderation
// @Tags Moderation
// @Accept json
// @Produce json
// @Param id path string true "Verification ID"
// @Param request body moderationDto.OverrideRequest true "Override Request"
// @Success 200 {object} response.Data[moderationDto.OverrideResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/verifications/{id}/override [post]
// @Security BearerAuth
func (handler *Handler) Override(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".OverrideVerification")
	defer scope.End()

	req := moderationDto.OverrideRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	res, err := handler.moderation.Override(ctx, moderationModel.EntityVerification, chi.URLParam(request, constant.RequestParamID), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to override verification")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// GetHistory returns the moderation log of a verification.
// @Summary Get verification moderation history
// @Tags Moderation
// @Produce json
// @Param id path string true "Verification ID"
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[moderationDto.HistoryResponse]
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/verifications/{id}/history [get]
// @Security BearerAuth
func (handler *Handler) GetHistory(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetVerificationHistory")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	history, err := handler.moderation.History(ctx, moderationModel.EntityVerification, chi.URLParam(request, constant.RequestParamID), queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get verification history")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, history)
}
