package webhook

import (
	"encoding/json"
	"net/http"

	"parkspot/infras/otel"
	"parkspot/shared/constant"
	"parkspot/shared/validator"
	"parkspot/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// PaymentEvent is the envelope posted by the payment provider.
type PaymentEvent struct {
	ID   string          `json:"id"   validate:"required"`
	Key  string          `json:"key"  validate:"required"`
	Data json.RawMessage `json:"data" swaggertype:"object"`
}

type Handler struct {
	otel otel.Otel
}

func New(otel otel.Otel) Handler {
	return Handler{otel: otel}
}

// Router mounts the webhook routes. Callers wrap the group with the API key requirement.
func (handler *Handler) Router(router chi.Router) {
	router.Route("/webhooks", func(routerGroup chi.Router) {
		routerGroup.Post("/payments", handler.Payment)
	})
}

// Payment acknowledges a payment provider event. No booking state is changed.
// @Summary Receive a payment event
// @Tags Webhook
// @Accept json
// @Produce json
// @Param request body PaymentEvent true "Payment Event"
// @Success 202 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Router /v1/webhooks/payments [post]
// @Security ApiKeyAuth
func (handler *Handler) Payment(writer http.ResponseWriter, request *http.Request) {
	_, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".PaymentWebhook")
	defer scope.End()

	event := PaymentEvent{}

	if err := validator.Validate(request.Body, &event); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate payment event")

		response.WithError(writer, err)

		return
	}

	scope.SetAttributes(map[string]any{
		"webhook.event_id":  event.ID,
		"webhook.event_key": event.Key,
	})

	data := event.Data
	if len(data) == 0 {
		data = json.RawMessage("null")
	}

	log.Info().
		Str("event_id", event.ID).
		Str("event_key", event.Key).
		RawJSON("data", data).
		Msg("payment event received")

	response.WithAccepted(writer, "Event accepted")
}
