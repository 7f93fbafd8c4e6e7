package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/booking"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/payment"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/repository"
)

// WebhookHandler receives asynchronous charge notifications from the
// payment provider.  The provider retries until it sees a 2xx, so any
// authenticated delivery is acknowledged with 200, even when it is a
// duplicate, unknown, contradicts recorded state, or hits an internal
// failure; anything else invites a retry storm, and the verify
// endpoint can always reconcile later.
type WebhookHandler struct {
	Secret string
	Svc    *booking.Service
}

func NewWebhookHandler(secret string, svc *booking.Service) *WebhookHandler {
	if secret == "" || svc == nil {
		panic("missing dependency passed to NewWebhookHandler")
	}
	return &WebhookHandler{Secret: secret, Svc: svc}
}

// webhookEnvelope is the subset of the provider payload we act on.
type webhookEnvelope struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
	} `json:"data"`
}

// Receive handles POST /v1/payments/webhook.  The signature is an
// HMAC-SHA512 of the exact raw body, so the body must be read before
// any JSON decoding touches it.  A bad signature is the only
// rejection: everything after authentication is acknowledged.
func (h *WebhookHandler) Receive(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable body"})
	}
	sig := c.Request().Header.Get("x-paystack-signature")
	if !payment.VerifySignature(h.Secret, body, sig) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid signature"})
	}

	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		// Authenticated but malformed; log and acknowledge so the
		// provider stops retrying a payload we can never parse.
		log.Printf("[webhook] malformed payload: %v", err)
		return c.NoContent(http.StatusOK)
	}

	var outcome booking.Outcome
	switch env.Event {
	case "charge.success":
		outcome = booking.OutcomeSuccess
	case "charge.failed":
		outcome = booking.OutcomeFailed
	default:
		// Not a charge event; nothing to reconcile.
		return c.NoContent(http.StatusOK)
	}
	if env.Data.Reference == "" {
		log.Printf("[webhook] %s event without reference", env.Event)
		return c.NoContent(http.StatusOK)
	}

	res, err := h.Svc.ReconcilePayment(c.Request().Context(), env.Data.Reference, outcome, string(body))
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			log.Printf("[webhook] unknown payment reference %s", env.Data.Reference)
			return c.NoContent(http.StatusOK)
		}
		// Internal failure still acknowledges: a non-2xx would make the
		// provider redeliver in a storm, and the synchronous verify path
		// can reconcile later.  The error stays server-side.
		log.Printf("[webhook] reconcile %s failed: %v", env.Data.Reference, err)
		return c.NoContent(http.StatusOK)
	}
	if res.Conflict {
		log.Printf("[webhook] %s for %s contradicts recorded state, keeping first result", env.Event, env.Data.Reference)
	}
	return c.NoContent(http.StatusOK)
}
