package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"

	"clinicbook/internal/model"
	"clinicbook/internal/sessions"
	"clinicbook/internal/storage"
)

type BillingHandler struct {
	store            *storage.Store
	logger           *slog.Logger
	webhookSecret    string
	webhookTolerance time.Duration
	successURL       string
	cancelURL        string
}

type BillingConfig struct {
	StripeSecretKey               string
	StripeWebhookSecret           string
	StripeWebhookToleranceSeconds int
	CheckoutSuccessURL            string
	CheckoutCancelURL             string
}

func NewBillingHandler(store *storage.Store, logger *slog.Logger, cfg BillingConfig) *BillingHandler {
	stripe.Key = strings.TrimSpace(cfg.StripeSecretKey)
	tolSeconds := cfg.StripeWebhookToleranceSeconds
	if tolSeconds <= 0 {
		tolSeconds = 300
	}
	return &BillingHandler{
		store:            store,
		logger:           logger,
		webhookSecret:    strings.TrimSpace(cfg.StripeWebhookSecret),
		webhookTolerance: time.Duration(tolSeconds) * time.Second,
		successURL:       cfg.CheckoutSuccessURL,
		cancelURL:        cfg.CheckoutCancelURL,
	}
}

func (h *BillingHandler) MyCharges(w http.ResponseWriter, r *http.Request) {
	actor, _ := sessions.ActorFromContext(r.Context())

	charges, err := h.store.ListPatientCharges(r.Context(), actor.PatientID)
	if err != nil {
		h.logger.Error("list charges failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load charges")
		return
	}

	var outstanding int64
	out := make([]map[string]any, 0, len(charges))
	for _, c := range charges {
		if c.Status == model.ChargeUnpaid {
			outstanding += c.AmountCents
		}
		item := map[string]any{
			"charge_id":      c.ID,
			"appointment_id": c.AppointmentID,
			"amount_cents":   c.AmountCents,
			"status":         c.Status,
			"created_at":     c.CreatedAt.UTC().Format(time.RFC3339),
		}
		if c.PaidAt != nil {
			item["paid_at"] = c.PaidAt.UTC().Format(time.RFC3339)
		}
		out = append(out, item)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"charges":           out,
		"outstanding_cents": outstanding,
	})
}

// Checkout opens a Stripe Checkout session for the patient's full
// outstanding balance. The webhook, not the redirect, settles the charges.
func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if stripe.Key == "" {
		writeError(w, http.StatusServiceUnavailable, "billing not configured")
		return
	}

	actor, _ := sessions.ActorFromContext(r.Context())

	outstanding, err := h.store.OutstandingCents(r.Context(), actor.PatientID)
	if err != nil {
		h.logger.Error("outstanding lookup failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to start checkout")
		return
	}
	if outstanding <= 0 {
		writeError(w, http.StatusBadRequest, "no outstanding balance")
		return
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyUSD)),
				UnitAmount: stripe.Int64(outstanding),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Consultation charges"),
				},
			},
		}},
		SuccessURL: stripe.String(h.successURL),
		CancelURL:  stripe.String(h.cancelURL),
	}
	params.AddMetadata("patient_id", strconv.FormatInt(actor.PatientID, 10))

	sess, err := checkoutsession.New(params)
	if err != nil {
		h.logger.Error("stripe checkout session create failed", "err", err)
		writeError(w, http.StatusBadGateway, "failed to start checkout")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sess.ID,
		"url":        sess.URL,
	})
}

// StripeWebhook settles charges on checkout completion. Signature
// verification is the auth; replayed deliveries are absorbed by the
// provider-event table.
func (h *BillingHandler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.webhookSecret == "" {
		writeError(w, http.StatusServiceUnavailable, "stripe webhook not configured")
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	if strings.TrimSpace(sigHeader) == "" {
		writeError(w, http.StatusBadRequest, "missing Stripe-Signature header")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	evt, err := webhook.ConstructEventWithTolerance(body, sigHeader, h.webhookSecret, h.webhookTolerance)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid signature")
		return
	}

	first, err := h.store.RecordProviderEvent(r.Context(), evt.ID)
	if err != nil {
		h.logger.Error("provider event record failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to record event")
		return
	}
	if !first {
		h.logger.Info("duplicate stripe event ignored", "provider_event_id", evt.ID)
		writeJSON(w, http.StatusOK, map[string]any{"status": "duplicate"})
		return
	}

	if evt.Type == "checkout.session.completed" {
		var session stripe.CheckoutSession
		if err := json.Unmarshal(evt.Data.Raw, &session); err != nil {
			h.logger.Error("stripe: invalid checkout session payload", "err", err)
			writeJSON(w, http.StatusOK, map[string]any{"status": "ignored"})
			return
		}
		patientID, err := strconv.ParseInt(strings.TrimSpace(session.Metadata["patient_id"]), 10, 64)
		if err != nil {
			h.logger.Warn("stripe: missing patient_id metadata on checkout session", "session_id", session.ID)
			writeJSON(w, http.StatusOK, map[string]any{"status": "ignored"})
			return
		}

		settled, err := h.store.MarkPatientChargesPaid(r.Context(), patientID)
		if err != nil {
			h.logger.Error("settle charges failed", "err", err, "patient_id", patientID)
			writeError(w, http.StatusInternalServerError, "failed to settle charges")
			return
		}
		h.logger.Info("charges settled", "patient_id", patientID, "count", settled)
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
