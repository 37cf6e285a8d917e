package stripewebhooks

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"retail-saas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/subscription"
	"github.com/stripe/stripe-go/v75/webhook"
)

// Handler turns billing-provider events into account plan mutations.
type Handler struct {
	billing     *service.Billing
	secret      string
	annualPrice string
	// fetchSubscription loads a subscription that checkout sessions only
	// reference by id.
	fetchSubscription func(id string) (*stripe.Subscription, error)
}

func NewHandler(b *service.Billing, apiKey, webhookSecret, annualPriceID string) *Handler {
	sc := &subscription.Client{B: stripe.GetBackend(stripe.APIBackend), Key: apiKey}
	return &Handler{
		billing:     b,
		secret:      webhookSecret,
		annualPrice: annualPriceID,
		fetchSubscription: func(id string) (*stripe.Subscription, error) {
			return sc.Get(id, nil)
		},
	}
}

func (h *Handler) StripeWebhook(c *gin.Context) {
	if h.secret == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "STRIPE_WEBHOOK_SECRET not configured"})
		return
	}

	payload, err := readStripeBody(c, 65536)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		c.GetHeader("Stripe-Signature"),
		h.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		slog.Warn("stripe signature verification failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
		return
	}

	ctx := c.Request.Context()
	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse session"})
			return
		}
		ev, err := h.checkoutEvent(&session)
		if err == nil {
			err = h.billing.ApplySubscription(ctx, ev)
		}
		respond(c, err)

	case "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse subscription"})
			return
		}
		ev := h.subscriptionEvent(&sub, "")
		if event.Type == "customer.subscription.deleted" {
			ev.Status = string(stripe.SubscriptionStatusCanceled)
		}
		respond(c, h.billing.ApplySubscription(ctx, ev))

	case "invoice.payment_failed":
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse invoice"})
			return
		}
		subID := ""
		if inv.Subscription != nil {
			subID = inv.Subscription.ID
		}
		respond(c, h.billing.PaymentFailed(ctx, subID))

	default:
		// Acknowledge unknown events to avoid retries
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
	}
}

func respond(c *gin.Context, err error) {
	if err != nil {
		slog.Error("stripe event failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

func (h *Handler) checkoutEvent(session *stripe.CheckoutSession) (service.SubscriptionEvent, error) {
	if session.Subscription == nil || session.Subscription.ID == "" {
		return service.SubscriptionEvent{}, fmt.Errorf("checkout session missing subscription")
	}
	sub := session.Subscription
	if sub.Status == "" {
		full, err := h.fetchSubscription(sub.ID)
		if err != nil {
			return service.SubscriptionEvent{}, fmt.Errorf("fetch subscription %s: %w", sub.ID, err)
		}
		sub = full
	}
	ev := h.subscriptionEvent(sub, session.ClientReferenceID)
	if ev.StripeCustomerID == "" && session.Customer != nil {
		ev.StripeCustomerID = session.Customer.ID
	}
	return ev, nil
}

func (h *Handler) subscriptionEvent(sub *stripe.Subscription, clientRef string) service.SubscriptionEvent {
	ev := service.SubscriptionEvent{
		AccountRef:     sub.Metadata["account_id"],
		SubscriptionID: sub.ID,
		Status:         string(sub.Status),
	}
	if ev.AccountRef == "" {
		ev.AccountRef = clientRef
	}
	if sub.CurrentPeriodEnd > 0 {
		ev.PeriodEnd = time.Unix(sub.CurrentPeriodEnd, 0).UTC()
	}
	if sub.Customer != nil {
		ev.StripeCustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		price := sub.Items.Data[0].Price
		switch {
		case price.Recurring != nil:
			ev.Interval = string(price.Recurring.Interval)
		case h.annualPrice != "" && price.ID == h.annualPrice:
			ev.Interval = "year"
		}
	}
	return ev
}

func readStripeBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
