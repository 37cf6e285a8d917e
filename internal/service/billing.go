package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"retail-saas/internal/domain/accounts"
	"retail-saas/internal/infra/stripe"
	"retail-saas/internal/repository"
)

// SubscriptionEvent is the provider-neutral part of a billing webhook.
type SubscriptionEvent struct {
	AccountRef       string // metadata.account_id or client_reference_id
	SubscriptionID   string
	StripeCustomerID string
	Status           string
	Interval         string
	PeriodEnd        time.Time
}

// Billing applies billing events to account plan fields.
type Billing struct {
	accounts repository.AccountRepository
}

func NewBilling(a repository.AccountRepository) *Billing {
	return &Billing{accounts: a}
}

func (b *Billing) resolve(ctx context.Context, ev SubscriptionEvent) (*accounts.Account, error) {
	if ev.AccountRef != "" {
		id, err := strconv.ParseUint(ev.AccountRef, 10, 64)
		if err == nil {
			acc, err := b.accounts.FindByID(ctx, uint(id))
			if err == nil || !errors.Is(err, repository.ErrNotFound) {
				return acc, err
			}
		}
	}
	if ev.SubscriptionID != "" {
		return b.accounts.FindBySubscriptionID(ctx, ev.SubscriptionID)
	}
	return nil, repository.ErrNotFound
}

// ApplySubscription maps the subscription state onto the account. Events for
// unknown accounts are acknowledged and dropped.
func (b *Billing) ApplySubscription(ctx context.Context, ev SubscriptionEvent) error {
	acc, err := b.resolve(ctx, ev)
	if errors.Is(err, repository.ErrNotFound) {
		slog.Warn("billing event for unknown account", "subscription_id", ev.SubscriptionID, "ref", ev.AccountRef)
		return nil
	}
	if err != nil {
		return err
	}

	change := stripe.ChangeFor(ev.Status, ev.Interval, ev.PeriodEnd)
	update := repository.BillingUpdate{PlanExpiresAt: change.PlanExpiresAt}
	if change.Plan != "" {
		update.Plan = &change.Plan
	}
	if change.Status != "" {
		update.Status = &change.Status
	}
	if ev.SubscriptionID != "" {
		update.SubscriptionID = &ev.SubscriptionID
	}
	if ev.StripeCustomerID != "" {
		update.StripeCustomerID = &ev.StripeCustomerID
	}

	slog.Info("billing event applied", "account_id", acc.ID, "status", ev.Status, "plan", change.Plan)
	return b.accounts.UpdateBilling(ctx, acc.ID, update)
}

// PaymentFailed suspends the account owning the subscription.
func (b *Billing) PaymentFailed(ctx context.Context, subscriptionID string) error {
	if subscriptionID == "" {
		return nil
	}
	acc, err := b.accounts.FindBySubscriptionID(ctx, subscriptionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	slog.Info("payment failed, suspending account", "account_id", acc.ID)
	return b.accounts.SetStatus(ctx, acc.ID, accounts.StatusBlocked)
}
