// Package billing handles the platform subscriptions gym owners pay for
// through Stripe. Member-facing payments go through Razorpay instead.
package billing

import (
	"fmt"

	stripe "github.com/stripe/stripe-go/v82"
	portalsession "github.com/stripe/stripe-go/v82/billingportal/session"
	checksession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/fitdesert/fitdesert/internal/model"
)

type Config struct {
	SecretKey      string
	WebhookSecret  string
	BasicPriceID   string
	ProPriceID     string
	PremiumPriceID string
	SuccessURL     string
	CancelURL      string
}

type Client struct {
	cfg Config
}

func NewClient(cfg Config) *Client {
	stripe.Key = cfg.SecretKey
	return &Client{cfg: cfg}
}

// Configured returns true if the Stripe secret key is set.
func (c *Client) Configured() bool {
	return c.cfg.SecretKey != ""
}

// CreateCustomer creates a Stripe customer for a gym owner and returns
// the customer ID.
func (c *Client) CreateCustomer(email, gymName string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(gymName),
	}
	cust, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	return cust.ID, nil
}

// CreateCheckoutSession creates a subscription checkout session for the
// given plan and returns the URL to redirect the owner to.
func (c *Client) CreateCheckoutSession(customerID string, plan model.SubscriptionPlan) (string, error) {
	priceID := c.PriceIDForPlan(plan)
	if priceID == "" {
		return "", fmt.Errorf("no price configured for plan %s", plan)
	}

	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(customerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		AllowPromotionCodes: stripe.Bool(true),
		SuccessURL:          stripe.String(c.cfg.SuccessURL),
		CancelURL:           stripe.String(c.cfg.CancelURL),
		Metadata:            map[string]string{"plan": string(plan)},
	}
	sess, err := checksession.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

// CreateBillingPortalSession returns a portal URL where an owner can
// manage their subscription.
func (c *Client) CreateBillingPortalSession(customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	sess, err := portalsession.New(params)
	if err != nil {
		return "", fmt.Errorf("create billing portal session: %w", err)
	}
	return sess.URL, nil
}

// PriceIDForPlan returns the Stripe price ID for a subscription plan.
func (c *Client) PriceIDForPlan(plan model.SubscriptionPlan) string {
	switch plan {
	case model.PlanBasic:
		return c.cfg.BasicPriceID
	case model.PlanPro:
		return c.cfg.ProPriceID
	case model.PlanPremium:
		return c.cfg.PremiumPriceID
	}
	return ""
}

// PlanForPriceID is the inverse mapping, used when a webhook names only
// the price.
func (c *Client) PlanForPriceID(priceID string) (model.SubscriptionPlan, bool) {
	switch priceID {
	case c.cfg.BasicPriceID:
		return model.PlanBasic, priceID != ""
	case c.cfg.ProPriceID:
		return model.PlanPro, priceID != ""
	case c.cfg.PremiumPriceID:
		return model.PlanPremium, priceID != ""
	}
	return "", false
}

// ConstructWebhookEvent verifies the signature and returns the parsed event.
func (c *Client) ConstructWebhookEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, c.cfg.WebhookSecret)
}
