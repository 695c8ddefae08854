package payment

import (
	"encoding/json"
	"fmt"

	stripe "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/webhook"
)

// CheckoutParams describes a license purchase to be settled externally. The
// metadata round-trips through the provider so the webhook can correlate the
// completed payment back to a (buyer, text) pair.
type CheckoutParams struct {
	TextID     string
	BuyerID    string
	AuthorID   string
	AuthorName string
	TextTitle  string
	PriceCents int64
	SuccessURL string
	CancelURL  string
}

// Session is the provider-agnostic view of a checkout session.
type Session struct {
	ID          string
	RedirectURL string
	Status      string
	Metadata    map[string]string
}

// Event is a verified webhook notification.
type Event struct {
	Type      string
	SessionID string
	Metadata  map[string]string
}

// Provider is the opaque payment-session collaborator.
type Provider interface {
	CreateCheckoutSession(params CheckoutParams) (*Session, error)
	RetrieveSession(sessionID string) (*Session, error)
	ConstructWebhookEvent(payload []byte, signature string) (*Event, error)
}

type stripeProvider struct {
	webhookSecret string
}

func NewStripeProvider(secretKey, webhookSecret string) Provider {
	stripe.Key = secretKey
	return &stripeProvider{webhookSecret: webhookSecret}
}

func (p *stripeProvider) CreateCheckoutSession(params CheckoutParams) (*Session, error) {
	sessionParams := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String("brl"),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(fmt.Sprintf("Licença: %s", params.TextTitle)),
						Description: stripe.String(fmt.Sprintf("Por %s", params.AuthorName)),
					},
					UnitAmount: stripe.Int64(params.PriceCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(params.SuccessURL),
		CancelURL:         stripe.String(params.CancelURL),
		ClientReferenceID: stripe.String(fmt.Sprintf("%s-%s", params.BuyerID, params.TextID)),
	}
	sessionParams.AddMetadata("text_id", params.TextID)
	sessionParams.AddMetadata("buyer_id", params.BuyerID)
	sessionParams.AddMetadata("author_id", params.AuthorID)

	s, err := session.New(sessionParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &Session{
		ID:          s.ID,
		RedirectURL: s.URL,
		Status:      string(s.PaymentStatus),
		Metadata:    s.Metadata,
	}, nil
}

func (p *stripeProvider) RetrieveSession(sessionID string) (*Session, error) {
	s, err := session.Get(sessionID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve checkout session: %w", err)
	}

	return &Session{
		ID:          s.ID,
		RedirectURL: s.URL,
		Status:      string(s.PaymentStatus),
		Metadata:    s.Metadata,
	}, nil
}

func (p *stripeProvider) ConstructWebhookEvent(payload []byte, signature string) (*Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook signature: %w", err)
	}

	out := &Event{Type: string(event.Type)}

	if event.Type == "checkout.session.completed" {
		var s stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("failed to decode checkout session payload: %w", err)
		}
		out.SessionID = s.ID
		out.Metadata = s.Metadata
	}

	return out, nil
}
