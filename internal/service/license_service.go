package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/recantodospoetas/backend/internal/dto"
	"github.com/recantodospoetas/backend/internal/model"
	"github.com/recantodospoetas/backend/internal/repository"
	"github.com/recantodospoetas/backend/pkg/apperror"
	"github.com/recantodospoetas/backend/pkg/mailer"
	"github.com/recantodospoetas/backend/pkg/payment"
	"gorm.io/gorm"
)

type LicenseService interface {
	CreateCheckout(ctx context.Context, textID, buyerID uuid.UUID, priceCents int64) (*dto.CheckoutResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	ListMine(ctx context.Context, buyerID uuid.UUID) ([]dto.LicenseResponse, error)
}

type licenseService struct {
	licenseRepo repository.LicenseRepository
	textRepo    repository.TextRepository
	userRepo    repository.UserRepository
	provider    payment.Provider
	mail        mailer.Mailer
	frontendURL string
}

func NewLicenseService(
	licenseRepo repository.LicenseRepository,
	textRepo repository.TextRepository,
	userRepo repository.UserRepository,
	provider payment.Provider,
	mail mailer.Mailer,
	frontendURL string,
) LicenseService {
	return &licenseService{
		licenseRepo: licenseRepo,
		textRepo:    textRepo,
		userRepo:    userRepo,
		provider:    provider,
		mail:        mail,
		frontendURL: frontendURL,
	}
}

func (s *licenseService) CreateCheckout(ctx context.Context, textID, buyerID uuid.UUID, priceCents int64) (*dto.CheckoutResponse, error) {
	text, err := s.textRepo.FindByID(ctx, textID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "texto não encontrado")
		}
		return nil, err
	}

	if text.Status != model.StatusPublished {
		return nil, apperror.Wrap(apperror.ErrInvalidState, "apenas textos publicados podem ser licenciados")
	}

	session, err := s.provider.CreateCheckoutSession(payment.CheckoutParams{
		TextID:     text.ID.String(),
		BuyerID:    buyerID.String(),
		AuthorID:   text.AuthorID.String(),
		AuthorName: text.Author.FullName(),
		TextTitle:  text.Title,
		PriceCents: priceCents,
		SuccessURL: fmt.Sprintf("%s/licenses/success?session_id={CHECKOUT_SESSION_ID}", s.frontendURL),
		CancelURL:  fmt.Sprintf("%s/texts/%s?canceled=true", s.frontendURL, text.ID),
	})
	if err != nil {
		return nil, err
	}

	license := &model.License{
		TextID:          text.ID,
		BuyerID:         buyerID,
		AuthorID:        text.AuthorID,
		LicenseType:     text.LicenseType,
		AmountCents:     priceCents,
		Currency:        "brl",
		StripeSessionID: session.ID,
		Status:          model.LicensePending,
	}

	if err := s.licenseRepo.Create(ctx, license); err != nil {
		return nil, err
	}

	return &dto.CheckoutResponse{
		SessionID:   session.ID,
		RedirectURL: session.RedirectURL,
	}, nil
}

// HandleWebhook completes the license matching the checkout session. Events
// other than a completed checkout are acknowledged and ignored.
func (s *licenseService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.provider.ConstructWebhookEvent(payload, signature)
	if err != nil {
		return apperror.Wrap(apperror.ErrBadRequest, "assinatura de webhook inválida")
	}

	if event.Type != "checkout.session.completed" {
		return nil
	}

	license, err := s.licenseRepo.FindBySessionID(ctx, event.SessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.Wrap(apperror.ErrNotFound, "licença não encontrada para a sessão")
		}
		return err
	}

	if err := s.licenseRepo.MarkCompleted(ctx, license.ID); err != nil {
		return err
	}

	// The license is committed; a failed confirmation email never undoes it.
	s.sendPurchaseEmail(ctx, license)

	return nil
}

func (s *licenseService) ListMine(ctx context.Context, buyerID uuid.UUID) ([]dto.LicenseResponse, error) {
	licenses, err := s.licenseRepo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.LicenseResponse, 0, len(licenses))
	for _, license := range licenses {
		responses = append(responses, dto.LicenseResponse{
			ID:          license.ID,
			TextID:      license.TextID,
			TextTitle:   license.Text.Title,
			LicenseType: license.LicenseType,
			AmountCents: license.AmountCents,
			Currency:    license.Currency,
			Status:      license.Status,
			CreatedAt:   license.CreatedAt,
		})
	}
	return responses, nil
}

func (s *licenseService) sendPurchaseEmail(ctx context.Context, license *model.License) {
	if s.mail == nil {
		return
	}

	buyer, err := s.userRepo.FindByID(ctx, license.BuyerID)
	if err != nil {
		log.Printf("failed to load buyer %s for purchase email: %v", license.BuyerID, err)
		return
	}

	author, err := s.userRepo.FindByID(ctx, license.AuthorID)
	if err != nil {
		log.Printf("failed to load author %s for purchase email: %v", license.AuthorID, err)
		return
	}

	if err := s.mail.SendLicensePurchase(buyer.Email, buyer.FirstName, license.Text.Title,
		author.FullName(), license.LicenseType, license.AmountCents); err != nil {
		log.Printf("failed to send license purchase email to %s: %v", buyer.Email, err)
	}
}
