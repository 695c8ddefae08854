package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/recantodospoetas/backend/internal/dto"
	"github.com/recantodospoetas/backend/internal/model"
	"github.com/recantodospoetas/backend/internal/repository"
	"github.com/recantodospoetas/backend/pkg/apperror"
	"github.com/recantodospoetas/backend/pkg/mailer"
	"github.com/recantodospoetas/backend/pkg/token"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Dummy hash compared when the email is unknown, so login takes the same time
// whether or not the account exists.
const dummyBcryptHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

const resetRequestedMessage = "se o email existe em nossa base, um link de reset foi enviado"

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	VerifyEmail(ctx context.Context, tokenString string) (*dto.UserResponse, error)
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, tokenString, newPassword string) (*dto.UserResponse, error)
	CurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req dto.UpdateProfileRequest) (*dto.UserResponse, error)
	PromoteToAuthor(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
}

type authService struct {
	repo        repository.UserRepository
	tokens      *token.Manager
	mail        mailer.Mailer
	frontendURL string
}

func NewAuthService(repo repository.UserRepository, tokens *token.Manager, mail mailer.Mailer, frontendURL string) AuthService {
	return &authService{
		repo:        repo,
		tokens:      tokens,
		mail:        mail,
		frontendURL: frontendURL,
	}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	// Emails are normalized to lowercase everywhere, so the unique index
	// applies to the normalized form.
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, apperror.Wrap(apperror.ErrConflict, "email já cadastrado")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         model.RoleReader,
		IsActive:     true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Wrap(apperror.ErrConflict, "email já cadastrado")
		}
		return nil, err
	}

	// The registration is committed; a failed verification email is reported
	// in the logs, never to the caller.
	s.sendVerificationEmail(user)

	return s.buildAuthResponse(user, "usuário registrado com sucesso, verifique seu email")
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, findErr := s.repo.FindByEmail(ctx, email)

	passwordHash := dummyBcryptHash
	if findErr == nil {
		passwordHash = user.PasswordHash
	}

	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password))
	if findErr != nil || compareErr != nil {
		return nil, apperror.Wrap(apperror.ErrUnauthorized, "email ou senha inválidos")
	}

	if !user.IsActive {
		return nil, apperror.Wrap(apperror.ErrForbidden, "conta desativada")
	}

	return s.buildAuthResponse(user, "login realizado com sucesso")
}

func (s *authService) VerifyEmail(ctx context.Context, tokenString string) (*dto.UserResponse, error) {
	claims, err := s.tokens.VerifyEmailVerification(tokenString)
	if err != nil {
		return nil, err
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, err
	}

	user, err := s.repo.MarkEmailVerified(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// RequestPasswordReset returns the same message whether or not the account
// exists, so the endpoint cannot be used to probe for registered emails.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.FindByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return resetRequestedMessage, nil
		}
		return "", err
	}

	resetToken, err := s.tokens.IssuePasswordReset(user.ID)
	if err != nil {
		return "", err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, resetToken)
	if s.mail != nil {
		if err := s.mail.SendPasswordReset(user.Email, user.FirstName, link); err != nil {
			log.Printf("failed to send password reset email to %s: %v", user.Email, err)
		}
	}

	return resetRequestedMessage, nil
}

func (s *authService) ResetPassword(ctx context.Context, tokenString, newPassword string) (*dto.UserResponse, error) {
	claims, err := s.tokens.VerifyPasswordReset(tokenString)
	if err != nil {
		return nil, err
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.repo.SetPasswordHash(ctx, userID, string(hashed)); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *authService) CurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "usuário não encontrado")
		}
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID uuid.UUID, req dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	fields := map[string]interface{}{}
	if req.FirstName != nil {
		fields["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		fields["last_name"] = *req.LastName
	}
	if req.Bio != nil {
		fields["bio"] = *req.Bio
	}
	if req.ProfilePicture != nil {
		fields["profile_picture"] = *req.ProfilePicture
	}

	user, err := s.repo.UpdateProfile(ctx, userID, fields)
	if err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *authService) PromoteToAuthor(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.repo.PromoteRole(ctx, userID, model.RoleAuthor)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "usuário não encontrado")
		}
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *authService) sendVerificationEmail(user *model.User) {
	if s.mail == nil {
		return
	}

	verificationToken, err := s.tokens.IssueEmailVerification(user.ID)
	if err != nil {
		log.Printf("failed to issue verification token for %s: %v", user.Email, err)
		return
	}

	link := fmt.Sprintf("%s/verify-email?token=%s", s.frontendURL, verificationToken)
	if err := s.mail.SendVerification(user.Email, user.FirstName, link); err != nil {
		log.Printf("failed to send verification email to %s: %v", user.Email, err)
	}
}

func (s *authService) buildAuthResponse(user *model.User, message string) (*dto.AuthResponse, error) {
	accessToken, err := s.tokens.IssueAccess(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokens.IssueRefresh(user.ID)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Message:      message,
		User:         toUserResponse(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func toUserResponse(user *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:             user.ID,
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Role:           user.Role,
		Bio:            user.Bio,
		ProfilePicture: user.ProfilePicture,
		EmailVerified:  user.EmailVerified,
		IsActive:       user.IsActive,
		CreatedAt:      user.CreatedAt,
	}
}
