package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/recantodospoetas/backend/pkg/apperror"
)

// Kind discriminates the token families. Each kind has its own verification
// entry point, so a token minted for one flow can never be accepted by
// another even with a valid signature.
type Kind string

const (
	KindAccess            Kind = "access"
	KindRefresh           Kind = "refresh"
	KindEmailVerification Kind = "email_verification"
	KindPasswordReset     Kind = "password_reset"
)

// Claims is the signed payload for every token family. Email and Role are only
// populated on access tokens.
type Claims struct {
	Kind  Kind   `json:"kind"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Manager issues and verifies the four token families. The refresh family
// signs with its own secret so a leaked access secret cannot mint long-lived
// credentials.
type Manager struct {
	secret          []byte
	refreshSecret   []byte
	accessTTL       time.Duration
	refreshTTL      time.Duration
	verificationTTL time.Duration
	resetTTL        time.Duration
}

func NewManager(secret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		secret:          []byte(secret),
		refreshSecret:   []byte(refreshSecret),
		accessTTL:       accessTTL,
		refreshTTL:      refreshTTL,
		verificationTTL: 24 * time.Hour,
		resetTTL:        time.Hour,
	}
}

// IssueAccess embeds the caller's identity for request authentication.
func (m *Manager) IssueAccess(userID uuid.UUID, email, role string) (string, error) {
	return m.sign(m.secret, Claims{
		Kind:  KindAccess,
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
}

// IssueRefresh embeds the user id only.
func (m *Manager) IssueRefresh(userID uuid.UUID) (string, error) {
	return m.sign(m.refreshSecret, Claims{
		Kind: KindRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
}

// IssueEmailVerification mints a single-purpose token valid for 24 hours.
func (m *Manager) IssueEmailVerification(userID uuid.UUID) (string, error) {
	return m.signPurpose(userID, KindEmailVerification, m.verificationTTL)
}

// IssuePasswordReset mints a single-purpose token valid for one hour.
func (m *Manager) IssuePasswordReset(userID uuid.UUID) (string, error) {
	return m.signPurpose(userID, KindPasswordReset, m.resetTTL)
}

func (m *Manager) VerifyAccess(token string) (*Claims, error) {
	return m.verify(token, m.secret, KindAccess)
}

func (m *Manager) VerifyRefresh(token string) (*Claims, error) {
	return m.verify(token, m.refreshSecret, KindRefresh)
}

func (m *Manager) VerifyEmailVerification(token string) (*Claims, error) {
	return m.verify(token, m.secret, KindEmailVerification)
}

func (m *Manager) VerifyPasswordReset(token string) (*Claims, error) {
	return m.verify(token, m.secret, KindPasswordReset)
}

func (m *Manager) signPurpose(userID uuid.UUID, kind Kind, ttl time.Duration) (string, error) {
	return m.sign(m.secret, Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
}

func (m *Manager) sign(secret []byte, claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// verify folds every failure mode (bad signature, expiry, wrong kind) into a
// single unauthorized error so callers cannot leak which check failed.
func (m *Manager) verify(tokenString string, secret []byte, expected Kind) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperror.Wrap(apperror.ErrUnauthorized, "token inválido ou expirado")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Kind != expected {
		return nil, apperror.Wrap(apperror.ErrUnauthorized, "token inválido ou expirado")
	}

	return claims, nil
}

// Subject parses the user id carried by the claims.
func (c *Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}
	return id, nil
}
