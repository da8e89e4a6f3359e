package auth

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pegrio/portal-backend/domain"
	"github.com/pegrio/portal-backend/repository"
)

// UseCase issues and revokes admin dashboard sessions. A session lives in
// Redis; the bearer token handed to the client is a JWT whose session_id
// claim points back at it.
type UseCase struct {
	sessions repository.SessionRepository
	password string
	secret   []byte
	issuer   string
	logger   *zap.Logger
}

func New(sessions repository.SessionRepository, password, secret, issuer string, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		sessions: sessions,
		password: password,
		secret:   []byte(secret),
		issuer:   issuer,
		logger:   logger,
	}
}

// Login validates the admin password and returns a signed session token.
func (uc *UseCase) Login(ctx context.Context, password string, ttl time.Duration) (string, *domain.AdminSession, error) {
	if uc.password == "" {
		return "", nil, domain.NewError(domain.ErrCodeInternal, "admin login is not configured")
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(uc.password)) != 1 {
		return "", nil, domain.ErrUnauthorized
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	session := &domain.AdminSession{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return "", nil, err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"session_id": session.ID,
		"iss":        uc.issuer,
		"exp":        session.ExpiresAt.Unix(),
		"iat":        session.CreatedAt.Unix(),
	})
	signed, err := token.SignedString(uc.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, session, nil
}

// ValidateSession confirms the session behind a JWT claim still exists.
func (uc *UseCase) ValidateSession(ctx context.Context, sessionID string) error {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return domain.ErrSessionNotFound
	}
	return nil
}

// Logout revokes the session.
func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}
