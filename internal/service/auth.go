package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"sangrachna/internal/auth"
	"sangrachna/internal/middleware"
	"sangrachna/internal/models"
	"sangrachna/internal/repository"
	"sangrachna/internal/validation"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	wsTicketTTL    = 30 * time.Second
	wsTicketPrefix = "ws_ticket:"
	revokedPrefix  = "blacklist:"
)

var errInvalidCredentials = models.NewUnauthorizedError("Invalid username or password")

// LoginResult is returned to the admin UI after a successful login.
type LoginResult struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Operator  *models.Operator `json:"operator"`
}

// AuthService authenticates operators and manages their accounts.
type AuthService struct {
	operators repository.OperatorRepository
	tokens    *auth.TokenIssuer
	rdb       *redis.Client
	now       func() time.Time
}

// NewAuthService returns an AuthService. rdb may be nil; token revocation and
// websocket tickets are then unavailable.
func NewAuthService(operators repository.OperatorRepository, tokens *auth.TokenIssuer, rdb *redis.Client) *AuthService {
	return &AuthService{operators: operators, tokens: tokens, rdb: rdb, now: time.Now}
}

// Login checks the password and issues a session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, models.NewValidationError("Username and password are required")
	}

	op, err := s.operators.GetByUsername(ctx, username)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errInvalidCredentials
		}
		return nil, models.NewStoreError("load operator", err)
	}
	if !op.Active || !auth.CheckPassword(op.PasswordHash, password) {
		middleware.Logger.WarnContext(ctx, "operator login rejected", "username", username)
		return nil, errInvalidCredentials
	}

	token, exp, err := s.tokens.Issue(op)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	now := s.now().UTC()
	if err := s.operators.TouchLogin(ctx, op.ID, now); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to record operator login", "username", username, "error", err)
	} else {
		op.LastLoginAt = &now
	}

	middleware.Logger.InfoContext(ctx, "operator logged in", "username", username)
	return &LoginResult{Token: token, ExpiresAt: exp, Operator: op}, nil
}

// Authenticate verifies a session token and re-checks that the account is
// still active.
func (s *AuthService) Authenticate(ctx context.Context, token string) (auth.Operator, *auth.Claims, error) {
	_, claims, err := s.tokens.Verify(token)
	if err != nil {
		return auth.Operator{}, nil, models.NewUnauthorizedError("Invalid or expired token")
	}
	if s.isRevoked(ctx, claims.ID) {
		return auth.Operator{}, nil, models.NewUnauthorizedError("Token has been revoked")
	}
	op, err := s.operatorByID(ctx, claims.Subject)
	if err != nil {
		return auth.Operator{}, nil, err
	}
	return op, claims, nil
}

func (s *AuthService) operatorByID(ctx context.Context, subject string) (auth.Operator, error) {
	id, err := uuid.Parse(subject)
	if err != nil {
		return auth.Operator{}, models.NewUnauthorizedError("Invalid token subject")
	}
	rec, err := s.operators.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return auth.Operator{}, models.NewUnauthorizedError("Operator account no longer exists")
		}
		return auth.Operator{}, models.NewStoreError("load operator", err)
	}
	op, err := auth.FromModel(rec)
	if err != nil {
		return auth.Operator{}, models.NewUnauthorizedError("Operator account is disabled")
	}
	return op, nil
}

func (s *AuthService) isRevoked(ctx context.Context, jti string) bool {
	if s.rdb == nil || jti == "" {
		return false
	}
	n, err := s.rdb.Exists(ctx, revokedPrefix+jti).Result()
	return err == nil && n > 0
}

// Logout revokes the token described by claims until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.rdb == nil || claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, revokedPrefix+claims.ID, "1", ttl).Err(); err != nil {
		return models.NewStoreError("revoke token", err)
	}
	return nil
}

// IssueWSTicket returns a single-use ticket for opening the operator websocket.
func (s *AuthService) IssueWSTicket(ctx context.Context, op auth.Operator) (string, error) {
	if err := requireOperator(op); err != nil {
		return "", err
	}
	if s.rdb == nil {
		return "", models.NewInternalError(errors.New("websocket tickets need redis"))
	}
	ticket := uuid.NewString()
	if err := s.rdb.Set(ctx, wsTicketPrefix+ticket, op.ID().String(), wsTicketTTL).Err(); err != nil {
		return "", models.NewStoreError("issue websocket ticket", err)
	}
	return ticket, nil
}

// RedeemWSTicket consumes ticket and returns the operator it was issued to.
func (s *AuthService) RedeemWSTicket(ctx context.Context, ticket string) (auth.Operator, error) {
	if s.rdb == nil || ticket == "" {
		return auth.Operator{}, models.NewUnauthorizedError("Invalid or expired WebSocket ticket")
	}
	subject, err := s.rdb.GetDel(ctx, wsTicketPrefix+ticket).Result()
	if err != nil {
		return auth.Operator{}, models.NewUnauthorizedError("Invalid or expired WebSocket ticket")
	}
	return s.operatorByID(ctx, subject)
}

// CreateOperator stores a new active operator account.
func (s *AuthService) CreateOperator(ctx context.Context, username, password string) (*models.Operator, error) {
	username = strings.TrimSpace(username)
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	op := &models.Operator{Username: username, PasswordHash: hash, Active: true}
	if err := s.operators.Create(ctx, op); err != nil {
		return nil, storeError("Operator", username, "create operator", err)
	}
	return op, nil
}

// EnsureOperator creates username unless it already exists.
func (s *AuthService) EnsureOperator(ctx context.Context, username, password string) (*models.Operator, bool, error) {
	existing, err := s.operators.GetByUsername(ctx, strings.TrimSpace(username))
	if err == nil {
		return existing, false, nil
	}
	if !repository.IsNotFound(err) {
		return nil, false, models.NewStoreError("load operator", err)
	}
	op, err := s.CreateOperator(ctx, username, password)
	if err != nil {
		return nil, false, err
	}
	return op, true, nil
}

// ListOperators returns every account ordered by username.
func (s *AuthService) ListOperators(ctx context.Context) ([]*models.Operator, error) {
	ops, err := s.operators.List(ctx)
	if err != nil {
		return nil, models.NewStoreError("list operators", err)
	}
	return ops, nil
}

// SetOperatorActive enables or disables an account.
func (s *AuthService) SetOperatorActive(ctx context.Context, username string, active bool) error {
	if err := s.operators.SetActive(ctx, username, active); err != nil {
		return storeError("Operator", username, "update operator", err)
	}
	return nil
}

// ResetPassword replaces an operator's password.
func (s *AuthService) ResetPassword(ctx context.Context, username, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := s.operators.SetPassword(ctx, username, hash); err != nil {
		return storeError("Operator", username, "reset password", err)
	}
	return nil
}
