package app

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"shield-quiz-service/internal/domain"
)

// AuditRepository stores write-only registration and login records.
type AuditRepository interface {
	CreateRegistration(ctx context.Context, reg domain.Registration) (domain.Registration, error)
	CreateLoginAttempt(ctx context.Context, attempt domain.LoginAttempt) (domain.LoginAttempt, error)
}

// PasswordHasher turns a plain password into a stored hash.
type PasswordHasher func(password string) (string, error)

// BcryptHasher hashes with bcrypt at the default cost.
func BcryptHasher(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// RegistrationRequest is a sign-up as received from a client.
// Extra holds any top-level fields beyond the known ones; they end up in metadata.
type RegistrationRequest struct {
	Role     string
	FullName string
	Email    string
	Password string
	Metadata map[string]any
	Extra    map[string]any
}

// LoginRequest is a login as received from a client.
type LoginRequest struct {
	Role       string
	Identifier string
	Password   string
	Metadata   map[string]any
}

// AccountService records registrations and login attempts. It never authenticates.
type AccountService struct {
	audit AuditRepository
	hash  PasswordHasher
	now   func() time.Time
}

func NewAccountService(audit AuditRepository, hash PasswordHasher) *AccountService {
	if hash == nil {
		hash = BcryptHasher
	}
	return &AccountService{audit: audit, hash: hash, now: time.Now}
}

func (s *AccountService) Register(ctx context.Context, req RegistrationRequest) (domain.Registration, error) {
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = domain.RoleParent.String()
	}
	fullName := strings.TrimSpace(req.FullName)
	email := normalizeIdentifier(req.Email)
	if fullName == "" || email == "" || req.Password == "" {
		return domain.Registration{}, domain.Invalid("fullName, email, and password are required.")
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return domain.Registration{}, err
	}

	metadata := make(map[string]any, len(req.Metadata)+len(req.Extra))
	maps.Copy(metadata, req.Metadata)
	maps.Copy(metadata, req.Extra)

	return s.audit.CreateRegistration(ctx, domain.Registration{
		Role:         role,
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		Metadata:     metadata,
		CreatedAt:    s.now(),
	})
}

// RecordLogin stores the login request without the password and reports it as successful.
func (s *AccountService) RecordLogin(ctx context.Context, req LoginRequest) (domain.LoginAttempt, error) {
	role := strings.ToLower(strings.TrimSpace(req.Role))
	identifier := strings.TrimSpace(req.Identifier)
	if role == "" || identifier == "" || req.Password == "" {
		return domain.LoginAttempt{}, domain.Invalid("role, identifier, and password are required.")
	}

	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	return s.audit.CreateLoginAttempt(ctx, domain.LoginAttempt{
		Role:       role,
		Successful: true,
		Payload: map[string]any{
			"identifier": identifier,
			"metadata":   metadata,
		},
		CreatedAt: s.now(),
	})
}
