package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"entrepreneurhub/internal/event"
	"entrepreneurhub/internal/metrics"
	"entrepreneurhub/internal/model"
	"entrepreneurhub/internal/util"
	"entrepreneurhub/pkg/apierror"
)

const (
	DefaultHashCost = 10

	// bcrypt ignores input past this length.
	maxPasswordBytes = 72
)

const (
	AuditAuthRegister    = "auth.register"
	AuditAuthLogin       = "auth.login"
	AuditAuthLogout      = "auth.logout"
	AuditAuthCreateAdmin = "auth.create_admin"
)

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
}

type tokenIssuer interface {
	Issue(subject string) (string, error)
}

type AuthService struct {
	users     userStore
	tokens    tokenIssuer
	audit     *AuditService
	bus       event.Bus
	hashCost  int
	dummyHash []byte
	now       func() time.Time
}

type AuthOption func(*AuthService)

// WithHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func WithHashCost(cost int) AuthOption {
	return func(s *AuthService) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.hashCost = cost
		}
	}
}

func NewAuthService(users userStore, tokens tokenIssuer, audit *AuditService, bus event.Bus, opts ...AuthOption) (*AuthService, error) {
	s := &AuthService{
		users:    users,
		tokens:   tokens,
		audit:    audit,
		bus:      bus,
		hashCost: DefaultHashCost,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Unknown emails are compared against this hash so both login failures
	// cost the same.
	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	s.dummyHash = dummy

	return s, nil
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest, actor model.AuditActor) (model.AuthResult, error) {
	name := util.CleanLine(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return model.AuthResult{}, apierror.Validation("name, email and password are required", "")
	}
	if len(req.Password) > maxPasswordBytes {
		return model.AuthResult{}, apierror.Validation("password is too long", "password must be at most 72 bytes")
	}

	actor.Email = email
	fail := func(err error) (model.AuthResult, error) {
		outcome := metrics.OutcomeFailure
		if !errors.Is(err, model.ErrUserAlreadyExists) {
			outcome = metrics.OutcomeError
		}
		metrics.AuthAttempts.WithLabelValues("register", outcome).Inc()
		s.audit.Log(ctx, AuditAuthRegister, actor, model.AuditStatusFailure, email, nil, nil, err.Error())
		return model.AuthResult{}, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return fail(model.ErrUserAlreadyExists)
	} else if !errors.Is(err, model.ErrUserNotFound) {
		return fail(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return fail(fmt.Errorf("hash password: %w", err))
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleUser,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return fail(err)
	}

	result, err := s.issue(user)
	if err != nil {
		return fail(err)
	}

	metrics.AuthAttempts.WithLabelValues("register", metrics.OutcomeSuccess).Inc()
	actor.UserID, actor.Role = user.ID, user.Role
	s.audit.Log(ctx, AuditAuthRegister, actor, model.AuditStatusSuccess, email, nil, user.Identity(), "")
	s.publish(event.TypeUserRegistered, user.ID, user.Identity())

	return result, nil
}

// Login answers model.ErrInvalidCredentials for both an unknown email and a
// wrong password.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest, actor model.AuditActor) (model.AuthResult, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return model.AuthResult{}, apierror.Validation("email and password are required", "")
	}
	actor.Email = email

	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, model.ErrUserNotFound):
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
		return s.loginFailed(ctx, actor, model.ErrInvalidCredentials)
	case err != nil:
		return s.loginFailed(ctx, actor, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		actor.UserID = user.ID
		return s.loginFailed(ctx, actor, model.ErrInvalidCredentials)
	}

	result, err := s.issue(user)
	if err != nil {
		return s.loginFailed(ctx, actor, err)
	}

	metrics.AuthAttempts.WithLabelValues("login", metrics.OutcomeSuccess).Inc()
	actor.UserID, actor.Role = user.ID, user.Role
	s.audit.Log(ctx, AuditAuthLogin, actor, model.AuditStatusSuccess, email, nil, nil, "")

	return result, nil
}

func (s *AuthService) loginFailed(ctx context.Context, actor model.AuditActor, err error) (model.AuthResult, error) {
	outcome := metrics.OutcomeFailure
	if !errors.Is(err, model.ErrInvalidCredentials) {
		outcome = metrics.OutcomeError
	}
	metrics.AuthAttempts.WithLabelValues("login", outcome).Inc()
	s.audit.Log(ctx, AuditAuthLogin, actor, model.AuditStatusFailure, actor.Email, nil, nil, err.Error())
	return model.AuthResult{}, err
}

// CreateAdmin provisions an account with the admin role. It is meant for
// operators and issues no token.
func (s *AuthService) CreateAdmin(ctx context.Context, name string, email string, password string) (*model.User, error) {
	name = util.CleanLine(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, apierror.Validation("name, email and password are required", "")
	}
	if len(password) > maxPasswordBytes {
		return nil, apierror.Validation("password is too long", "password must be at most 72 bytes")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		CreatedAt:    s.now().UTC(),
	}
	actor := model.AuditActor{Email: email}
	if err := s.users.Create(ctx, user); err != nil {
		s.audit.Log(ctx, AuditAuthCreateAdmin, actor, model.AuditStatusFailure, email, nil, nil, err.Error())
		return nil, err
	}

	actor.UserID, actor.Role = user.ID, user.Role
	s.audit.Log(ctx, AuditAuthCreateAdmin, actor, model.AuditStatusSuccess, email, nil, user.Identity(), "")
	return user, nil
}

// Logout only records the event. Tokens are not revoked server-side.
func (s *AuthService) Logout(ctx context.Context, actor model.AuditActor) {
	s.audit.Log(ctx, AuditAuthLogout, actor, model.AuditStatusSuccess, "", nil, nil, "")
}

func (s *AuthService) issue(user *model.User) (model.AuthResult, error) {
	signed, err := s.tokens.Issue(user.ID)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("issue token: %w", err)
	}

	return model.AuthResult{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		Token: signed,
	}, nil
}

func (s *AuthService) publish(t event.Type, actorID string, payload any) {
	if s.bus != nil {
		s.bus.Publish(event.New(t, actorID, payload))
	}
}
