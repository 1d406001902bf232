package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/angelmondragon/omnicart-backend/internal/users"
	pkgAuth "github.com/angelmondragon/omnicart-backend/pkg/auth"
	"github.com/angelmondragon/omnicart-backend/pkg/auth/session"
	"github.com/angelmondragon/omnicart-backend/pkg/clientstate"
	"github.com/angelmondragon/omnicart-backend/pkg/config"
	"github.com/angelmondragon/omnicart-backend/pkg/db"
	"github.com/angelmondragon/omnicart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/omnicart-backend/pkg/errors"
	"github.com/angelmondragon/omnicart-backend/pkg/logger"
	"github.com/angelmondragon/omnicart-backend/pkg/metrics"
	"github.com/angelmondragon/omnicart-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const invalidCredentialsMessage = "Invalid credentials"

type userRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) error
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	SessionManager sessionManager
	State          clientstate.Store
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	Logger         *logger.Logger
	Metrics        *metrics.StorefrontMetrics
}

// Service registers, signs in and signs out shoppers. Every sign-in also
// records the login marker keys in the visitor's client state.
type Service struct {
	users       userRepository
	session     sessionManager
	state       clientstate.Store
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
	metrics     *metrics.StorefrontMetrics
	now         func() time.Time
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (*Service, error) {
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "user repository is required")
	}
	if params.SessionManager == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "session manager is required")
	}
	if params.State == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "client state store is required")
	}
	return &Service{
		users:       params.UserRepo,
		session:     params.SessionManager,
		state:       params.State,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		logg:        params.Logger,
		metrics:     params.Metrics,
		now:         time.Now,
	}, nil
}

// Register creates an account and signs it in for session.
func (s *Service) Register(ctx context.Context, visitorSession string, req RegisterRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	if email == "" || name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and email are required")
	}
	if err := security.CheckPasswordComplexity(req.Password); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed").
			WithDetails(map[string]string{"password": err.Error()})
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check user email")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	user, err := s.users.Create(ctx, users.CreateUserDTO{Name: name, Email: email, PasswordHash: passwordHash})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return s.signIn(ctx, visitorSession, user)
}

// Login verifies credentials and signs the user in for session.
func (s *Service) Login(ctx context.Context, visitorSession string, req LoginRequest) (*AuthResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update last login")
	}
	user.LastLoginAt = &now
	return s.signIn(ctx, visitorSession, user)
}

// Logout revokes the access session named by accessID and clears the
// visitor's login keys. Cart and wishlist are kept.
func (s *Service) Logout(ctx context.Context, visitorSession, accessID string) error {
	if strings.TrimSpace(accessID) != "" {
		if err := s.session.Revoke(ctx, accessID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
		}
	}
	s.ClearClientAuth(ctx, visitorSession)
	return nil
}

// ClearClientAuth removes the login keys from the visitor's client state.
// Storage failures are logged and otherwise ignored.
func (s *Service) ClearClientAuth(ctx context.Context, visitorSession string) {
	if strings.TrimSpace(visitorSession) == "" {
		return
	}
	if err := clientstate.ClearAuth(ctx, s.state, visitorSession); err != nil {
		s.stateFailure(ctx, visitorSession, "clear_auth", err)
	}
}

func (s *Service) signIn(ctx context.Context, visitorSession string, user *models.User) (*AuthResponse, error) {
	now := s.now().UTC()
	accessID := session.NewAccessID()
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	if err := s.session.Generate(ctx, accessID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store access session")
	}

	if strings.TrimSpace(visitorSession) != "" {
		err := clientstate.SaveAuth(ctx, s.state, visitorSession, clientstate.AuthState{
			IsLoggedIn: true,
			Token:      token,
			UserName:   user.Name,
			UserEmail:  user.Email,
		})
		if err != nil {
			s.stateFailure(ctx, visitorSession, "save_auth", err)
		}
	}

	return &AuthResponse{
		AccessToken: token,
		ExpiresAt:   now.Add(s.jwtCfg.AccessTTL()),
		User:        users.FromModel(user),
	}, nil
}

func (s *Service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := strings.TrimSpace(email)
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByEmail(ctx, strings.ToLower(input))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}

func (s *Service) stateFailure(ctx context.Context, visitorSession, op string, err error) {
	s.metrics.IncStateFailure(op, "auth")
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
		"visitor_session": visitorSession,
		"state_op":        op,
		"error":           err.Error(),
	}), "client auth state unavailable")
}
