package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/omkarr10/Vagabond/internal/domain"
	"github.com/omkarr10/Vagabond/internal/dto"
	"github.com/omkarr10/Vagabond/internal/password"
	"github.com/omkarr10/Vagabond/internal/repository"
	"github.com/omkarr10/Vagabond/internal/telemetry"
	"github.com/omkarr10/Vagabond/internal/token"
)

// AuthService defines the client-facing session contract. The server keeps
// no per-session state: every request is authenticated independently from
// its bearer token, and logout is purely a client-side operation.
type AuthService interface {
	// Register creates a new user and issues both tokens
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	// Login authenticates a user and issues both tokens
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	// Refresh mints a new access token from a valid refresh token
	Refresh(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error)
	// Verify validates an access token and returns its claims
	Verify(ctx context.Context, accessToken string) (*domain.Claims, error)
	// GetUser retrieves a user by ID, nil when not found
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *token.Manager
	hasher   *password.Hasher
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, tokens *token.Manager, hasher *password.Hasher) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		hasher:   hasher,
	}
}

// Register creates a new user. The existence pre-checks give friendly
// errors but are advisory only: under concurrent registration the unique
// indexes decide, and the insert's conflict error wins.
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.register")
	defer span.End()

	span.SetAttributes(attribute.String("username", req.Username))

	if exists, err := s.userRepo.ExistsByUsername(ctx, req.Username); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	} else if exists {
		span.SetStatus(codes.Error, "username taken")
		return nil, domain.ErrUserExists
	}

	if exists, err := s.userRepo.ExistsByEmail(ctx, req.Email); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	} else if exists {
		span.SetStatus(codes.Error, "email taken")
		return nil, domain.ErrUserExists
	}

	hashed, err := s.hasher.Hash(ctx, req.Password)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashed,
		Role:         domain.RoleUser,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	resp, err := s.issueTokens(user)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("user_id", user.ID))
	span.SetStatus(codes.Ok, "")
	return resp, nil
}

// Login authenticates by exact username match and bcrypt comparison.
// Unknown user and wrong password both surface as ErrInvalidCredentials.
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.login")
	defer span.End()

	span.SetAttributes(attribute.String("username", req.Username))

	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if user == nil {
		span.SetStatus(codes.Error, "user not found")
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.hasher.Compare(ctx, user.PasswordHash, req.Password); err != nil {
		span.SetStatus(codes.Error, "invalid credentials")
		return nil, err
	}

	resp, err := s.issueTokens(user)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("user_id", user.ID))
	span.SetStatus(codes.Ok, "")
	return resp, nil
}

// Refresh verifies the refresh token and mints a new access token. The role
// claim is re-derived from the user's current record, not copied from the
// original access token, so a role change takes effect on the next refresh.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.refresh")
	defer span.End()

	subjectID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		span.SetStatus(codes.Error, "invalid refresh token")
		return nil, err
	}

	span.SetAttributes(attribute.String("user_id", subjectID))

	user, err := s.userRepo.GetByID(ctx, subjectID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if user == nil {
		span.SetStatus(codes.Error, "subject not found")
		return nil, domain.ErrUserNotFound
	}

	accessToken, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &dto.RefreshResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.tokens.AccessTokenTTL().Seconds()),
	}, nil
}

// Verify validates an access token and returns its claims
func (s *authService) Verify(ctx context.Context, accessToken string) (*domain.Claims, error) {
	_, span := telemetry.StartSpan(ctx, "service.auth.verify")
	defer span.End()

	claims, err := s.tokens.Verify(accessToken)
	if err != nil {
		span.SetStatus(codes.Error, "invalid token")
		return nil, err
	}

	span.SetAttributes(attribute.String("user_id", claims.UserID))
	span.SetStatus(codes.Ok, "")
	return claims, nil
}

// GetUser retrieves a user by ID
func (s *authService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.get_user")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", id))

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return user, nil
}

func (s *authService) issueTokens(user *domain.User) (*dto.AuthResponse, error) {
	accessToken, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokens.IssueRefresh(user.ID)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.tokens.AccessTokenTTL().Seconds()),
		User:         dto.ToUserResponse(user),
	}, nil
}
