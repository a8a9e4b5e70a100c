package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/yatube/internal/apperror"
	"github.com/sakif/yatube/internal/auth"
	"github.com/sakif/yatube/internal/model"
	"github.com/sakif/yatube/internal/policy"
	"github.com/sakif/yatube/internal/repository"
	"github.com/sakif/yatube/internal/transform"
)

// Messages for failed authentication. They never say which half of the
// credentials was wrong.
const (
	MsgBadCredentials = "no active account found with the given credentials"
	MsgBadToken       = "token is invalid or expired"
)

// AuthService owns user accounts and token issuance.
//
//	UserHandler / AuthHandler (HTTP) → AuthService → UserRepository (DB)
//	                                              ↘ TokenService (JWT)
//	                                              ↘ PasswordService (bcrypt)
//
// Two identity providers feed it: username/password (Register + Token) and
// GitHub OAuth (LoginGitHub). Both end in the same JWT.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user with a freshly issued access token.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates a password account.
func (s *AuthService) Register(ctx context.Context, in *transform.RegisterPayload) (*model.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{Username: in.Username, Email: in.Email, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.ValidationFailed("username", "a user with that username already exists")
		}
		return nil, wrap(s.logger, "registering user", err, slog.String("username", in.Username))
	}

	s.logger.Info("user registered", slog.Int64("userID", user.ID), slog.String("username", user.Username))
	return user, nil
}

// Token checks a username and password and issues an access token.
func (s *AuthService) Token(ctx context.Context, in *transform.TokenPayload) (*AuthResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized(MsgBadCredentials)
		}
		return nil, wrap(s.logger, "loading user", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, in.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Info("rejected login", slog.String("username", in.Username))
			return nil, apperror.Unauthorized(MsgBadCredentials)
		}
		return nil, wrap(s.logger, "verifying password", err, slog.Int64("userID", user.ID))
	}

	return s.issue(user)
}

// Verify reports whether a token is currently valid for an existing user.
func (s *AuthService) Verify(ctx context.Context, in *transform.VerifyPayload) error {
	if err := in.Validate(); err != nil {
		return err
	}

	userID, err := s.tokens.Validate(in.Token)
	if err != nil {
		return apperror.Unauthorized(MsgBadToken)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.Unauthorized(MsgBadToken)
		}
		return wrap(s.logger, "loading token user", err)
	}
	return nil
}

// LoginGitHub signs in the owner of a GitHub profile, creating the local
// account on first login.
//
// The local username starts as the GitHub login. If a password account
// already holds that name, the GitHub account gets "<login>-gh<id>" instead
// of taking over someone else's account.
func (s *AuthService) LoginGitHub(ctx context.Context, profile *auth.GitHubProfile) (*AuthResult, error) {
	if profile == nil {
		return nil, errors.New("service/auth: GitHub profile must not be nil")
	}

	ghID := profile.ID
	user := &model.User{Username: profile.Login, Email: profile.Email, GitHubID: &ghID}

	err := s.users.UpsertGitHub(ctx, user)
	if errors.Is(err, apperror.ErrConflict) {
		user.Username = fmt.Sprintf("%s-gh%d", profile.Login, profile.ID)
		err = s.users.UpsertGitHub(ctx, user)
	}
	if err != nil {
		return nil, wrap(s.logger, "upserting GitHub user", err, slog.Int64("githubID", profile.ID))
	}

	s.logger.Info("user authenticated via GitHub",
		slog.Int64("userID", user.ID),
		slog.String("username", user.Username),
	)
	return s.issue(user)
}

// Me returns the account of the acting principal.
func (s *AuthService) Me(ctx context.Context, p *model.Principal) (*model.User, error) {
	if err := policy.Check(policy.Authenticated, p, policy.Retrieve); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, p.UserID)
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, wrap(s.logger, "issuing token", err, slog.Int64("userID", user.ID))
	}
	return &AuthResult{User: user, Token: token}, nil
}
