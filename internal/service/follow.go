package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/yatube/internal/apperror"
	"github.com/sakif/yatube/internal/model"
	"github.com/sakif/yatube/internal/policy"
	"github.com/sakif/yatube/internal/repository"
	"github.com/sakif/yatube/internal/transform"
)

// Follow validation messages.
const (
	MsgSelfFollow      = "cannot follow yourself"
	MsgDuplicateFollow = "the fields user, following must make a unique set"
)

// FollowService implements the caller's own follow list. Both operations
// require authentication and only ever touch follows whose user is the
// caller.
type FollowService struct {
	follows repository.FollowRepository
	users   repository.UserRepository
	logger  *slog.Logger
}

func NewFollowService(follows repository.FollowRepository, users repository.UserRepository, logger *slog.Logger) *FollowService {
	return &FollowService{follows: follows, users: users, logger: logger}
}

// List returns the follows of p, optionally narrowed to targets whose
// username contains search (case-insensitive).
func (s *FollowService) List(ctx context.Context, p *model.Principal, search string) ([]model.Follow, error) {
	if err := policy.Check(policy.Authenticated, p, policy.List); err != nil {
		return nil, err
	}

	follows, err := s.follows.List(ctx, repository.FollowFilter{UserID: p.UserID, Search: search})
	if err != nil {
		return nil, wrap(s.logger, "listing follows", err, slog.Int64("userID", p.UserID))
	}
	return follows, nil
}

// Create makes p follow in.Following. The follower is always p; the body
// has no way to name anyone else. Self-follows and repeats are validation
// errors.
func (s *FollowService) Create(ctx context.Context, p *model.Principal, in *transform.FollowPayload) (*model.Follow, error) {
	if err := policy.Check(policy.Authenticated, p, policy.Create); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	target, err := s.users.GetByUsername(ctx, in.Following)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.ValidationFailed("following",
				fmt.Sprintf("object with username %q does not exist", in.Following))
		}
		return nil, wrap(s.logger, "resolving follow target", err)
	}

	follow := &model.Follow{FollowingID: target.ID, Following: target.Username}
	follow.UserID = p.UserID
	follow.User = p.Username

	if follow.UserID == follow.FollowingID {
		return nil, apperror.ValidationFailed(apperror.NonFieldErrors, MsgSelfFollow)
	}

	exists, err := s.follows.Exists(ctx, follow.UserID, follow.FollowingID)
	if err != nil {
		return nil, wrap(s.logger, "checking follow", err)
	}
	if exists {
		return nil, apperror.ValidationFailed(apperror.NonFieldErrors, MsgDuplicateFollow)
	}

	if err := s.follows.Create(ctx, follow); err != nil {
		// Lost a race with an identical request.
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.ValidationFailed(apperror.NonFieldErrors, MsgDuplicateFollow)
		}
		return nil, wrap(s.logger, "creating follow", err)
	}

	s.logger.Info("follow created",
		slog.String("user", follow.User),
		slog.String("following", follow.Following),
	)
	return follow, nil
}
