package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sakif/yatube/internal/apperror"
	"github.com/sakif/yatube/internal/model"
	"github.com/sakif/yatube/internal/policy"
	"github.com/sakif/yatube/internal/repository"
	"github.com/sakif/yatube/internal/transform"
)

// GroupService serves groups. Principals can only read them; Create and
// Delete are administrative and are called from the CLI, not from HTTP.
type GroupService struct {
	groups repository.GroupRepository
	logger *slog.Logger
}

func NewGroupService(groups repository.GroupRepository, logger *slog.Logger) *GroupService {
	return &GroupService{groups: groups, logger: logger}
}

func (s *GroupService) List(ctx context.Context, p *model.Principal) ([]model.Group, error) {
	if err := policy.Check(policy.ReadOnly, p, policy.List); err != nil {
		return nil, err
	}
	groups, err := s.groups.List(ctx)
	if err != nil {
		return nil, wrap(s.logger, "listing groups", err)
	}
	return groups, nil
}

func (s *GroupService) Get(ctx context.Context, p *model.Principal, id int64) (*model.Group, error) {
	if err := policy.Check(policy.ReadOnly, p, policy.Retrieve); err != nil {
		return nil, err
	}
	return s.groups.GetByID(ctx, id)
}

// Create adds a group. A taken slug is a validation error on "slug".
func (s *GroupService) Create(ctx context.Context, in *transform.GroupPayload) (*model.Group, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	group := &model.Group{Title: in.Title, Slug: in.Slug, Description: in.Description}
	if err := s.groups.Create(ctx, group); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.ValidationFailed("slug", "group with this slug already exists")
		}
		return nil, wrap(s.logger, "creating group", err, slog.String("slug", in.Slug))
	}

	s.logger.Info("group created", slog.Int64("id", group.ID), slog.String("slug", group.Slug))
	return group, nil
}

// Delete removes a group. Its posts stay, with their group cleared.
func (s *GroupService) Delete(ctx context.Context, id int64) error {
	if err := s.groups.Delete(ctx, id); err != nil {
		return wrap(s.logger, "deleting group", err, slog.Int64("id", id))
	}
	s.logger.Info("group deleted", slog.Int64("id", id))
	return nil
}
