package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nhle/planit/internal/model"
	"github.com/nhle/planit/internal/store"
)

// GroupService implements group use cases.
type GroupService struct {
	store  store.Store
	logger *log.Logger
}

// NewGroupService returns a GroupService. A nil logger discards output.
func NewGroupService(st store.Store, logger *log.Logger) *GroupService {
	_, logger = orDefault(nil, logger)
	return &GroupService{store: st, logger: logger}
}

// List returns all groups ordered by name.
func (s *GroupService) List(ctx context.Context) ([]model.Group, error) {
	return s.store.GetGroups(ctx)
}

// Get returns a single group.
func (s *GroupService) Get(ctx context.Context, id int64) (*model.Group, error) {
	return s.store.GetGroupByID(ctx, id)
}

// Create stores a new group. Any client-supplied ID is ignored.
func (s *GroupService) Create(ctx context.Context, name string) (*model.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", ErrValidation)
	}
	g, err := s.store.CreateGroup(ctx, model.Group{Name: name})
	if err != nil {
		return nil, err
	}
	s.logger.Info("group created", "id", g.ID, "name", g.Name)
	return g, nil
}

// Rename changes a group's name.
func (s *GroupService) Rename(ctx context.Context, id int64, name string) (*model.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", ErrValidation)
	}
	g := model.Group{ID: id, Name: name}
	if err := s.store.UpdateGroup(ctx, g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Delete removes a group. Its tasks stay, without a group.
func (s *GroupService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteGroup(ctx, id); err != nil {
		return err
	}
	s.logger.Info("group deleted", "id", id)
	return nil
}

// Names maps group IDs to names for display.
func (s *GroupService) Names(ctx context.Context) (map[int64]string, error) {
	groups, err := s.store.GetGroups(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(groups))
	for _, g := range groups {
		names[g.ID] = g.Name
	}
	return names, nil
}
