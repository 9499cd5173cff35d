package permission

import (
	"context"
	"log/slog"

	"github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/permission"
	"github.com/The-synnapse-Project/front-end-sub000/internal/core/events"
)

// Backend is the slice of the gateway this module needs.
type Backend interface {
	ListPermissions(ctx context.Context) ([]permission.Set, error)
	GetPermission(ctx context.Context, id string) (*permission.Set, error)
	GetPermissionByPerson(ctx context.Context, personID string) (permission.Set, error)
	CreatePermission(ctx context.Context, set permission.Set) error
	UpdatePermission(ctx context.Context, id string, patch map[string]interface{}) error
	UpdatePerson(ctx context.Context, id string, patch map[string]interface{}) error
}

type Service struct {
	backend Backend
	bus     *events.Bus
	logger  *slog.Logger
}

func NewService(backend Backend, bus *events.Bus, logger *slog.Logger) *Service {
	return &Service{
		backend: backend,
		bus:     bus,
		logger:  logger,
	}
}

// List returns every permission set; informational, degrades to empty.
func (s *Service) List(ctx context.Context) []permission.Set {
	sets, err := s.backend.ListPermissions(ctx)
	if err != nil {
		s.logger.Error("permission list failed, degrading to empty", "error", err)
		return []permission.Set{}
	}
	return sets
}

// GetByPerson returns the person's flags; a missing record is the all-false
// set, not an error.
func (s *Service) GetByPerson(ctx context.Context, personID string) (permission.Set, error) {
	return s.backend.GetPermissionByPerson(ctx, personID)
}

// Update patches the flags of one permission record. When syncRole is set the
// stored role string is re-derived from the merged flags afterwards, keeping
// the two representations from drifting further apart. Derivation stays a
// display heuristic everywhere else.
func (s *Service) Update(ctx context.Context, id string, patch map[string]interface{}, syncRole bool) error {
	if err := s.backend.UpdatePermission(ctx, id, patch); err != nil {
		return err
	}

	set, err := s.backend.GetPermission(ctx, id)
	if err != nil {
		// The flag write went through; role sync and the change event are
		// best effort from here.
		s.logger.Warn("permission re-read after update failed", "permission_id", id, "error", err)
		s.bus.Publish(ctx, events.NewChange(events.PermissionChanged, id, ""))
		return nil
	}

	if syncRole {
		role := permission.RoleFromSet(*set)
		if err := s.backend.UpdatePerson(ctx, set.PersonID, map[string]interface{}{"role": string(role)}); err != nil {
			s.logger.Warn("role sync after permission update failed",
				"person_id", set.PersonID,
				"error", err)
		}
	}

	s.bus.Publish(ctx, events.NewChange(events.PermissionChanged, id, set.PersonID))
	return nil
}
