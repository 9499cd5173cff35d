package person

import (
	"context"
	"log/slog"

	"github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/person"
	"github.com/The-synnapse-Project/front-end-sub000/internal/core/events"
)

// Backend is the slice of the gateway this module needs.
type Backend interface {
	ListPersons(ctx context.Context) ([]person.Person, error)
	GetPerson(ctx context.Context, id string) (*person.Person, error)
	UpdatePerson(ctx context.Context, id string, patch map[string]interface{}) error
	DeletePerson(ctx context.Context, id string) error
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

// List returns every person. Feeds informational tables only, so a gateway
// failure degrades to an empty list with a logged error.
func (s *Service) List(ctx context.Context) []person.Person {
	persons, err := s.backend.ListPersons(ctx)
	if err != nil {
		s.logger.Error("person list failed, degrading to empty", "error", err)
		return []person.Person{}
	}
	return persons
}

func (s *Service) Get(ctx context.Context, id string) (*person.Person, error) {
	return s.backend.GetPerson(ctx, id)
}

// Update applies a profile or role patch and announces the change.
func (s *Service) Update(ctx context.Context, id string, patch map[string]interface{}) error {
	if err := s.backend.UpdatePerson(ctx, id, patch); err != nil {
		return err
	}
	s.bus.Publish(ctx, events.NewChange(events.PersonChanged, id, id))
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.backend.DeletePerson(ctx, id); err != nil {
		return err
	}
	s.bus.Publish(ctx, events.NewChange(events.PersonChanged, id, id))
	return nil
}
