package entry

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/entry"
	"github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/person"
	"github.com/The-synnapse-Project/front-end-sub000/internal/core/events"
)

// Backend is the slice of the gateway this module needs.
type Backend interface {
	ListPersons(ctx context.Context) ([]person.Person, error)
	CreateEntry(ctx context.Context, e entry.Entry) error
	UpdateEntry(ctx context.Context, id string, patch map[string]interface{}) error
	DeleteEntry(ctx context.Context, id string) error
	EntriesByPerson(ctx context.Context, personID string) ([]entry.Entry, error)
	EntriesByDate(ctx context.Context, date string) ([]entry.Entry, error)
	EntriesByDateAndPerson(ctx context.Context, date, personID string) ([]entry.Entry, error)
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

// ByDate lists a day's entries for the dashboard. Informational: a gateway
// failure degrades to an empty list with a logged error.
func (s *Service) ByDate(ctx context.Context, date string) []entry.Entry {
	entries, err := s.backend.EntriesByDate(ctx, date)
	if err != nil {
		s.logger.Error("entries by date failed, degrading to empty", "date", date, "error", err)
		return []entry.Entry{}
	}
	return entries
}

func (s *Service) ByPerson(ctx context.Context, personID string) []entry.Entry {
	entries, err := s.backend.EntriesByPerson(ctx, personID)
	if err != nil {
		s.logger.Error("entries by person failed, degrading to empty",
			"person_id", personID,
			"error", err)
		return []entry.Entry{}
	}
	return entries
}

func (s *Service) ByDateAndPerson(ctx context.Context, date, personID string) []entry.Entry {
	entries, err := s.backend.EntriesByDateAndPerson(ctx, date, personID)
	if err != nil {
		s.logger.Error("entries by date and person failed, degrading to empty",
			"date", date,
			"person_id", personID,
			"error", err)
		return []entry.Entry{}
	}
	return entries
}

// Mark records an attendance event now for the given person.
func (s *Service) Mark(ctx context.Context, personID string, action entry.Action, instant time.Time) error {
	if instant.IsZero() {
		instant = time.Now()
	}

	e := entry.Entry{
		PersonID: personID,
		Instant:  instant,
		Action:   action,
	}
	if err := s.backend.CreateEntry(ctx, e); err != nil {
		return err
	}

	s.bus.Publish(ctx, events.NewChange(events.EntryChanged, "", personID))
	return nil
}

func (s *Service) Update(ctx context.Context, id string, patch map[string]interface{}) error {
	if err := s.backend.UpdateEntry(ctx, id, patch); err != nil {
		return err
	}
	s.bus.Publish(ctx, events.NewChange(events.EntryChanged, id, ""))
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.backend.DeleteEntry(ctx, id); err != nil {
		return err
	}
	s.bus.Publish(ctx, events.NewChange(events.EntryChanged, id, ""))
	return nil
}

// ReportRow summarizes one person's day: first entry, last exit, event count.
type ReportRow struct {
	PersonID   string     `json:"person_id"`
	Name       string     `json:"name"`
	Surname    string     `json:"surname"`
	FirstEntry *time.Time `json:"first_entry,omitempty"`
	LastExit   *time.Time `json:"last_exit,omitempty"`
	Events     int        `json:"events"`
}

// DailyReport aggregates a day's entries per person, joined with person names
// when the person list is reachable. Informational: failures degrade to an
// empty report.
func (s *Service) DailyReport(ctx context.Context, date string) []ReportRow {
	entries, err := s.backend.EntriesByDate(ctx, date)
	if err != nil {
		s.logger.Error("daily report fetch failed, degrading to empty", "date", date, "error", err)
		return []ReportRow{}
	}

	names := map[string]person.Person{}
	if persons, err := s.backend.ListPersons(ctx); err != nil {
		s.logger.Error("person list for report failed, rows will lack names", "error", err)
	} else {
		for _, p := range persons {
			names[p.ID] = p
		}
	}

	rows := map[string]*ReportRow{}
	for _, e := range entries {
		row, ok := rows[e.PersonID]
		if !ok {
			row = &ReportRow{PersonID: e.PersonID}
			if p, found := names[e.PersonID]; found {
				row.Name = p.Name
				row.Surname = p.Surname
			}
			rows[e.PersonID] = row
		}

		row.Events++
		instant := e.Instant
		switch e.Action {
		case entry.ActionEntry:
			if row.FirstEntry == nil || instant.Before(*row.FirstEntry) {
				row.FirstEntry = &instant
			}
		case entry.ActionExit:
			if row.LastExit == nil || instant.After(*row.LastExit) {
				row.LastExit = &instant
			}
		}
	}

	report := make([]ReportRow, 0, len(rows))
	for _, row := range rows {
		report = append(report, *row)
	}
	sort.Slice(report, func(i, j int) bool {
		if report[i].Surname != report[j].Surname {
			return report[i].Surname < report[j].Surname
		}
		return report[i].PersonID < report[j].PersonID
	})

	return report
}
