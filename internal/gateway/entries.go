package gateway

import (
	"context"
	"net/http"

	"github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/entry"
)

const entryBasePath = "/api/entry"

func (c *Client) ListEntries(ctx context.Context) ([]entry.Entry, error) {
	var entries []entry.Entry
	if err := c.do(ctx, http.MethodGet, entryBasePath, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) GetEntry(ctx context.Context, id string) (*entry.Entry, error) {
	var e entry.Entry
	if err := c.do(ctx, http.MethodGet, entryBasePath+"/"+pathEscape(id), nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) CreateEntry(ctx context.Context, e entry.Entry) error {
	return c.do(ctx, http.MethodPost, entryBasePath, e, nil)
}

// UpdateEntry applies a partial patch via read-modify-write; see update.
func (c *Client) UpdateEntry(ctx context.Context, id string, patch map[string]interface{}) error {
	return c.update(ctx, entryBasePath+"/"+pathEscape(id), patch)
}

func (c *Client) DeleteEntry(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, entryBasePath+"/"+pathEscape(id), nil, nil)
}

func (c *Client) EntriesByPerson(ctx context.Context, personID string) ([]entry.Entry, error) {
	var entries []entry.Entry
	if err := c.do(ctx, http.MethodGet, entryBasePath+"/by-person/"+pathEscape(personID), nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// EntriesByDate lists entries for a day; date uses entry.DateLayout.
func (c *Client) EntriesByDate(ctx context.Context, date string) ([]entry.Entry, error) {
	var entries []entry.Entry
	if err := c.do(ctx, http.MethodGet, entryBasePath+"/by-date/"+pathEscape(date), nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) EntriesByDateAndPerson(ctx context.Context, date, personID string) ([]entry.Entry, error) {
	var entries []entry.Entry
	path := entryBasePath + "/by-date/" + pathEscape(date) + "/" + pathEscape(personID)
	if err := c.do(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
