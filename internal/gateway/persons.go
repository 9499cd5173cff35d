package gateway

import (
	"context"
	"net/http"

	"github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/person"
)

const personBasePath = "/api/person"

func (c *Client) ListPersons(ctx context.Context) ([]person.Person, error) {
	var persons []person.Person
	if err := c.do(ctx, http.MethodGet, personBasePath, nil, &persons); err != nil {
		return nil, err
	}
	return persons, nil
}

func (c *Client) GetPerson(ctx context.Context, id string) (*person.Person, error) {
	var p person.Person
	if err := c.do(ctx, http.MethodGet, personBasePath+"/"+pathEscape(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreatePerson(ctx context.Context, p person.Person) error {
	return c.do(ctx, http.MethodPost, personBasePath, p, nil)
}

// UpdatePerson applies a partial patch via read-modify-write; see update.
func (c *Client) UpdatePerson(ctx context.Context, id string, patch map[string]interface{}) error {
	return c.update(ctx, personBasePath+"/"+pathEscape(id), patch)
}

func (c *Client) DeletePerson(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, personBasePath+"/"+pathEscape(id), nil, nil)
}
