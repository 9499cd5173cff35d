package gateway

import (
	"context"
	"net/http"

	"github.com/The-synnapse-Project/front-end-sub000/internal"
	"github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/permission"
)

const permissionBasePath = "/api/permission"

func (c *Client) ListPermissions(ctx context.Context) ([]permission.Set, error) {
	var sets []permission.Set
	if err := c.do(ctx, http.MethodGet, permissionBasePath, nil, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

func (c *Client) GetPermission(ctx context.Context, id string) (*permission.Set, error) {
	var set permission.Set
	if err := c.do(ctx, http.MethodGet, permissionBasePath+"/"+pathEscape(id), nil, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

// GetPermissionByPerson fetches the person's permission record. Absence is
// not an error: a not-found answer yields the all-false set, per the
// bootstrap invariant that unknown means unprivileged.
func (c *Client) GetPermissionByPerson(ctx context.Context, personID string) (permission.Set, error) {
	var set permission.Set
	err := c.do(ctx, http.MethodGet, permissionBasePath+"/by-person/"+pathEscape(personID), nil, &set)
	if err != nil {
		if apiErr, ok := internal.AsAPIError(err); ok && apiErr.Category == internal.CategoryNotFound {
			return permission.None(personID), nil
		}
		return permission.Set{}, err
	}
	if set.PersonID == "" {
		set.PersonID = personID
	}
	return set, nil
}

func (c *Client) CreatePermission(ctx context.Context, set permission.Set) error {
	return c.do(ctx, http.MethodPost, permissionBasePath, set, nil)
}

// UpdatePermission applies a partial patch via read-modify-write; see update.
func (c *Client) UpdatePermission(ctx context.Context, id string, patch map[string]interface{}) error {
	return c.update(ctx, permissionBasePath+"/"+pathEscape(id), patch)
}
