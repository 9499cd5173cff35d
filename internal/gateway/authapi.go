package gateway

import (
	"context"
	"net/http"

	"github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/person"
)

const authBasePath = "/api/auth"

// AuthResult is the backend's answer to an auth operation. OK is false for
// any status other than "ok"; Message, when present, is backend-supplied and
// safe to log but not to surface to the end user.
type AuthResult struct {
	OK      bool
	Message string
}

// GoogleAuthResult is the answer to the federated helper endpoints. User is
// only present when the backend recognized or created the account.
type GoogleAuthResult struct {
	OK      bool
	Message string
	User    *person.Person
}

type credentialLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	GoogleID string `json:"google_id,omitempty"`
}

type changePasswordRequest struct {
	Email       string `json:"email"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type googleAuthRequest struct {
	GoogleID string `json:"google_id"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Surname  string `json:"surname,omitempty"`
}

type googleAuthResponse struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	User    *person.Person `json:"user,omitempty"`
}

// Login verifies credentials. It does not return a person id; callers that
// need one must list persons and match by email.
func (c *Client) Login(ctx context.Context, email, password string) (AuthResult, error) {
	var resp statusResponse
	err := c.do(ctx, http.MethodPost, authBasePath+"/login", credentialLoginRequest{
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{OK: resp.OK(), Message: resp.Message}, nil
}

func (c *Client) Register(ctx context.Context, name, surname, email, password string) (AuthResult, error) {
	var resp statusResponse
	err := c.do(ctx, http.MethodPost, authBasePath+"/register", registerRequest{
		Name:     name,
		Surname:  surname,
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{OK: resp.OK(), Message: resp.Message}, nil
}

// RegisterFederated creates a person with no password and the provider id
// attached. The backend does not return the new record's id.
func (c *Client) RegisterFederated(ctx context.Context, name, surname, email, googleID string) (AuthResult, error) {
	var resp statusResponse
	err := c.do(ctx, http.MethodPost, authBasePath+"/register", registerRequest{
		Name:     name,
		Surname:  surname,
		Email:    email,
		GoogleID: googleID,
	}, &resp)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{OK: resp.OK(), Message: resp.Message}, nil
}

func (c *Client) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) (AuthResult, error) {
	var resp statusResponse
	err := c.do(ctx, http.MethodPost, authBasePath+"/change-password", changePasswordRequest{
		Email:       email,
		OldPassword: oldPassword,
		NewPassword: newPassword,
	}, &resp)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{OK: resp.OK(), Message: resp.Message}, nil
}

// LoginWithGoogle looks a person up by provider account id. A non-ok status
// means the id is unknown; callers fall through to RegisterWithGoogle before
// concluding failure. Safe to retry.
func (c *Client) LoginWithGoogle(ctx context.Context, googleID, email string) (GoogleAuthResult, error) {
	var resp googleAuthResponse
	err := c.do(ctx, http.MethodPost, authBasePath+"/google-login", googleAuthRequest{
		GoogleID: googleID,
		Email:    email,
	}, &resp)
	if err != nil {
		return GoogleAuthResult{}, err
	}
	return GoogleAuthResult{OK: resp.Status == "ok", Message: resp.Message, User: resp.User}, nil
}

// RegisterWithGoogle registers or adopts an account for the provider id.
// Idempotent from the caller's perspective; the user field may be absent even
// on success.
func (c *Client) RegisterWithGoogle(ctx context.Context, googleID, email, name, surname string) (GoogleAuthResult, error) {
	var resp googleAuthResponse
	err := c.do(ctx, http.MethodPost, authBasePath+"/google-register", googleAuthRequest{
		GoogleID: googleID,
		Email:    email,
		Name:     name,
		Surname:  surname,
	}, &resp)
	if err != nil {
		return GoogleAuthResult{}, err
	}
	return GoogleAuthResult{OK: resp.Status == "ok", Message: resp.Message, User: resp.User}, nil
}

// UpdateGoogleID links a provider account id to an existing person.
func (c *Client) UpdateGoogleID(ctx context.Context, personID, googleID string) error {
	var resp statusResponse
	return c.do(ctx, http.MethodPost, authBasePath+"/update-google-id", map[string]string{
		"person_id": personID,
		"google_id": googleID,
	}, &resp)
}
