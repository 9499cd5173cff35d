package auth

import "github.com/The-synnapse-Project/front-end-sub000/internal/session"

// LoginDTO is the transport shape for credential sign-in.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleLoginDTO is the transport shape for a federated sign-in assertion.
type GoogleLoginDTO struct {
	Provider          string `json:"provider"`
	ProviderAccountID string `json:"provider_account_id"`
	Email             string `json:"email"`
	Name              string `json:"name"`
}

// RegisterDTO is the transport shape for credential registration.
type RegisterDTO struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordDTO is the transport shape for a password change.
type ChangePasswordDTO struct {
	Email       string `json:"email"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// SessionResponse carries the signed token together with its projection.
type SessionResponse struct {
	Token   string           `json:"token"`
	Session *session.Session `json:"session"`
}

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d LoginDTO) Validate() error {
	if d.Email == "" {
		return ValidationError{Msg: "email is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	return nil
}

func (d GoogleLoginDTO) Validate() error {
	if d.Provider != "google" {
		return ValidationError{Msg: "unsupported provider"}
	}
	if d.ProviderAccountID == "" {
		return ValidationError{Msg: "provider_account_id is required"}
	}
	if d.Email == "" {
		return ValidationError{Msg: "email is required"}
	}
	return nil
}

func (d RegisterDTO) Validate() error {
	if d.Name == "" {
		return ValidationError{Msg: "name is required"}
	}
	if d.Email == "" {
		return ValidationError{Msg: "email is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	return nil
}

func (d ChangePasswordDTO) Validate() error {
	if d.Email == "" {
		return ValidationError{Msg: "email is required"}
	}
	if d.OldPassword == "" {
		return ValidationError{Msg: "old_password is required"}
	}
	if d.NewPassword == "" {
		return ValidationError{Msg: "new_password is required"}
	}
	return nil
}
