package person

import "github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/person"

// UpdatePersonDTO carries a partial profile patch. Nil fields are left
// untouched; the gateway merges the rest over the current record.
type UpdatePersonDTO struct {
	Name           *string `json:"name,omitempty"`
	Surname        *string `json:"surname,omitempty"`
	Email          *string `json:"email,omitempty"`
	Role           *string `json:"role,omitempty"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
}

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d UpdatePersonDTO) Validate() error {
	if d.Role != nil {
		if _, ok := person.ParseRole(*d.Role); !ok {
			return ValidationError{Msg: "unknown role"}
		}
	}
	return nil
}

// Patch converts the DTO to the gateway's merge shape. A patched role is
// stored in its canonical capitalized spelling.
func (d UpdatePersonDTO) Patch() map[string]interface{} {
	patch := map[string]interface{}{}
	if d.Name != nil {
		patch["name"] = *d.Name
	}
	if d.Surname != nil {
		patch["surname"] = *d.Surname
	}
	if d.Email != nil {
		patch["email"] = *d.Email
	}
	if d.Role != nil {
		if role, ok := person.ParseRole(*d.Role); ok {
			patch["role"] = string(role)
		}
	}
	if d.ProfilePicture != nil {
		patch["profile_picture"] = *d.ProfilePicture
	}
	return patch
}
