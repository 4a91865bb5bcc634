package models

// User is owned by the membership service. The password is write-only and
// only ever travels in UserRequest.
type User struct {
	ID          int64  `json:"id" validate:"gt=0"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Active      *bool  `json:"active,omitempty"`
	Roles       string `json:"roles,omitempty"`
}

// IsActive treats a missing flag as active.
func (u *User) IsActive() bool {
	return u.Active == nil || *u.Active
}

// Validate checks a user decoded from the membership service.
func (u *User) Validate() error {
	return validateStruct(u)
}

// UserRequest is the create/update payload.
type UserRequest struct {
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Password    string `json:"password,omitempty"`
}

// Validate checks a user payload before it is sent.
func (r *UserRequest) Validate() error {
	return validateStruct(r)
}
