package model

// User is the identity-provider principal for the signed-in user. The
// provider guarantees ID; the display fields may be empty depending on how
// the account was created.
type User struct {
	ID       string
	Name     string
	Email    string
	ImageURL string
}

// IsZero reports whether no signed-in user is present.
func (u User) IsZero() bool {
	return u.ID == ""
}

// DisplayName returns the best available human-readable name, falling back
// to the email address.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if u.Email != "" {
		return u.Email
	}
	return "Unknown"
}

// ApplicationRequest carries the volunteer-supplied fields of an application
// form submission.
type ApplicationRequest struct {
	Phone   string
	Message string
}
