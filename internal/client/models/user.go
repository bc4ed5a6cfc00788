// Package models defines the client-side data model: the user profile, the
// credential pair, and the request payloads accepted by the auth endpoints.
// Field names follow the backend wire format.
package models

// Profile is the user record returned by the backend. Optional physical
// attributes are pointers so a PATCH payload can distinguish "unset" from
// zero values.
type Profile struct {
	ID             int64    `json:"id"`
	Username       string   `json:"username"`
	Email          string   `json:"email"`
	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	FullName       string   `json:"full_name,omitempty"`
	DOB            string   `json:"dob,omitempty"`
	Height         *float64 `json:"height,omitempty"`
	CurrWeight     *float64 `json:"currWeight,omitempty"`
	ActivityLevel  string   `json:"activityLevel,omitempty"`
	UnitPreference string   `json:"unitPreference,omitempty"`
	DateJoined     string   `json:"date_joined,omitempty"`
	LastLogin      string   `json:"last_login,omitempty"`
}

// Credentials is the bearer token pair issued by the backend. Both values are
// opaque; expiry is discovered by a rejected request, not tracked here.
type Credentials struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// LoginCredentials is the payload for POST /auth/login/.
type LoginCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterData is the payload for POST /auth/registration/.
type RegisterData struct {
	Username       string   `json:"username"`
	Email          string   `json:"email"`
	Password1      string   `json:"password1"`
	Password2      string   `json:"password2"`
	FirstName      string   `json:"first_name,omitempty"`
	LastName       string   `json:"last_name,omitempty"`
	DOB            string   `json:"dob,omitempty"`
	Height         *float64 `json:"height,omitempty"`
	CurrWeight     *float64 `json:"currWeight,omitempty"`
	ActivityLevel  string   `json:"activityLevel,omitempty"`
	UnitPreference string   `json:"unitPreference,omitempty"`
}

// ProfileUpdate is a partial profile for PATCH /users/profile/update/.
// Only non-nil fields are sent.
type ProfileUpdate struct {
	Email          *string  `json:"email,omitempty"`
	FirstName      *string  `json:"first_name,omitempty"`
	LastName       *string  `json:"last_name,omitempty"`
	DOB            *string  `json:"dob,omitempty"`
	Height         *float64 `json:"height,omitempty"`
	CurrWeight     *float64 `json:"currWeight,omitempty"`
	ActivityLevel  *string  `json:"activityLevel,omitempty"`
	UnitPreference *string  `json:"unitPreference,omitempty"`
}
