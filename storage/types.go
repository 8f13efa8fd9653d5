package storage

import (
	"errors"
	"slices"
	"time"
)

// ErrInvalidEntity is returned by Provisioner methods for an entity missing
// its identity key.
var ErrInvalidEntity = errors.New("storage: entity is missing its identifier")

// Client is a registered OAuth client.
type Client struct {
	ID string

	// RedirectURI is informational; codes carry their own binding.
	RedirectURI string

	// Grants lists the grant types the client may use. Empty denies all.
	Grants []string

	// User is the service account client_credentials tokens are bound to.
	// When nil the client acts as its own principal.
	User *User
}

// AllowsGrant reports whether grantType is in c.Grants.
func (c *Client) AllowsGrant(grantType string) bool {
	return c != nil && slices.Contains(c.Grants, grantType)
}

// User is a resource owner. Attributes carries application-defined fields.
type User struct {
	ID         string         `json:"id" yaml:"id"`
	Attributes map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// AuthorizationCode is issued by an authorization endpoint and redeemed
// once at the token endpoint. ExpiresAt must be set; a nil expiry is
// treated as already expired.
type AuthorizationCode struct {
	Code        string
	ClientID    string
	User        *User
	UserID      string
	ExpiresAt   *time.Time
	RedirectURI string
	Scope       string
}

// AccessToken is an issued bearer token. A nil ExpiresAt never expires.
type AccessToken struct {
	Token     string
	ClientID  string
	User      *User
	UserID    string
	ExpiresAt *time.Time
	Scope     string
}

// RefreshToken is an issued refresh token. A nil ExpiresAt never expires.
type RefreshToken struct {
	Token     string
	ClientID  string
	User      *User
	UserID    string
	ExpiresAt *time.Time
	Scope     string
}

// OwnerID returns the id of the user a code or token belongs to: User.ID
// when User is set, else userID.
func OwnerID(user *User, userID string) string {
	if user != nil && user.ID != "" {
		return user.ID
	}
	return userID
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// Clone returns a deep copy of u. Attribute values are copied shallowly.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	out := &User{ID: u.ID}
	if u.Attributes != nil {
		out.Attributes = make(map[string]any, len(u.Attributes))
		for k, v := range u.Attributes {
			out.Attributes[k] = v
		}
	}
	return out
}

// Clone returns a deep copy of c.
func (c *Client) Clone() *Client {
	if c == nil {
		return nil
	}
	out := *c
	out.Grants = slices.Clone(c.Grants)
	out.User = c.User.Clone()
	return &out
}

// Clone returns a deep copy of a.
func (a *AuthorizationCode) Clone() *AuthorizationCode {
	if a == nil {
		return nil
	}
	out := *a
	out.User = a.User.Clone()
	out.ExpiresAt = cloneTime(a.ExpiresAt)
	return &out
}

// Clone returns a deep copy of t.
func (t *AccessToken) Clone() *AccessToken {
	if t == nil {
		return nil
	}
	out := *t
	out.User = t.User.Clone()
	out.ExpiresAt = cloneTime(t.ExpiresAt)
	return &out
}

// Clone returns a deep copy of t.
func (t *RefreshToken) Clone() *RefreshToken {
	if t == nil {
		return nil
	}
	out := *t
	out.User = t.User.Clone()
	out.ExpiresAt = cloneTime(t.ExpiresAt)
	return &out
}
