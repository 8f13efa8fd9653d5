package kv

import (
	"time"

	"github.com/giantswarm/oauth2-engine/storage"
)

// Stored records. Field names are part of the persisted format.

type clientRecord struct {
	ID          string        `json:"id"`
	SecretHash  string        `json:"secret_hash,omitempty"`
	RedirectURI string        `json:"redirect_uri,omitempty"`
	Grants      []string      `json:"grants,omitempty"`
	User        *storage.User `json:"user,omitempty"`
}

func (r *clientRecord) client() *storage.Client {
	return &storage.Client{
		ID:          r.ID,
		RedirectURI: r.RedirectURI,
		Grants:      r.Grants,
		User:        r.User,
	}
}

type userRecord struct {
	User         *storage.User `json:"user"`
	PasswordHash string        `json:"password_hash,omitempty"`
}

type codeRecord struct {
	Code        string        `json:"code"`
	ClientID    string        `json:"client_id"`
	User        *storage.User `json:"user,omitempty"`
	UserID      string        `json:"user_id,omitempty"`
	ExpiresAt   *time.Time    `json:"expires_at,omitempty"`
	RedirectURI string        `json:"redirect_uri,omitempty"`
	Scope       string        `json:"scope,omitempty"`
}

func newCodeRecord(c *storage.AuthorizationCode) *codeRecord {
	return &codeRecord{
		Code:        c.Code,
		ClientID:    c.ClientID,
		User:        c.User,
		UserID:      c.UserID,
		ExpiresAt:   c.ExpiresAt,
		RedirectURI: c.RedirectURI,
		Scope:       c.Scope,
	}
}

func (r *codeRecord) authCode() *storage.AuthorizationCode {
	return &storage.AuthorizationCode{
		Code:        r.Code,
		ClientID:    r.ClientID,
		User:        r.User,
		UserID:      r.UserID,
		ExpiresAt:   r.ExpiresAt,
		RedirectURI: r.RedirectURI,
		Scope:       r.Scope,
	}
}

// tokenRecord is shared by access and refresh tokens.
type tokenRecord struct {
	Token     string        `json:"token"`
	ClientID  string        `json:"client_id"`
	User      *storage.User `json:"user,omitempty"`
	UserID    string        `json:"user_id,omitempty"`
	ExpiresAt *time.Time    `json:"expires_at,omitempty"`
	Scope     string        `json:"scope,omitempty"`
}

func newAccessRecord(t *storage.AccessToken) *tokenRecord {
	return &tokenRecord{
		Token:     t.Token,
		ClientID:  t.ClientID,
		User:      t.User,
		UserID:    t.UserID,
		ExpiresAt: t.ExpiresAt,
		Scope:     t.Scope,
	}
}

func newRefreshRecord(t *storage.RefreshToken) *tokenRecord {
	return &tokenRecord{
		Token:     t.Token,
		ClientID:  t.ClientID,
		User:      t.User,
		UserID:    t.UserID,
		ExpiresAt: t.ExpiresAt,
		Scope:     t.Scope,
	}
}

func (r *tokenRecord) accessToken() *storage.AccessToken {
	return &storage.AccessToken{
		Token:     r.Token,
		ClientID:  r.ClientID,
		User:      r.User,
		UserID:    r.UserID,
		ExpiresAt: r.ExpiresAt,
		Scope:     r.Scope,
	}
}

func (r *tokenRecord) refreshToken() *storage.RefreshToken {
	return &storage.RefreshToken{
		Token:     r.Token,
		ClientID:  r.ClientID,
		User:      r.User,
		UserID:    r.UserID,
		ExpiresAt: r.ExpiresAt,
		Scope:     r.Scope,
	}
}
