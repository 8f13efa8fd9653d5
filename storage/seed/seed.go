// Package seed loads clients and users from a YAML file into a
// storage.Provisioner.
//
// File format:
//
//	clients:
//	  - id: web-app
//	    secret: s3cret
//	    redirect_uri: https://app.example.com/callback
//	    grants: [authorization_code, refresh_token]
//	  - id: reporting
//	    secret: r3port
//	    grants: [client_credentials]
//	    user:
//	      id: svc-reporting
//	users:
//	  - username: alice
//	    password: wonderland
//	    id: user-123
//	    attributes:
//	      email: alice@example.com
//
// Secret and password values of the form ${NAME} are read from the
// environment.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/giantswarm/oauth2-engine/storage"
)

// File is the parsed seed document.
type File struct {
	Clients []Client `yaml:"clients"`
	Users   []User   `yaml:"users"`
}

// Client is a client entry in the seed file.
type Client struct {
	ID          string        `yaml:"id"`
	Secret      string        `yaml:"secret"`
	RedirectURI string        `yaml:"redirect_uri"`
	Grants      []string      `yaml:"grants"`
	User        *storage.User `yaml:"user"`
}

// User is a user entry in the seed file.
type User struct {
	Username   string         `yaml:"username"`
	Password   string         `yaml:"password"`
	ID         string         `yaml:"id"`
	Attributes map[string]any `yaml:"attributes"`
}

// Parse decodes a seed document. Unknown fields are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	seen := make(map[string]bool)
	for i, c := range f.Clients {
		if c.ID == "" {
			return fmt.Errorf("clients[%d]: id is required", i)
		}
		if seen[c.ID] {
			return fmt.Errorf("clients[%d]: duplicate id %q", i, c.ID)
		}
		seen[c.ID] = true
	}
	seen = make(map[string]bool)
	for i, u := range f.Users {
		if u.Username == "" {
			return fmt.Errorf("users[%d]: username is required", i)
		}
		if seen[u.Username] {
			return fmt.Errorf("users[%d]: duplicate username %q", i, u.Username)
		}
		seen[u.Username] = true
	}
	return nil
}

// Apply provisions every client and user in f. A user without an id uses
// its username.
func (f *File) Apply(ctx context.Context, p storage.Provisioner) error {
	for _, c := range f.Clients {
		client := &storage.Client{
			ID:          c.ID,
			RedirectURI: c.RedirectURI,
			Grants:      c.Grants,
			User:        c.User,
		}
		if err := p.SaveClient(ctx, client, expand(c.Secret)); err != nil {
			return fmt.Errorf("saving client %q: %w", c.ID, err)
		}
	}
	for _, u := range f.Users {
		id := u.ID
		if id == "" {
			id = u.Username
		}
		user := &storage.User{ID: id, Attributes: u.Attributes}
		if err := p.SaveUser(ctx, user, u.Username, expand(u.Password)); err != nil {
			return fmt.Errorf("saving user %q: %w", u.Username, err)
		}
	}
	return nil
}

// LoadFile parses the seed file at path and applies it to p.
func LoadFile(ctx context.Context, path string, p storage.Provisioner) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening seed file: %w", err)
	}
	defer fh.Close()

	f, err := Parse(fh)
	if err != nil {
		return nil, err
	}
	if err := f.Apply(ctx, p); err != nil {
		return nil, err
	}
	return f, nil
}

func expand(v string) string {
	if strings.HasPrefix(v, "${") && strings.HasSuffix(v, "}") {
		return os.Getenv(v[2 : len(v)-1])
	}
	return v
}
