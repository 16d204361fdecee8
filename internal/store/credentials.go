package store

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Credentials is the username -> password file written by the registration
// tool and read on login. Values are stored as given (plaintext) unless the
// store was opened with hashing enabled.
type Credentials struct {
	path string
	hash bool
}

func NewCredentials(path string, hashPasswords bool) *Credentials {
	return &Credentials{path: path, hash: hashPasswords}
}

// Load returns the full mapping. A missing file yields an empty map.
func (c *Credentials) Load() (map[string]string, error) {
	users := map[string]string{}
	if _, err := readJSON(c.path, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = map[string]string{}
	}
	return users, nil
}

// Save replaces the whole file with users.
func (c *Credentials) Save(users map[string]string) error {
	return writeJSON(c.path, users)
}

func (c *Credentials) Exists(username string) (bool, error) {
	users, err := c.Load()
	if err != nil {
		return false, err
	}
	_, ok := users[username]
	return ok, nil
}

// Authenticate reports whether password matches the stored value for
// username. Plaintext stores always accept an exact match first, so a password
// that merely looks like a bcrypt hash still works. Bcrypt-looking values are
// otherwise checked with bcrypt.
func (c *Credentials) Authenticate(username, password string) (bool, error) {
	users, err := c.Load()
	if err != nil {
		return false, err
	}
	stored, ok := users[username]
	if !ok {
		return false, nil
	}
	if !c.hash && stored == password {
		return true, nil
	}
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil, nil
	}
	return stored == password, nil
}

// Register adds a new user and persists the file.
func (c *Credentials) Register(username, password string) error {
	users, err := c.Load()
	if err != nil {
		return err
	}
	if _, ok := users[username]; ok {
		return fmt.Errorf("%w: %s", ErrUserExists, username)
	}

	value := password
	if c.hash {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		value = string(h)
	}
	users[username] = value
	return c.Save(users)
}

func isBcryptHash(s string) bool {
	if len(s) != 60 {
		return false
	}
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
