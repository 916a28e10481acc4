// Package authpw authenticates against the fixed seed credential table.
package authpw

import (
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"stockpile/api/internal/rbac"
)

// ErrInvalidCredentials is returned for every authentication failure. It
// deliberately does not distinguish an unknown username from a wrong password.
var ErrInvalidCredentials = errors.New("invalid username or password")

type User struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Role       rbac.Role `json:"role"`
	FullName   string    `json:"fullName"`
	Department string    `json:"department"`
	LastLogin  time.Time `json:"lastLogin"`
}

// Service holds the seed user directory and their password hashes. There is
// no signup path; the table is fixed for this deployment.
type Service struct {
	mu     sync.Mutex
	now    func() time.Time
	order  []string
	users  map[string]*User
	hashes map[string][]byte
}

type seedUser struct {
	user     User
	password string
}

var seedUsers = []seedUser{
	{
		user: User{
			ID:         "1",
			Username:   "admin",
			Email:      "admin@stockpile.local",
			Role:       rbac.RoleAdmin,
			FullName:   "System Administrator",
			Department: "Operations Security",
		},
		password: "admin123",
	},
	{
		user: User{
			ID:         "2",
			Username:   "operator",
			Email:      "operator@stockpile.local",
			Role:       rbac.RoleOperator,
			FullName:   "Lead Operator",
			Department: "Control Center",
		},
		password: "operator123",
	},
	{
		user: User{
			ID:         "3",
			Username:   "viewer",
			Email:      "viewer@stockpile.local",
			Role:       rbac.RoleViewer,
			FullName:   "Observer",
			Department: "Analysis",
		},
		password: "viewer123",
	},
}

// NewService builds the directory, hashing the seed passwords so raw values
// never sit in memory past startup.
func NewService(now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	s := &Service{
		now:    now,
		users:  make(map[string]*User, len(seedUsers)),
		hashes: make(map[string][]byte, len(seedUsers)),
	}
	for _, seed := range seedUsers {
		user := seed.user
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.password), bcrypt.MinCost)
		if err != nil {
			// bcrypt only fails on oversized input; the seed table is fixed.
			panic(err)
		}
		s.order = append(s.order, user.Username)
		s.users[user.Username] = &user
		s.hashes[user.Username] = hash
	}
	return s
}

// Authenticate checks a username/password pair against the credential table.
// On success it stamps LastLogin and returns the user record.
func (s *Service) Authenticate(username, password string) (User, error) {
	username = strings.TrimSpace(username)

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[username]
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.hashes[username], []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	user.LastLogin = s.now()
	return *user, nil
}

// Get looks a user up by id.
func (s *Service) Get(id string) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.ID == id {
			return *user, true
		}
	}
	return User{}, false
}

// Users returns the directory in seed order, without credentials.
func (s *Service) Users() []User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]User, 0, len(s.order))
	for _, username := range s.order {
		out = append(out, *s.users[username])
	}
	return out
}
