package devserver

import (
	"errors"
	"sync"
	"time"

	"github.com/nutrilog/nutrilog/internal/client/models"
)

var (
	ErrUsernameTaken = errors.New("username already taken")
	ErrUserNotFound  = errors.New("user not found")
)

// User is a stored account. PasswordHash is a bcrypt hash, never the
// plaintext password.
type User struct {
	ID             int64
	Username       string
	Email          string
	PasswordHash   string
	FirstName      string
	LastName       string
	DOB            string
	Height         *float64
	CurrWeight     *float64
	ActivityLevel  string
	UnitPreference string
	DateJoined     time.Time
	LastLogin      time.Time
}

// Profile renders the account in the wire format the client expects.
func (u *User) Profile() models.Profile {
	p := models.Profile{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		DOB:            u.DOB,
		Height:         u.Height,
		CurrWeight:     u.CurrWeight,
		ActivityLevel:  u.ActivityLevel,
		UnitPreference: u.UnitPreference,
		DateJoined:     u.DateJoined.UTC().Format(time.RFC3339),
	}
	if u.FirstName != "" || u.LastName != "" {
		full := u.FirstName
		if u.FirstName != "" && u.LastName != "" {
			full += " "
		}
		p.FullName = full + u.LastName
	}
	if !u.LastLogin.IsZero() {
		p.LastLogin = u.LastLogin.UTC().Format(time.RFC3339)
	}
	return p
}

// UserStore is the in-memory account table.
type UserStore struct {
	mu         sync.RWMutex
	byID       map[int64]*User
	byUsername map[string]*User
	nextID     int64
}

func NewUserStore() *UserStore {
	return &UserStore{
		byID:       make(map[int64]*User),
		byUsername: make(map[string]*User),
	}
}

// Create adds a new account. The username must be unique.
func (s *UserStore) Create(username, email, passwordHash string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[username]; exists {
		return nil, ErrUsernameTaken
	}

	s.nextID++
	u := &User{
		ID:           s.nextID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		DateJoined:   time.Now(),
	}
	s.byID[u.ID] = u
	s.byUsername[username] = u
	return u, nil
}

// ByUsername looks an account up by username.
func (s *UserStore) ByUsername(username string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byUsername[username]
	return u, ok
}

// ByID looks an account up by ID.
func (s *UserStore) ByID(id int64) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	return u, ok
}

// Update applies fn to the account under the store lock.
func (s *UserStore) Update(id int64, fn func(*User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	fn(u)
	return nil
}

// Delete removes the account.
func (s *UserStore) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	delete(s.byID, id)
	delete(s.byUsername, u.Username)
	return nil
}
