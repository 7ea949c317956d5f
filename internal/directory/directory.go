// Package directory holds the user roster.
package directory

import (
	"errors"
	"fmt"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/model"
)

// ErrUnknownUser is returned when a user ID or role has no match.
var ErrUnknownUser = errors.New("unknown user")

// Store is the user roster. Mutations replace the whole slice so snapshots
// handed out earlier stay valid, and every user handed out is a copy. It is
// not safe for concurrent use.
type Store struct {
	users []model.User
}

// NewStore returns a Store holding a copy of users.
func NewStore(users []model.User) *Store {
	cp := make([]model.User, len(users))
	for i, u := range users {
		cp[i] = cloneUser(u)
	}
	return &Store{users: cp}
}

// List returns copies of all users in roster order.
func (s *Store) List() []model.User {
	out := make([]model.User, len(s.users))
	for i, u := range s.users {
		out[i] = cloneUser(u)
	}
	return out
}

// Get returns the user with the given ID.
func (s *Store) Get(id string) (model.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return model.User{}, fmt.Errorf("%w: %s", ErrUnknownUser, id)
}

// FirstWithRole returns the first user holding role.
func (s *Store) FirstWithRole(role model.Role) (model.User, error) {
	for _, u := range s.users {
		if u.Role == role {
			return cloneUser(u), nil
		}
	}
	return model.User{}, fmt.Errorf("%w: no user with role %s", ErrUnknownUser, role)
}

// UpdateShift replaces the user's shift wholesale and returns the updated user.
func (s *Store) UpdateShift(id string, shift model.ShiftConfig) (model.User, error) {
	return s.replace(id, func(u *model.User) {
		sc := shift
		u.Shift = &sc
	})
}

// SetStatus marks the user active or blocked and returns the updated user.
func (s *Store) SetStatus(id string, status model.UserStatus) (model.User, error) {
	return s.replace(id, func(u *model.User) {
		u.Status = status
	})
}

func (s *Store) replace(id string, mutate func(*model.User)) (model.User, error) {
	for i, u := range s.users {
		if u.ID != id {
			continue
		}
		updated := cloneUser(u)
		mutate(&updated)

		next := make([]model.User, len(s.users))
		copy(next, s.users)
		next[i] = updated
		s.users = next
		return cloneUser(updated), nil
	}
	return model.User{}, fmt.Errorf("%w: %s", ErrUnknownUser, id)
}

func cloneUser(u model.User) model.User {
	if u.Shift != nil {
		sc := *u.Shift
		u.Shift = &sc
	}
	return u
}
