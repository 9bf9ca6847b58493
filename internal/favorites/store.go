// Package favorites keeps the customer's favorite products in a signed cookie
// and resolves them against the catalog for display.
package favorites

import (
	"slices"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	"github.com/nfrund/zina/internal/session"
)

const (
	// SessionName is the cookie holding the favorites list.
	SessionName = "zina-favorites"
	// MaxItems bounds the list so the signed cookie stays under the 4 KB
	// browser limit. The oldest favorite is dropped first.
	MaxItems = 50

	keyIDs = "ids"
)

// Store is the favorites list of one request, newest first and free of
// duplicates. Mutations are saved immediately.
type Store struct {
	c    echo.Context
	sess *sessions.Session
	ids  []string
}

// Open loads the favorites of the current request.
func Open(c echo.Context) (*Store, error) {
	sess, err := session.Get(SessionName, c)
	if sess == nil {
		return nil, err
	}
	ids, _ := session.Load[[]string](sess, keyIDs)
	return &Store{c: c, sess: sess, ids: dedupe(ids)}, nil
}

// List returns a copy of the stored IDs, newest first.
func (s *Store) List() []string {
	return slices.Clone(s.ids)
}

func (s *Store) Count() int { return len(s.ids) }

func (s *Store) Contains(id string) bool {
	return slices.Contains(s.ids, id)
}

// Set returns the IDs as a lookup table for marking cards.
func (s *Store) Set() map[string]bool {
	m := make(map[string]bool, len(s.ids))
	for _, id := range s.ids {
		m[id] = true
	}
	return m
}

// Toggle adds id when absent and removes it otherwise. added reports which
// happened.
func (s *Store) Toggle(id string) (added bool, err error) {
	if s.Contains(id) {
		return false, s.Remove(id)
	}
	s.ids = append([]string{id}, s.ids...)
	if len(s.ids) > MaxItems {
		s.ids = s.ids[:MaxItems]
	}
	return true, s.save()
}

// Remove drops id. Removing an absent ID is not an error.
func (s *Store) Remove(ids ...string) error {
	before := len(s.ids)
	s.ids = slices.DeleteFunc(s.ids, func(x string) bool {
		return slices.Contains(ids, x)
	})
	if len(s.ids) == before {
		return nil
	}
	return s.save()
}

func (s *Store) Clear() error {
	s.ids = nil
	return s.save()
}

func (s *Store) save() error {
	if err := session.Put(s.sess, keyIDs, s.ids); err != nil {
		return err
	}
	return session.Save(s.sess, s.c)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) > MaxItems {
		out = out[:MaxItems]
	}
	return out
}
