/**
 * @description
 * This file implements the single-operator session owned by the banking
 * service. Exactly one operator can be signed in at a time; every state
 * transition happens under the session mutex so a login racing a logout can
 * never leave a half-cleared session behind.
 *
 * @notes
 * - The session id is regenerated on every successful login, so tokens minted
 *   for an earlier session stop validating the moment anyone signs in again.
 */

package app

import (
	"sync"

	"github.com/google/uuid"

	"github.com/crestbank/backoffice-service/internal/domain"
)

// session is the mutable authentication state guarded by its own mutex.
type session struct {
	mu       sync.Mutex
	operator *domain.Operator
	id       string
}

// begin installs the operator as the signed-in principal and returns the
// fresh session id. Any previously signed-in operator is replaced.
func (s *session) begin(op *domain.Operator) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.operator = op
	s.id = uuid.NewString()
	return s.id
}

// end unconditionally clears the session. Safe to call when nobody is
// signed in.
func (s *session) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.operator = nil
	s.id = ""
}

// current returns a snapshot of the signed-in operator and the session id,
// or ErrNotAuthenticated when nobody is signed in.
func (s *session) current() (*domain.Operator, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.operator == nil {
		return nil, "", ErrNotAuthenticated
	}
	snapshot := *s.operator
	return &snapshot, s.id, nil
}

// refresh overwrites the stored operator record without touching the session
// id. Used after the signed-in operator edits their own details.
func (s *session) refresh(op *domain.Operator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.operator != nil && s.operator.ID == op.ID {
		s.operator = op
	}
}

// requireSession returns the signed-in operator or ErrNotAuthenticated.
func (s *Service) requireSession() (*domain.Operator, error) {
	op, _, err := s.session.current()
	return op, err
}

// requireFullRights returns the signed-in operator only when they hold full
// rights; a signed-in operator without them gets ErrFullRightsRequired.
func (s *Service) requireFullRights() (*domain.Operator, error) {
	op, err := s.requireSession()
	if err != nil {
		return nil, err
	}
	if !op.FullRights {
		return nil, ErrFullRightsRequired
	}
	return op, nil
}

// CurrentOperator exposes the signed-in operator to the API layer.
func (s *Service) CurrentOperator() (*domain.Operator, error) {
	return s.requireSession()
}

// SessionID exposes the live session id for token validation.
func (s *Service) SessionID() (string, error) {
	_, id, err := s.session.current()
	return id, err
}
