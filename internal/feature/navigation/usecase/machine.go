// Package usecase implements the session state machine that drives page navigation.
package usecase

import (
	"errors"
	"fmt"
	"time"

	"crop_yield/internal/feature/navigation/domain/entity"
)

var (
	// ErrTransitionNotAllowed is returned when an action is not defined for the current page.
	ErrTransitionNotAllowed = errors.New("transition not allowed")

	// ErrAuthRequired is returned when a page needs an authenticated session.
	// The session has been moved to the login page when this is returned.
	ErrAuthRequired = errors.New("authentication required")

	// ErrNotAuthenticated is returned by Logout on a session that never logged in.
	ErrNotAuthenticated = errors.New("session is not authenticated")

	// ErrNoPrediction is returned when the result page is visited before any prediction.
	ErrNoPrediction = errors.New("no prediction available")

	// ErrUnknownPage is returned for page names outside the page enum.
	ErrUnknownPage = errors.New("unknown page")

	// ErrSessionNotFound is returned by a SessionStore when the id is unknown or expired.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionConflict is returned by a SessionStore when the session was saved by
	// another request after it was loaded.
	ErrSessionConflict = errors.New("session was modified concurrently")
)

type edge struct {
	from   entity.Page
	action entity.Action
}

// transitions is the page flow. Side navigation and logout are handled separately
// because they are accepted from any page.
var transitions = map[edge]entity.Page{
	{entity.PageLogin, entity.ActionLoginSucceeded}: entity.PageHome,
	{entity.PageLogin, entity.ActionGoRegister}:     entity.PageRegister,
	{entity.PageRegister, entity.ActionRegistered}:  entity.PageLogin,
	{entity.PageRegister, entity.ActionBackToLogin}: entity.PageLogin,
	{entity.PageHome, entity.ActionContinue}:        entity.PagePredict,
	{entity.PagePredict, entity.ActionPredicted}:    entity.PageResult,
	{entity.PagePredict, entity.ActionBackToHome}:   entity.PageHome,
	{entity.PageResult, entity.ActionBackToPredict}: entity.PagePredict,
	{entity.PageResult, entity.ActionBackToHome}:    entity.PageHome,
}

// sideNavigation holds the sidebar links, valid from every page.
var sideNavigation = map[entity.Action]entity.Page{
	entity.ActionHome:    entity.PageHome,
	entity.ActionAbout:   entity.PageAbout,
	entity.ActionContact: entity.PageContact,
}

// Machine applies navigation actions to sessions.
// loginRequired selects the gated configuration: home, predict and result need authentication
// and new sessions start on the login page.
type Machine struct {
	loginRequired bool
	now           func() time.Time
}

// NewMachine creates a new instance of Machine.
func NewMachine(loginRequired bool) *Machine {
	return &Machine{loginRequired: loginRequired, now: time.Now}
}

// LoginRequired reports whether the machine runs in the gated configuration.
func (m *Machine) LoginRequired() bool {
	return m.loginRequired
}

// InitialPage returns the page a fresh session starts on.
func (m *Machine) InitialPage() entity.Page {
	if m.loginRequired {
		return entity.PageLogin
	}
	return entity.PageHome
}

// NewSession returns an unauthenticated session on the initial page.
func (m *Machine) NewSession(id string) *entity.Session {
	return &entity.Session{
		ID:        id,
		Page:      m.InitialPage(),
		UpdatedAt: m.now(),
	}
}

// RequiresAuth reports whether p can only be shown to an authenticated session.
func (m *Machine) RequiresAuth(p entity.Page) bool {
	if !m.loginRequired {
		return false
	}
	return p == entity.PageHome || p == entity.PagePredict || p == entity.PageResult
}

// Fire applies a plain navigation action and returns the page the session is now on.
// Actions that carry data (login, prediction, logout) have their own methods.
func (m *Machine) Fire(s *entity.Session, action entity.Action) (entity.Page, error) {
	switch action {
	case entity.ActionLoginSucceeded, entity.ActionPredicted, entity.ActionLogout:
		return s.Page, fmt.Errorf("%w: %s is not a plain navigation action", ErrTransitionNotAllowed, action)
	}
	next, err := m.resolve(s, action)
	if err != nil {
		if errors.Is(err, ErrAuthRequired) {
			m.move(s, entity.PageLogin)
			return entity.PageLogin, err
		}
		return s.Page, err
	}
	m.move(s, next)
	return next, nil
}

// LoginSucceeded marks the session authenticated and moves it from login to home.
func (m *Machine) LoginSucceeded(s *entity.Session, username string) error {
	if _, ok := transitions[edge{s.Page, entity.ActionLoginSucceeded}]; !ok {
		return fmt.Errorf("%w: login from %s", ErrTransitionNotAllowed, s.Page)
	}
	s.Authenticated = true
	s.Username = username
	next, err := m.resolve(s, entity.ActionLoginSucceeded)
	if err != nil {
		return err
	}
	m.move(s, next)
	return nil
}

// RecordPrediction stores y in the session and moves it from predict to result.
// Nothing is stored if the transition is rejected.
func (m *Machine) RecordPrediction(s *entity.Session, y float64) error {
	next, err := m.resolve(s, entity.ActionPredicted)
	if err != nil {
		if errors.Is(err, ErrAuthRequired) {
			m.move(s, entity.PageLogin)
		}
		return err
	}
	s.LastPrediction = &y
	m.move(s, next)
	return nil
}

// Logout clears authentication and the stored prediction and returns to login.
func (m *Machine) Logout(s *entity.Session) error {
	if !s.Authenticated {
		return ErrNotAuthenticated
	}
	s.Authenticated = false
	s.Username = ""
	s.LastPrediction = nil
	m.move(s, entity.PageLogin)
	return nil
}

// Visit handles direct navigation to a page (a GET of its URL) and returns the page
// that should be rendered. Denied pages redirect to login with ErrAuthRequired; an
// authenticated session asking for login or register lands on home. Visiting the result
// page without a stored prediction keeps the session there and returns ErrNoPrediction
// so the caller can render the "no prediction" view.
func (m *Machine) Visit(s *entity.Session, page entity.Page) (entity.Page, error) {
	if !page.Valid() {
		return s.Page, fmt.Errorf("%w: %q", ErrUnknownPage, page)
	}
	if m.RequiresAuth(page) && !s.Authenticated {
		m.move(s, entity.PageLogin)
		return entity.PageLogin, ErrAuthRequired
	}
	if s.Authenticated && (page == entity.PageLogin || page == entity.PageRegister) {
		m.move(s, entity.PageHome)
		return entity.PageHome, nil
	}
	m.move(s, page)
	if page == entity.PageResult && !s.HasPrediction() {
		return page, ErrNoPrediction
	}
	return page, nil
}

// resolve looks up the target of action without mutating s.
func (m *Machine) resolve(s *entity.Session, action entity.Action) (entity.Page, error) {
	next, ok := transitions[edge{s.Page, action}]
	if !ok {
		side, isSide := sideNavigation[action]
		if !isSide {
			return s.Page, fmt.Errorf("%w: %s from %s", ErrTransitionNotAllowed, action, s.Page)
		}
		next = side
		// The sidebar "Home" of a gated, unauthenticated session shows the login form.
		if next == entity.PageHome && m.RequiresAuth(next) && !s.Authenticated {
			next = entity.PageLogin
		}
	}
	if m.RequiresAuth(next) && !s.Authenticated {
		return entity.PageLogin, ErrAuthRequired
	}
	return next, nil
}

func (m *Machine) move(s *entity.Session, p entity.Page) {
	s.Page = p
	s.UpdatedAt = m.now()
}
