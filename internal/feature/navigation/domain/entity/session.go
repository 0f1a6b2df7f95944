// Package entity defines the domain entities for the navigation feature.
package entity

import "time"

// Page is one screen of the application.
type Page string

const (
	PageLogin    Page = "login"
	PageRegister Page = "register"
	PageHome     Page = "home"
	PagePredict  Page = "predict"
	PageResult   Page = "result"
	PageAbout    Page = "about"
	PageContact  Page = "contact"
)

// Path returns the URL path that renders the page.
func (p Page) Path() string {
	return "/" + string(p)
}

// Valid reports whether p is a known page.
func (p Page) Valid() bool {
	switch p {
	case PageLogin, PageRegister, PageHome, PagePredict, PageResult, PageAbout, PageContact:
		return true
	}
	return false
}

// Action is a user action that may move the session to another page.
type Action string

const (
	ActionLoginSucceeded Action = "login_succeeded"
	ActionGoRegister     Action = "go_register"
	ActionRegistered     Action = "registered"
	ActionBackToLogin    Action = "back_to_login"
	ActionContinue       Action = "continue"
	ActionPredicted      Action = "predicted"
	ActionBackToPredict  Action = "back_to_predict"
	ActionBackToHome     Action = "back_to_home"
	ActionHome           Action = "home"
	ActionAbout          Action = "about"
	ActionContact        Action = "contact"
	ActionLogout         Action = "logout"
)

// Session is the per-client navigation state. It is created fresh for every client,
// mutated by every navigation action and never shared between clients.
type Session struct {
	ID             string    `json:"id"`
	Authenticated  bool      `json:"authenticated"`
	Page           Page      `json:"page"`
	Username       string    `json:"username,omitempty"`
	LastPrediction *float64  `json:"last_prediction,omitempty"`
	Flash          string    `json:"flash,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
	// Version is bumped by every successful save. A save carrying an older version
	// than the stored one is rejected.
	Version int64 `json:"version"`
}

// HasPrediction reports whether a prediction is stored in the session.
func (s *Session) HasPrediction() bool {
	return s.LastPrediction != nil
}

// TakeFlash returns the pending one-shot message and clears it.
func (s *Session) TakeFlash() string {
	msg := s.Flash
	s.Flash = ""
	return msg
}
