// Package session holds the per-client navigation state and its storage.
package session

import (
	"errors"
)

type ViewMode string

const (
	ViewList ViewMode = "list"
	ViewEdit ViewMode = "edit"
)

// Phase is the navigation state derived from a State.
type Phase string

const (
	PhaseLoggedOut Phase = "LOGGED_OUT"
	PhaseList      Phase = "LIST"
	PhaseEdit      Phase = "EDIT"
)

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a message shown once on the next rendered page.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// Draft holds form values that failed to save so the next render can show
// them again.
type Draft struct {
	Word     string `json:"word"`
	Meaning  string `json:"meaning"`
	Category string `json:"category"`
	Memo     string `json:"memo"`
}

var ErrInvalidTransition = errors.New("invalid navigation transition")

// State is the navigation state of one client. EditTargetID is only
// meaningful while ViewMode is ViewEdit.
type State struct {
	LoggedIn      bool     `json:"loggedIn"`
	CurrentUserID string   `json:"currentUserId"`
	ViewMode      ViewMode `json:"viewMode"`
	EditTargetID  int64    `json:"editTargetId,omitempty"`
	Notice        *Notice  `json:"notice,omitempty"`
	Draft         *Draft   `json:"draft,omitempty"`
}

// New returns the logged-out, list-view state of a first contact.
func New() *State {
	return &State{ViewMode: ViewList}
}

func (s *State) Phase() Phase {
	switch {
	case !s.LoggedIn:
		return PhaseLoggedOut
	case s.ViewMode == ViewEdit:
		return PhaseEdit
	default:
		return PhaseList
	}
}

// Login moves LOGGED_OUT to LIST for userID.
func (s *State) Login(userID string) error {
	if s.LoggedIn || userID == "" {
		return ErrInvalidTransition
	}
	s.LoggedIn = true
	s.CurrentUserID = userID
	s.toList()
	return nil
}

// Edit moves LIST to EDIT(id).
func (s *State) Edit(id int64) error {
	if s.Phase() != PhaseList || id <= 0 {
		return ErrInvalidTransition
	}
	s.ViewMode = ViewEdit
	s.EditTargetID = id
	s.Draft = nil
	return nil
}

// BackToList moves EDIT to LIST. It is a no-op when already in LIST.
func (s *State) BackToList() error {
	if !s.LoggedIn {
		return ErrInvalidTransition
	}
	s.toList()
	return nil
}

// Logout returns any state to LOGGED_OUT.
func (s *State) Logout() {
	*s = State{ViewMode: ViewList}
}

func (s *State) toList() {
	s.ViewMode = ViewList
	s.EditTargetID = 0
	s.Draft = nil
}

func (s *State) Flash(level NoticeLevel, message string) {
	s.Notice = &Notice{Level: level, Message: message}
}

// TakeNotice returns the pending notice and clears it.
func (s *State) TakeNotice() *Notice {
	n := s.Notice
	s.Notice = nil
	return n
}

func (s *State) KeepDraft(d Draft) {
	s.Draft = &d
}

// TakeDraft returns the pending draft and clears it.
func (s *State) TakeDraft() *Draft {
	d := s.Draft
	s.Draft = nil
	return d
}

// clone copies s including the values behind its pointers.
func (s *State) clone() *State {
	c := *s
	if s.Notice != nil {
		n := *s.Notice
		c.Notice = &n
	}
	if s.Draft != nil {
		d := *s.Draft
		c.Draft = &d
	}
	return &c
}
