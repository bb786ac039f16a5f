package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_NewIsLoggedOutList(t *testing.T) {
	s := New()
	assert.False(t, s.LoggedIn)
	assert.Empty(t, s.CurrentUserID)
	assert.Equal(t, ViewList, s.ViewMode)
	assert.Zero(t, s.EditTargetID)
	assert.Equal(t, PhaseLoggedOut, s.Phase())
}

func TestState_Transitions(t *testing.T) {
	s := New()

	require.ErrorIs(t, s.Edit(1), ErrInvalidTransition, "edit while logged out")
	require.ErrorIs(t, s.BackToList(), ErrInvalidTransition, "back while logged out")
	require.ErrorIs(t, s.Login(""), ErrInvalidTransition, "login without user")

	require.NoError(t, s.Login("alice"))
	assert.Equal(t, PhaseList, s.Phase())
	assert.Equal(t, "alice", s.CurrentUserID)
	require.ErrorIs(t, s.Login("bob"), ErrInvalidTransition, "login twice")

	require.ErrorIs(t, s.Edit(0), ErrInvalidTransition)
	require.ErrorIs(t, s.Edit(-3), ErrInvalidTransition)

	require.NoError(t, s.Edit(42))
	assert.Equal(t, PhaseEdit, s.Phase())
	assert.Equal(t, int64(42), s.EditTargetID)
	require.ErrorIs(t, s.Edit(43), ErrInvalidTransition, "edit from edit")

	require.NoError(t, s.BackToList())
	assert.Equal(t, PhaseList, s.Phase())
	assert.Zero(t, s.EditTargetID)

	// Back from LIST stays in LIST.
	require.NoError(t, s.BackToList())
	assert.Equal(t, PhaseList, s.Phase())

	require.NoError(t, s.Edit(7))
	s.Flash(NoticeSuccess, "saved")
	s.Logout()
	assert.Equal(t, PhaseLoggedOut, s.Phase())
	assert.Equal(t, *New(), *s)
}

func TestState_TakeNotice(t *testing.T) {
	s := New()
	assert.Nil(t, s.TakeNotice())

	s.Flash(NoticeWarning, "careful")
	n := s.TakeNotice()
	require.NotNil(t, n)
	assert.Equal(t, NoticeWarning, n.Level)
	assert.Equal(t, "careful", n.Message)
	assert.Nil(t, s.TakeNotice())
}

func TestState_Draft(t *testing.T) {
	s := New()
	require.NoError(t, s.Login("alice"))
	assert.Nil(t, s.TakeDraft())

	s.KeepDraft(Draft{Word: "apple"})
	d := s.TakeDraft()
	require.NotNil(t, d)
	assert.Equal(t, "apple", d.Word)
	assert.Nil(t, s.TakeDraft())

	// A draft from the create form does not follow into the edit form.
	s.KeepDraft(Draft{Word: "apple"})
	require.NoError(t, s.Edit(3))
	assert.Nil(t, s.Draft)

	s.KeepDraft(Draft{Word: "pear"})
	require.NoError(t, s.BackToList())
	assert.Nil(t, s.Draft)

	s.KeepDraft(Draft{Word: "pear"})
	s.Logout()
	assert.Nil(t, s.Draft)
}
