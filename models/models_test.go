package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUsernameKey(t *testing.T) {
	require.Equal(t, "night_owl", UsernameKey("  Night_Owl "))
	require.Equal(t, UsernameKey("night"), UsernameKey("ＮＩＧＨＴ"))
}

func TestCreateUserRequestValidate(t *testing.T) {
	req := CreateUserRequest{
		Username: " ana.b ",
		Email:    "Ana@Example.COM",
		Password: "correct horse",
	}
	require.NoError(t, req.Validate())
	require.Equal(t, "ana.b", req.Username)
	require.Equal(t, "ana@example.com", req.Email)
	require.Equal(t, AvatarMale, req.Avatar)

	bad := []CreateUserRequest{
		{Username: "ab", Email: "a@b.co", Password: "12345678"},
		{Username: "has space", Email: "a@b.co", Password: "12345678"},
		{Username: "valid", Email: "not-an-email", Password: "12345678"},
		{Username: "valid", Email: "a@localhost", Password: "12345678"},
		{Username: "valid", Email: "a@b.co", Password: "short"},
		{Username: "valid", Email: "a@b.co", Password: strings.Repeat("x", 73)},
		{Username: "valid", Email: "a@b.co", Password: "12345678", Avatar: "robot"},
	}
	for i, r := range bad {
		require.Error(t, r.Validate(), "case %d", i)
	}
}

func TestUpdateProfileRequest(t *testing.T) {
	name := "  owl "
	interests := []string{"Hiking", " hiking", "", "jazz"}
	req := UpdateProfileRequest{DisplayName: &name, Interests: &interests}
	require.NoError(t, req.Validate())

	p := &Profile{DisplayName: "old", City: "Lisbon"}
	req.Apply(p)
	require.Equal(t, "owl", p.DisplayName)
	require.Equal(t, []string{"Hiking", "jazz"}, p.Interests)
	require.Equal(t, "Lisbon", p.City)

	tooMany := make([]string, MaxListItems+1)
	for i := range tooMany {
		tooMany[i] = strings.Repeat("a", i+1)
	}
	require.Error(t, (&UpdateProfileRequest{Traits: &tooMany}).Validate())

	avatar := "robot"
	require.Error(t, (&UpdateProfileRequest{Avatar: &avatar}).Validate())
}

func TestCreateWhisperRequestValidate(t *testing.T) {
	ok := CreateWhisperRequest{Title: " hi ", Text: "the view from here", Latitude: 40.4, Longitude: -3.7}
	require.NoError(t, ok.Validate())
	require.Equal(t, "hi", ok.Title)

	require.Error(t, (&CreateWhisperRequest{Title: "", Text: "x"}).Validate())
	require.Error(t, (&CreateWhisperRequest{Title: "x", Text: strings.Repeat("y", MaxWhisperTextLen+1)}).Validate())
	require.Error(t, (&CreateWhisperRequest{Title: "x", Text: "y", Latitude: 95}).Validate())
}

func TestConversationHelpers(t *testing.T) {
	a, b := OrderedPair("zed", "amy")
	require.Equal(t, "amy", a)
	require.Equal(t, "zed", b)

	c := Conversation{User1ID: "amy", User2ID: "zed"}
	require.True(t, c.HasParticipant("zed"))
	require.False(t, c.HasParticipant("bob"))
	require.Equal(t, "amy", c.PeerOf("zed"))

	var counters *ConversationCounters
	require.Zero(t, counters.Count("amy"))
	counters = &ConversationCounters{Counts: map[string]int{"amy": 3}}
	require.Equal(t, 3, counters.Count("amy"))
	require.Zero(t, counters.Count("zed"))
}

func TestSendMessageRequestValidate(t *testing.T) {
	require.Error(t, (&SendMessageRequest{Content: "   "}).Validate())
	require.Error(t, (&SendMessageRequest{Content: strings.Repeat("a", MaxMessageLen+1)}).Validate())

	r := SendMessageRequest{Content: " hey "}
	require.NoError(t, r.Validate())
	require.Equal(t, "hey", r.Content)
}
