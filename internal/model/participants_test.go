package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParticipantSetDedupKeepsFirstOrder(t *testing.T) {
	req := require.New(t)

	s := NewParticipantSet(3, 1, 3, 2, 1)

	req.Equal(3, s.Len())
	req.Equal([]uint{3, 1, 2}, s.IDs())
	req.True(s.Has(2))
	req.False(s.Has(4))
}

func TestParticipantSetAddRemove(t *testing.T) {
	req := require.New(t)

	var s ParticipantSet
	req.True(s.Add(7))
	req.False(s.Add(7))
	req.True(s.Add(8))
	req.True(s.Remove(7))
	req.False(s.Remove(7))
	req.Equal([]uint{8}, s.IDs())
}

func TestParticipantSetEqualIgnoresOrder(t *testing.T) {
	s := NewParticipantSet(1, 2)

	require.True(t, s.Equal(2, 1))
	require.True(t, s.Equal(2, 1, 1))
	require.False(t, s.Equal(1, 2, 3))
	require.False(t, s.Equal(1))
}

func TestParticipantSetJSON(t *testing.T) {
	req := require.New(t)

	data, err := json.Marshal(NewParticipantSet(5, 4))
	req.NoError(err)
	req.JSONEq(`[5,4]`, string(data))

	var empty ParticipantSet
	data, err = json.Marshal(empty)
	req.NoError(err)
	req.JSONEq(`[]`, string(data))

	var decoded ParticipantSet
	req.NoError(json.Unmarshal([]byte(`[9,9,1]`), &decoded))
	req.Equal([]uint{9, 1}, decoded.IDs())
}

func TestChatMembersRoundTrip(t *testing.T) {
	req := require.New(t)

	chat := Chat{ID: 4, Participants: NewParticipantSet(10, 20, 30)}
	chat.SyncMembers()
	req.Len(chat.Members, 3)
	req.Equal(ChatMember{ChatID: 4, UserID: 20, Position: 1}, chat.Members[1])

	chat.Members[0], chat.Members[2] = chat.Members[2], chat.Members[0]
	chat.Participants = ParticipantSet{}
	chat.SyncParticipants()
	req.Equal([]uint{10, 20, 30}, chat.Participants.IDs())
}

func TestIsAdmin(t *testing.T) {
	admin := uint(1)
	group := Chat{IsGroup: true, AdminID: &admin}
	direct := Chat{AdminID: &admin}

	require.True(t, group.IsAdmin(1))
	require.False(t, group.IsAdmin(2))
	require.False(t, direct.IsAdmin(1))
}

func TestUserProfileHasNoCredentials(t *testing.T) {
	u := User{Username: "ann", Email: "ann@example.com", Password: "secret-hash", RefreshToken: "secret-refresh"}
	data, err := json.Marshal(u.Profile())
	require.NoError(t, err)
	require.NotContains(t, string(data), "secret")
	require.NotContains(t, string(data), "password")
}
