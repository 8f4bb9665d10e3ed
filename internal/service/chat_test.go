package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"tush00nka/chathub/internal/model"
	"tush00nka/chathub/internal/pkg/apperror"
	"tush00nka/chathub/internal/repository"

	"github.com/stretchr/testify/require"
)

func TestGetOrCreateDirectChat_Idempotent(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.chats.GetOrCreateDirectChat(ctx, f.alice, f.bob)
	req.NoError(err)
	req.False(first.IsGroupChat)
	req.Nil(first.Admin)
	req.Equal(model.DirectChatName, first.Name)
	req.ElementsMatch([]uint{f.alice, f.bob}, first.ParticipantIDs())
	req.Equal([]uint{f.bob}, f.events.recipients(model.EventNewChat))

	second, err := f.chats.GetOrCreateDirectChat(ctx, f.alice, f.bob)
	req.NoError(err)
	req.Equal(first.ID, second.ID)

	reverse, err := f.chats.GetOrCreateDirectChat(ctx, f.bob, f.alice)
	req.NoError(err)
	req.Equal(first.ID, reverse.ID)

	req.Len(f.events.recipients(model.EventNewChat), 1, "only the creation path notifies")
}

func TestGetOrCreateDirectChat_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.chats.GetOrCreateDirectChat(ctx, f.alice, 999)
	require.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.chats.GetOrCreateDirectChat(ctx, f.alice, f.alice)
	require.ErrorIs(t, err, apperror.ErrValidation)
}

func TestCreateGroupChat(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.chats.CreateGroupChat(ctx, f.alice, "team", []uint{f.alice, f.bob})
	req.ErrorIs(err, apperror.ErrValidation)

	_, err = f.chats.CreateGroupChat(ctx, f.alice, "team", []uint{f.alice, f.bob, f.carol})
	req.ErrorIs(err, apperror.ErrValidation)
	req.Contains(err.Error(), "should not contain the group creator")

	_, err = f.chats.CreateGroupChat(ctx, f.alice, "team", []uint{f.bob, f.bob})
	req.ErrorIs(err, apperror.ErrValidation)
	req.Contains(err.Error(), "duplicate participants")

	req.Empty(f.events.got)

	view, err := f.chats.CreateGroupChat(ctx, f.alice, "team", []uint{f.bob, f.carol})
	req.NoError(err)
	req.True(view.IsGroupChat)
	req.NotNil(view.Admin)
	req.Equal(f.alice, *view.Admin)
	req.Equal([]uint{f.bob, f.carol, f.alice}, view.ParticipantIDs())

	req.ElementsMatch([]uint{f.bob, f.carol}, f.events.recipients(model.EventNewChat))
	req.NotContains(f.events.recipients(model.EventNewChat), f.alice)
}

func TestRenameGroupChat(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()
	group := f.group(t)

	_, err := f.chats.RenameGroupChat(ctx, f.bob, group.ID, "hijacked")
	req.ErrorIs(err, apperror.ErrForbidden)

	stored, err := f.chatRepo.FindByID(ctx, group.ID)
	req.NoError(err)
	req.Equal("team", stored.Name)
	req.Empty(f.events.got)

	_, err = f.chats.RenameGroupChat(ctx, f.alice, 999, "nope")
	req.ErrorIs(err, apperror.ErrNotFound)

	view, err := f.chats.RenameGroupChat(ctx, f.alice, group.ID, "renamed")
	req.NoError(err)
	req.Equal("renamed", view.Name)
	req.ElementsMatch([]uint{f.alice, f.bob, f.carol}, f.events.recipients(model.EventGroupRenamed))
}

func TestDeleteGroupChat_Cascades(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()
	group := f.group(t)

	sent, err := f.messages.SendMessage(ctx, f.bob, group.ID, "look", []Upload{
		{Filename: "cat.png", ContentType: "image/png", Size: 3, Body: strings.NewReader("cat")},
	})
	req.NoError(err)
	req.Len(sent.Attachments, 1)
	path := sent.Attachments[0].Path
	req.True(f.files.Exists(path))
	f.events.reset()

	req.ErrorIs(f.chats.DeleteGroupChat(ctx, f.bob, group.ID), apperror.ErrForbidden)

	req.NoError(f.chats.DeleteGroupChat(ctx, f.alice, group.ID))

	left, err := f.messageRepo.FindByChat(ctx, group.ID)
	req.NoError(err)
	req.Empty(left)
	req.False(f.files.Exists(path))

	_, err = f.chatRepo.FindByID(ctx, group.ID)
	req.ErrorIs(err, repository.ErrNotFound)

	req.ElementsMatch([]uint{f.bob, f.carol}, f.events.recipients(model.EventLeaveChat))
	for _, d := range f.events.got {
		view, ok := d.payload.(*model.ChatView)
		req.True(ok)
		req.Equal(group.ID, view.ID)
	}

	req.ErrorIs(f.chats.DeleteGroupChat(ctx, f.alice, group.ID), apperror.ErrNotFound)
}

func TestDeleteDirectChat(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	chat, err := f.chats.GetOrCreateDirectChat(ctx, f.alice, f.bob)
	req.NoError(err)
	f.events.reset()

	req.ErrorIs(f.chats.DeleteDirectChat(ctx, f.carol, chat.ID), apperror.ErrForbidden)
	req.ErrorIs(f.chats.DeleteDirectChat(ctx, f.alice, 999), apperror.ErrNotFound)

	req.NoError(f.chats.DeleteDirectChat(ctx, f.bob, chat.ID))
	req.Equal([]uint{f.alice}, f.events.recipients(model.EventLeaveChat))
}

func TestLeaveGroupChat(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()
	group := f.group(t)

	_, err := f.chats.LeaveGroupChat(ctx, f.dave, group.ID)
	req.ErrorIs(err, apperror.ErrForbidden)

	_, err = f.chats.LeaveGroupChat(ctx, f.alice, group.ID)
	req.ErrorIs(err, apperror.ErrValidation, "the admin cannot leave")

	view, err := f.chats.LeaveGroupChat(ctx, f.carol, group.ID)
	req.NoError(err)
	req.Equal([]uint{f.bob, f.alice}, view.ParticipantIDs())
	req.Empty(f.events.got, "leaving does not notify anyone")
}

func TestAddParticipant(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()
	group := f.group(t)

	_, err := f.chats.AddParticipant(ctx, f.bob, group.ID, f.dave)
	req.ErrorIs(err, apperror.ErrForbidden)

	_, err = f.chats.AddParticipant(ctx, f.alice, group.ID, f.carol)
	req.ErrorIs(err, apperror.ErrConflict)

	_, err = f.chats.AddParticipant(ctx, f.alice, group.ID, 999)
	req.ErrorIs(err, apperror.ErrNotFound)

	view, err := f.chats.AddParticipant(ctx, f.alice, group.ID, f.dave)
	req.NoError(err)
	req.Contains(view.ParticipantIDs(), f.dave)
	req.Equal([]uint{f.dave}, f.events.recipients(model.EventNewChat))
}

func TestRemoveParticipant(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()
	group := f.group(t)

	_, err := f.chats.RemoveParticipant(ctx, f.alice, group.ID, f.dave)
	req.ErrorIs(err, apperror.ErrValidation)

	stored, err := f.chatRepo.FindByID(ctx, group.ID)
	req.NoError(err)
	req.True(stored.Participants.Equal(f.alice, f.bob, f.carol))

	_, err = f.chats.RemoveParticipant(ctx, f.carol, group.ID, f.bob)
	req.ErrorIs(err, apperror.ErrForbidden)

	view, err := f.chats.RemoveParticipant(ctx, f.alice, group.ID, f.bob)
	req.NoError(err)
	req.NotContains(view.ParticipantIDs(), f.bob)
	req.Equal([]uint{f.bob}, f.events.recipients(model.EventLeaveChat))
}

func TestListChatsAndDetails(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	direct, err := f.chats.GetOrCreateDirectChat(ctx, f.alice, f.dave)
	req.NoError(err)
	group := f.group(t)

	chats, err := f.chats.ListChats(ctx, f.alice)
	req.NoError(err)
	req.Len(chats, 2)
	req.Equal(group.ID, chats[0].ID, "most recently updated first")
	req.Equal(direct.ID, chats[1].ID)

	chats, err = f.chats.ListChats(ctx, f.dave)
	req.NoError(err)
	req.Len(chats, 1)

	details, err := f.chats.GetGroupChatDetails(ctx, f.bob, group.ID)
	req.NoError(err)
	req.Equal("team", details.Name)

	_, err = f.chats.GetGroupChatDetails(ctx, f.dave, group.ID)
	req.ErrorIs(err, apperror.ErrForbidden)

	_, err = f.chats.GetGroupChatDetails(ctx, f.alice, direct.ID)
	req.ErrorIs(err, apperror.ErrNotFound)
}

func TestSearchAvailableUsers(t *testing.T) {
	f := newFixture(t)

	profiles, err := f.chats.SearchAvailableUsers(context.Background(), f.alice)
	require.NoError(t, err)

	names := make([]string, len(profiles))
	for i, p := range profiles {
		names[i] = p.Username
	}
	require.Equal(t, []string{"bob", "carol", "dave"}, names)
}

func TestChatViewCarriesNoCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	group := f.group(t)

	_, err := f.messages.SendMessage(ctx, f.bob, group.ID, "hello", nil)
	require.NoError(t, err)

	chats, err := f.chats.ListChats(ctx, f.alice)
	require.NoError(t, err)
	require.NotNil(t, chats[0].LastMessage)

	raw, err := json.Marshal(chats)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "hash-of-")
	require.NotContains(t, string(raw), "password")
}
