package repository

import (
	"context"
	"fmt"
	"testing"

	"tush00nka/chathub/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenMemory(t.Name(), logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedUsers(t *testing.T, users UserRepository, names ...string) []uint {
	t.Helper()
	ids := make([]uint, len(names))
	for i, name := range names {
		u := &model.User{Username: name, Email: name + "@example.com", Password: "hash"}
		require.NoError(t, users.Create(context.Background(), u))
		ids[i] = u.ID
	}
	return ids
}

func TestChatRepository_CreateAndFind(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := newTestDB(t)
	chats := NewChatRepository(db)

	admin := uint(1)
	group := &model.Chat{
		Name:         "team",
		IsGroup:      true,
		AdminID:      &admin,
		Participants: model.NewParticipantSet(3, 1, 2),
	}
	req.NoError(chats.Create(ctx, group))
	req.NotZero(group.ID)

	direct := &model.Chat{Name: model.DirectChatName, Participants: model.NewParticipantSet(1, 4)}
	req.NoError(chats.Create(ctx, direct))

	found, err := chats.FindGroup(ctx, group.ID)
	req.NoError(err)
	req.Equal([]uint{3, 1, 2}, found.Participants.IDs())
	req.True(found.IsAdmin(1))

	_, err = chats.FindGroup(ctx, direct.ID)
	req.ErrorIs(err, ErrNotFound)

	mine, err := chats.Find(ctx, ChatFilter{Member: 1})
	req.NoError(err)
	req.Len(mine, 2)

	theirs, err := chats.Find(ctx, ChatFilter{Member: 4})
	req.NoError(err)
	req.Len(theirs, 1)
	req.Equal(direct.ID, theirs[0].ID)
}

func TestChatRepository_FindDirectMatchesExactPair(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	chats := NewChatRepository(newTestDB(t))

	admin := uint(1)
	req.NoError(chats.Create(ctx, &model.Chat{
		Name: "g", IsGroup: true, AdminID: &admin, Participants: model.NewParticipantSet(1, 2, 3),
	}))
	direct := &model.Chat{Name: model.DirectChatName, Participants: model.NewParticipantSet(2, 1)}
	req.NoError(chats.Create(ctx, direct))

	found, err := chats.FindDirect(ctx, 1, 2)
	req.NoError(err)
	req.Equal(direct.ID, found.ID)

	_, err = chats.FindDirect(ctx, 1, 3)
	req.ErrorIs(err, ErrNotFound)
}

func TestChatRepository_Membership(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	chats := NewChatRepository(newTestDB(t))

	admin := uint(1)
	chat := &model.Chat{Name: "g", IsGroup: true, AdminID: &admin, Participants: model.NewParticipantSet(1, 2, 3)}
	req.NoError(chats.Create(ctx, chat))

	req.NoError(chats.AddParticipant(ctx, chat.ID, 9))
	req.Error(chats.AddParticipant(ctx, chat.ID, 9))
	req.NoError(chats.RemoveParticipant(ctx, chat.ID, 2))
	req.ErrorIs(chats.RemoveParticipant(ctx, chat.ID, 2), ErrNotFound)
	req.NoError(chats.Rename(ctx, chat.ID, "renamed"))

	found, err := chats.FindByID(ctx, chat.ID)
	req.NoError(err)
	req.Equal("renamed", found.Name)
	req.Equal([]uint{1, 3, 9}, found.Participants.IDs())
}

func TestChatRepository_DeleteAndLastMessage(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	chats := NewChatRepository(newTestDB(t))

	chat := &model.Chat{Name: model.DirectChatName, Participants: model.NewParticipantSet(1, 2)}
	req.NoError(chats.Create(ctx, chat))

	last := uint(42)
	req.NoError(chats.SetLastMessage(ctx, chat.ID, &last))
	found, err := chats.FindByID(ctx, chat.ID)
	req.NoError(err)
	req.NotNil(found.LastMessageID)
	req.Equal(last, *found.LastMessageID)

	req.NoError(chats.SetLastMessage(ctx, chat.ID, nil))
	found, err = chats.FindByID(ctx, chat.ID)
	req.NoError(err)
	req.Nil(found.LastMessageID)

	req.NoError(chats.Delete(ctx, chat.ID))
	req.ErrorIs(chats.Delete(ctx, chat.ID), ErrNotFound)
	_, err = chats.FindByID(ctx, chat.ID)
	req.ErrorIs(err, ErrNotFound)

	req.ErrorIs(chats.SetLastMessage(ctx, chat.ID, &last), ErrNotFound)
}

func TestMessageRepository_DeleteByChat(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	messages := NewMessageRepository(newTestDB(t))

	for i := 0; i < 3; i++ {
		req.NoError(messages.Create(ctx, &model.Message{
			ChatID:   7,
			SenderID: 1,
			Content:  fmt.Sprintf("m%d", i),
			Attachments: []model.Attachment{
				{Path: fmt.Sprintf("chats/7/%d/a.png", i), URL: "http://files/a.png"},
			},
		}))
	}
	other := &model.Message{ChatID: 8, SenderID: 1, Content: "keep"}
	req.NoError(messages.Create(ctx, other))

	all, err := messages.FindByChat(ctx, 7)
	req.NoError(err)
	req.Len(all, 3)
	req.Equal("m0", all[0].Content)
	req.Len(all[0].Attachments, 1)
	req.Len(model.AttachmentPaths(all), 3)

	latest, err := messages.Latest(ctx, 7)
	req.NoError(err)
	req.Equal("m2", latest.Content)

	deleted, err := messages.DeleteByChat(ctx, 7)
	req.NoError(err)
	req.EqualValues(3, deleted)

	all, err = messages.FindByChat(ctx, 7)
	req.NoError(err)
	req.Empty(all)

	_, err = messages.Latest(ctx, 7)
	req.ErrorIs(err, ErrNotFound)

	kept, err := messages.FindByID(ctx, other.ID)
	req.NoError(err)
	req.Equal("keep", kept.Content)
}

func TestUserRepositoryAndDirectory(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	users := NewUserRepository(newTestDB(t))
	ids := seedUsers(t, users, "bob", "ann", "cid")

	exists, err := users.UsernameExists(ctx, "ann")
	req.NoError(err)
	req.True(exists)

	dir := NewDirectory(users)
	others, err := dir.ListExcept(ctx, ids[0])
	req.NoError(err)
	req.Len(others, 2)
	req.Equal("ann", others[0].Username)

	profiles, err := dir.Profiles(ctx, []uint{ids[1], 999})
	req.NoError(err)
	req.Len(profiles, 1)
	req.Equal("ann@example.com", profiles[ids[1]].Email)

	_, err = dir.Profile(ctx, 999)
	req.ErrorIs(err, ErrNotFound)
}
