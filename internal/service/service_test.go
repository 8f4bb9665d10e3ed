package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"tush00nka/chathub/internal/model"
	"tush00nka/chathub/internal/pkg/auth"
	"tush00nka/chathub/internal/pkg/storage"
	"tush00nka/chathub/internal/repository"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

type delivery struct {
	userID  uint
	event   model.Event
	payload any
}

// recorder is an EventDispatcher that remembers every delivery.
type recorder struct {
	mu  sync.Mutex
	got []delivery
}

func (r *recorder) Deliver(userID uint, event model.Event, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, delivery{userID: userID, event: event, payload: payload})
}

// recipients lists who received event, in delivery order.
func (r *recorder) recipients(event model.Event) []uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uint
	for _, d := range r.got {
		if d.event == event {
			ids = append(ids, d.userID)
		}
	}
	return ids
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = nil
}

type fixture struct {
	chatRepo    repository.ChatRepository
	messageRepo repository.MessageRepository
	dir         repository.Directory
	views       *ViewAssembler
	cascade     *CascadeDeleter
	chats       ChatService
	messages    MessageService
	users       UserService
	events      *recorder
	fs          afero.Fs
	files       *storage.Local
	log         *slog.Logger
	// alice, bob, carol and dave are seeded user ids
	alice, bob, carol, dave uint
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	db, err := repository.OpenMemory(t.Name(), logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	userRepo := repository.NewUserRepository(db)
	f := &fixture{
		chatRepo:    repository.NewChatRepository(db),
		messageRepo: repository.NewMessageRepository(db),
		events:      &recorder{},
		fs:          afero.NewMemMapFs(),
		log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, u := range []struct {
		name string
		id   *uint
	}{{"alice", &f.alice}, {"bob", &f.bob}, {"carol", &f.carol}, {"dave", &f.dave}} {
		user := &model.User{Username: u.name, Email: u.name + "@example.com", Password: "hash-of-" + u.name}
		require.NoError(t, userRepo.Create(ctx, user))
		*u.id = user.ID
	}

	f.files, err = storage.NewLocal(f.fs, "/data", "http://files.local")
	require.NoError(t, err)

	f.dir = repository.NewDirectory(userRepo)
	f.views = NewViewAssembler(f.chatRepo, f.messageRepo, f.dir)
	f.cascade = NewCascadeDeleter(f.messageRepo, f.files, f.log)

	f.chats = NewChatService(f.chatRepo, f.dir, f.views, f.cascade, f.events, f.log)
	f.messages = f.messageService(f.chatRepo, f.views)
	f.users = NewUserService(userRepo, auth.NewManager("test-key", time.Hour))
	return f
}

// messageService builds a message service over substitute chat storage or views.
func (f *fixture) messageService(chats repository.ChatRepository, views *ViewAssembler) MessageService {
	return NewMessageService(chats, f.messageRepo, views, f.files, f.cascade, f.events, f.log)
}

// storedFiles counts the attachment files left on disk.
func (f *fixture) storedFiles(t *testing.T) int {
	t.Helper()
	count := 0
	err := afero.Walk(f.fs, "/data", func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			count++
		}
		return nil
	})
	require.NoError(t, err)
	return count
}

func (f *fixture) group(t *testing.T) *model.ChatView {
	t.Helper()
	view, err := f.chats.CreateGroupChat(context.Background(), f.alice, "team", []uint{f.bob, f.carol})
	require.NoError(t, err)
	f.events.reset()
	return view
}
