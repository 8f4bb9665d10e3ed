package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"tush00nka/chathub/internal/config"
	"tush00nka/chathub/internal/handler"
	"tush00nka/chathub/internal/pkg/auth"
	"tush00nka/chathub/internal/pkg/metrics"
	"tush00nka/chathub/internal/pkg/storage"
	"tush00nka/chathub/internal/repository"
	"tush00nka/chathub/internal/service"
	"tush00nka/chathub/internal/ws"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stores struct {
	chats    repository.ChatRepository
	messages repository.MessageRepository
	users    repository.UserRepository
}

// Run wires the application and serves until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	st, err := openStores(cfg, log)
	if err != nil {
		return err
	}

	directory := repository.NewDirectory(st.users)
	if cfg.RedisAddr != "" {
		rdb, err := repository.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		directory = repository.NewCachedDirectory(directory, rdb, cfg.ProfileCacheTTL, log)
		log.Info("profile cache enabled", "addr", cfg.RedisAddr)
	}

	files, filesHandler, err := openFileStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	tokens := auth.NewManager(cfg.JWTKey, cfg.JWTTTL)
	hub := ws.NewHub(
		ws.NewRegistry(),
		ws.NewUpgrader(cfg.CORSOrigins, cfg.IsDevelopment()),
		tokens,
		st.chats,
		metrics.New(prometheus.DefaultRegisterer),
		log,
	)

	views := service.NewViewAssembler(st.chats, st.messages, directory)
	cascade := service.NewCascadeDeleter(st.messages, files, log)

	userService := service.NewUserService(st.users, tokens)
	chatService := service.NewChatService(st.chats, directory, views, cascade, hub, log)
	messageService := service.NewMessageService(st.chats, st.messages, views, files, cascade, hub, log)

	server := NewServer(Routes{
		User:       handler.NewUserHandler(userService, cfg.JWTTTL, !cfg.IsDevelopment()),
		Chat:       handler.NewChatHandler(chatService),
		Message:    handler.NewMessageHandler(messageService, cfg.MaxUploadSize),
		WS:         hub.ServeWS,
		Files:      filesHandler,
		OnShutdown: hub.Shutdown,
	}, tokens, cfg.CORSOrigins, log)

	return server.Run(ctx, cfg.ServerPort)
}

func openStores(cfg *config.Config, log *slog.Logger) (*stores, error) {
	level := logger.Warn
	if cfg.SlogLevel() <= slog.LevelDebug {
		level = logger.Info
	}

	var (
		db  *gorm.DB
		err error
	)
	if cfg.DBDriver == config.DriverMemory {
		log.Warn("using in-memory sqlite, data is lost on restart")
		db, err = repository.OpenMemory("chathub", level)
	} else {
		db, err = repository.NewDB(cfg.DBDriver, cfg.DSN(), level)
		if err == nil {
			err = repository.Migrate(db)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	log.Info("database ready", "driver", cfg.DBDriver)

	return &stores{
		chats:    repository.NewChatRepository(db),
		messages: repository.NewMessageRepository(db),
		users:    repository.NewUserRepository(db),
	}, nil
}

func openFileStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.FileStore, http.Handler, error) {
	switch cfg.StorageDriver {
	case config.StorageS3:
		s3Store, err := storage.NewS3(ctx, storage.S3Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Bucket:          cfg.S3BucketName,
			PublicURL:       cfg.S3PublicURL,
			PresignTTL:      storage.MaxPresignTTL,
		}, log)
		if err != nil {
			return nil, nil, err
		}
		return s3Store, nil, nil
	case config.StorageMinio:
		m, err := storage.NewMinio(ctx, storage.MinioConfig{
			Endpoint:   cfg.S3Endpoint,
			AccessKey:  cfg.S3AccessKeyID,
			SecretKey:  cfg.S3SecretAccessKey,
			UseSSL:     cfg.S3UseSSL,
			Bucket:     cfg.S3BucketName,
			PublicURL:  cfg.S3PublicURL,
			PresignTTL: storage.MaxPresignTTL,
		})
		if err != nil {
			return nil, nil, err
		}
		return m, nil, nil
	default:
		local, err := storage.NewLocal(afero.NewOsFs(), cfg.StorageLocalDir, cfg.StoragePublicURL)
		if err != nil {
			return nil, nil, err
		}
		return local, local.Handler(), nil
	}
}
