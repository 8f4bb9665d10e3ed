package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"tush00nka/chathub/internal/model"

	"github.com/redis/go-redis/v9"
)

// cachedDirectory is a read-through redis cache in front of a Directory.
// Cache failures degrade to the underlying directory and are only logged.
type cachedDirectory struct {
	next Directory
	rdb  *redis.Client
	ttl  time.Duration
	log  *slog.Logger
}

func NewCachedDirectory(next Directory, rdb *redis.Client, ttl time.Duration, log *slog.Logger) Directory {
	return &cachedDirectory{
		next: next,
		rdb:  rdb,
		ttl:  ttl,
		log:  log.With("component", "profile_cache"),
	}
}

// getProfileKey возвращает ключ для хранения профиля пользователя
func getProfileKey(userID uint) string {
	return fmt.Sprintf("user:%d:profile", userID)
}

func (d *cachedDirectory) Profile(ctx context.Context, id uint) (model.Profile, error) {
	profiles, err := d.Profiles(ctx, []uint{id})
	if err != nil {
		return model.Profile{}, err
	}
	profile, ok := profiles[id]
	if !ok {
		return model.Profile{}, ErrNotFound
	}
	return profile, nil
}

func (d *cachedDirectory) Profiles(ctx context.Context, ids []uint) (map[uint]model.Profile, error) {
	if len(ids) == 0 {
		return map[uint]model.Profile{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = getProfileKey(id)
	}

	values, err := d.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		d.log.Warn("profile cache read failed", "error", err)
		return d.next.Profiles(ctx, ids)
	}

	profiles := make(map[uint]model.Profile, len(ids))
	var misses []uint
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			misses = append(misses, ids[i])
			continue
		}
		var p model.Profile
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			misses = append(misses, ids[i])
			continue
		}
		profiles[ids[i]] = p
	}

	if len(misses) == 0 {
		return profiles, nil
	}

	loaded, err := d.next.Profiles(ctx, misses)
	if err != nil {
		return nil, err
	}

	pipe := d.rdb.Pipeline()
	for id, p := range loaded {
		profiles[id] = p
		data, err := json.Marshal(p)
		if err != nil {
			continue
		}
		pipe.Set(ctx, getProfileKey(id), data, d.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		d.log.Warn("profile cache write failed", "error", err)
	}

	return profiles, nil
}

func (d *cachedDirectory) ListExcept(ctx context.Context, id uint) ([]model.Profile, error) {
	return d.next.ListExcept(ctx, id)
}
