package repository

import (
	"context"

	"tush00nka/chathub/internal/model"
)

// Directory resolves user ids to public profiles. It is the only way the chat
// side of the service reads users, so credentials never reach it.
type Directory interface {
	Profile(ctx context.Context, id uint) (model.Profile, error)
	// Profiles resolves ids to profiles; unknown ids are absent from the map.
	Profiles(ctx context.Context, ids []uint) (map[uint]model.Profile, error)
	ListExcept(ctx context.Context, id uint) ([]model.Profile, error)
}

type userDirectory struct {
	users UserRepository
}

func NewDirectory(users UserRepository) Directory {
	return &userDirectory{users: users}
}

func (d *userDirectory) Profile(ctx context.Context, id uint) (model.Profile, error) {
	user, err := d.users.FindByID(ctx, id)
	if err != nil {
		return model.Profile{}, err
	}
	return user.Profile(), nil
}

func (d *userDirectory) Profiles(ctx context.Context, ids []uint) (map[uint]model.Profile, error) {
	users, err := d.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	profiles := make(map[uint]model.Profile, len(users))
	for i := range users {
		profiles[users[i].ID] = users[i].Profile()
	}
	return profiles, nil
}

func (d *userDirectory) ListExcept(ctx context.Context, id uint) ([]model.Profile, error) {
	users, err := d.users.ListExcept(ctx, id)
	if err != nil {
		return nil, err
	}
	profiles := make([]model.Profile, len(users))
	for i := range users {
		profiles[i] = users[i].Profile()
	}
	return profiles, nil
}
