package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"
)

type userRepository struct {
	store *Store
}

func NewUserRepository(store *Store) user.UserRepository {
	return &userRepository{store: store}
}

// GetByID implements user.UserRepository.
func (r *userRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	var (
		u  user.User
		ok bool
	)
	r.store.read(func(t *tables) {
		u, ok = t.users[id]
	})
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

// ListActive implements user.UserRepository.
func (r *userRepository) ListActive(ctx context.Context) ([]user.User, error) {
	var users []user.User
	r.store.read(func(t *tables) {
		for _, u := range t.users {
			if u.IsActive {
				users = append(users, u)
			}
		}
	})
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

type officeTimeRepository struct {
	store *Store
}

func NewOfficeTimeRepository(store *Store) schedule.OfficeTimeRepository {
	return &officeTimeRepository{store: store}
}

// GetByID implements schedule.OfficeTimeRepository.
func (r *officeTimeRepository) GetByID(ctx context.Context, id string) (schedule.OfficeTime, error) {
	var (
		o  schedule.OfficeTime
		ok bool
	)
	r.store.read(func(t *tables) {
		o, ok = t.officeTimes[id]
	})
	if !ok {
		return schedule.OfficeTime{}, schedule.ErrOfficeTimeNotFound
	}
	return o, nil
}
