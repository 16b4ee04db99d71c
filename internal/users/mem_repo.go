package users

import (
	"context"
	"sync"
)

// MemRepo is an in-memory Store, used in tests and when the service
// runs without a database.
type MemRepo struct {
	mutex  sync.Mutex
	users  map[int]User
	nextID int
}

var _ Store = (*MemRepo)(nil)

func NewMemRepo() *MemRepo {
	return &MemRepo{
		users:  make(map[int]User),
		nextID: 1,
	}
}

func (r *MemRepo) Create(_ context.Context, user User) (*User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username {
			return nil, ErrUsernameTaken
		}
	}

	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user

	return &user, nil
}

func (r *MemRepo) Get(_ context.Context, id int) (*User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (r *MemRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, user := range r.users {
		if user.Username == username {
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}
