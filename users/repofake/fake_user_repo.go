package fakeuserrepo

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-backoffice-core/internal/errors"
	"github.com/jrsteele09/go-backoffice-core/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users       map[string]*users.User
	usernameIDs map[string]string // username to user id
	lock        sync.RWMutex
}

func NewFakeUserRepo() users.UserRepo {
	return &FakeUserRepo{
		users:       make(map[string]*users.User),
		usernameIDs: make(map[string]string),
	}
}

func (ur *FakeUserRepo) Upsert(user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	ur.users[user.ID] = user
	ur.usernameIDs[user.Username] = user.ID
	return nil
}

func (ur *FakeUserRepo) Delete(username string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	userID, ok := ur.usernameIDs[username]
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "user %s", username)
	}
	delete(ur.usernameIDs, username)
	delete(ur.users, userID)
	return nil
}

func (ur *FakeUserRepo) GetByUsername(username string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.usernameIDs[username]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "user %s", username)
	}
	return ur.users[id], nil
}

func (ur *FakeUserRepo) GetByID(id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	user, ok := ur.users[id]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "user id %s", id)
	}
	return user, nil
}

func (ur *FakeUserRepo) List() ([]*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	userList := make([]*users.User, 0, len(ur.users))
	for _, v := range ur.users {
		userList = append(userList, v)
	}
	sort.Slice(userList, func(i, j int) bool {
		return userList[i].Username < userList[j].Username
	})
	return userList, nil
}

func (ur *FakeUserRepo) SetLastLogin(username string, at time.Time) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	id, ok := ur.usernameIDs[username]
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "user %s", username)
	}
	ur.users[id].LastLogin = at
	return nil
}
