package inmemory

import (
	"context"
	"fmt"
	"sync"

	"grumbler/schemas"
	"grumbler/storage"
)

type MemoryUserStorage struct {
	mu sync.RWMutex

	userByAuthId map[schemas.AuthID]*schemas.User
}

func NewInMemoryUserStorage() *MemoryUserStorage {
	return &MemoryUserStorage{
		userByAuthId: map[schemas.AuthID]*schemas.User{},
	}
}

func (s *MemoryUserStorage) InsertUser(_ context.Context, user *schemas.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.userByAuthId[user.AuthID]; ok {
		return fmt.Errorf("%w: user %s", storage.ErrCollision, user.AuthID)
	}
	s.userByAuthId[user.AuthID] = user.Copy()
	return nil
}

func (s *MemoryUserStorage) FindUser(_ context.Context, authId schemas.AuthID) (*schemas.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.userByAuthId[authId]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", storage.ErrNotFound, authId)
	}
	return user.Copy(), nil
}

func (s *MemoryUserStorage) UpdateUserName(_ context.Context, authId schemas.AuthID, name string) (*schemas.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.userByAuthId[authId]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", storage.ErrNotFound, authId)
	}
	user.Name = name
	return user.Copy(), nil
}

func (s *MemoryUserStorage) DeleteUser(_ context.Context, authId schemas.AuthID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.userByAuthId[authId]; !ok {
		return fmt.Errorf("%w: user %s", storage.ErrNotFound, authId)
	}
	delete(s.userByAuthId, authId)
	return nil
}

func (s *MemoryUserStorage) CountUsers(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.userByAuthId), nil
}
