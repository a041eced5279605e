package cache

import "time"

// Store is the part of the cache that request handlers use.
type Store interface {
	GetJSON(key string, dest interface{}) error
	SetJSON(key string, value interface{}, expiration time.Duration) error
	Delete(key string) error
	TryVote(serverID uint, voter string, window time.Duration) (bool, error)
}

type redisStore struct{}

// NewStore returns a Store backed by the shared Redis client.
func NewStore() Store {
	return redisStore{}
}

func (redisStore) GetJSON(key string, dest interface{}) error {
	return GetJSON(key, dest)
}

func (redisStore) SetJSON(key string, value interface{}, expiration time.Duration) error {
	return SetJSON(key, value, expiration)
}

func (redisStore) Delete(key string) error {
	return Delete(key)
}

func (redisStore) TryVote(serverID uint, voter string, window time.Duration) (bool, error) {
	return TryVote(serverID, voter, window)
}
