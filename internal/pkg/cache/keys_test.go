package cache

import (
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestVoteKey(t *testing.T) {
	assert.Equal(t, "serverhub:vote:12:10.0.0.1", VoteKey(12, " 10.0.0.1 "))
	assert.Equal(t, "serverhub:vote:3:user:7", VoteKey(3, "User:7"))
}

func TestIsMiss(t *testing.T) {
	assert.True(t, IsMiss(redis.Nil))
	assert.False(t, IsMiss(nil))
}
