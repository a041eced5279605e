package cache

import (
	"fmt"
	"strings"
	"time"
)

// TopServersKey caches the ranking shown on the landing page.
const TopServersKey = "serverhub:top_servers"

// VoteKey is the throttle key of one voter for one server.
func VoteKey(serverID uint, voter string) string {
	return fmt.Sprintf("serverhub:vote:%d:%s", serverID, strings.ToLower(strings.TrimSpace(voter)))
}

// TryVote claims the vote throttle of voter for serverID. It returns false
// while an earlier vote is still inside the window.
func TryVote(serverID uint, voter string, window time.Duration) (bool, error) {
	return GetClient().SetNX(ctx, VoteKey(serverID, voter), 1, window).Result()
}
