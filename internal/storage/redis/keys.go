package redis

import (
	"fmt"

	"github.com/nohumanman/descenders-modding/internal/model"
)

// Key prefix for all split-timer data
const keyPrefix = "splittimer"

// allowListKey returns the Redis key for the SET of authorized identity ids
func allowListKey() string {
	return fmt.Sprintf("%s:allowlist", keyPrefix)
}

// operatorKey returns the Redis key for an Operator
func operatorKey(id model.IdentityID) string {
	return fmt.Sprintf("%s:operator:%s", keyPrefix, id)
}

// timeKey returns the Redis key for a TimeRecord
func timeKey(id model.TimeID) string {
	return fmt.Sprintf("%s:time:%s", keyPrefix, id)
}

// timesIndexKey returns the Redis key for the ZSET of time ids scored by
// submission time in milliseconds
func timesIndexKey() string {
	return fmt.Sprintf("%s:times", keyPrefix)
}

// trailTimesKey returns the Redis key for the SET of time ids on a trail
func trailTimesKey(trail string) string {
	return fmt.Sprintf("%s:trail:%s:times", keyPrefix, trail)
}

// trailsKey returns the Redis key for the SET of trail names with runs
func trailsKey() string {
	return fmt.Sprintf("%s:trails", keyPrefix)
}

// worldsKey returns the Redis key for the SET of world names with runs
func worldsKey() string {
	return fmt.Sprintf("%s:worlds", keyPrefix)
}
