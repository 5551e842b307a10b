package utils

import (
	"context"
	"strconv"
	"time"
)

const idempotencyTTL = 24 * time.Hour

func idemKey(userID uint, key string) string {
	return "idem:comment:" + strconv.FormatUint(uint64(userID), 10) + ":" + key
}

// IdempotencyClaim registers a client-supplied submission key for a user.
// It returns (existingID, false) when the key was already used, where
// existingID is the comment created by the first submission, and (0, true)
// when the key was claimed now. Redis errors fail open: retries are then
// possible, matching the at-most-once-attempt semantics of the rest of the
// pipeline.
func IdempotencyClaim(userID uint, key string) (uint, bool) {
	rc := GetRedis()
	if rc == nil || key == "" {
		return 0, true
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	rkey := idemKey(userID, key)
	ok, err := rc.SetNX(ctx, rkey, "pending", idempotencyTTL).Result()
	if err != nil {
		return 0, true
	}
	if ok {
		return 0, true
	}
	v, err := rc.Get(ctx, rkey).Result()
	if err != nil || v == "pending" {
		return 0, false
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), false
}

// IdempotencyComplete records the created comment id under a previously
// claimed key so replays can return the original result.
func IdempotencyComplete(userID uint, key string, commentID uint) {
	rc := GetRedis()
	if rc == nil || key == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_ = rc.Set(ctx, idemKey(userID, key), strconv.FormatUint(uint64(commentID), 10), idempotencyTTL).Err()
}

// IdempotencyRelease drops a claimed key after a failed submission so the
// client can retry with the same key instead of being stuck behind a
// "pending" claim until its TTL runs out.
func IdempotencyRelease(userID uint, key string) {
	rc := GetRedis()
	if rc == nil || key == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_ = rc.Del(ctx, idemKey(userID, key)).Err()
}
