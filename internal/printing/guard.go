package printing

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"
)

const guardPrefix = "print:guard:"

// Guard suppresses resubmission of byte-identical output to the same device
// within a TTL window.
type Guard struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewGuard constructs a Guard. A nil client disables deduplication.
func NewGuard(client redis.Cmdable, ttl time.Duration) *Guard {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Guard{client: client, ttl: ttl}
}

// Digest fingerprints a submission.
func Digest(device string, copies int, pages [][]byte) string {
	h, _ := blake2b.New256(nil)
	var n [8]byte
	_, _ = h.Write([]byte(device))
	binary.BigEndian.PutUint64(n[:], uint64(copies))
	_, _ = h.Write(n[:])
	for _, p := range pages {
		binary.BigEndian.PutUint64(n[:], uint64(len(p)))
		_, _ = h.Write(n[:])
		_, _ = h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Acquire claims digest. It returns false when the same output was claimed
// inside the window.
func (g *Guard) Acquire(ctx context.Context, digest string) (bool, error) {
	if g == nil || g.client == nil {
		return true, nil
	}
	return g.client.SetNX(ctx, guardPrefix+digest, time.Now().Unix(), g.ttl).Result()
}

// Release drops a claim so a failed submission can be retried.
func (g *Guard) Release(ctx context.Context, digest string) error {
	if g == nil || g.client == nil {
		return nil
	}
	return g.client.Del(ctx, guardPrefix+digest).Err()
}
