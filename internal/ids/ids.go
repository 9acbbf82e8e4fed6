// Package ids mints the primary keys used across the service. ULIDs
// embed a millisecond timestamp, so rows sort by creation time and
// id-range scans stay index-friendly.
package ids

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// The monotonic reader is not safe for concurrent use; minting is
// serialized, which also keeps same-millisecond ids ordered.
var (
	mu     sync.Mutex
	source = ulid.Monotonic(rand.Reader, 0)
)

// New mints a 26-character ULID.
func New() string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), source).String()
}
