package id

import (
	cryptoRand "crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono = ulid.Monotonic(cryptoRand.Reader, 0)
)

// New returns a ULID string (time-sortable identifier).
//
// Run ids stamped on journaled fills sort by the time the run started, so a
// journal query over several runs comes back in launch order.
func New() string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), mono)
	if err != nil {
		// Only possible if the entropy source fails or time goes backwards.
		panic(err)
	}
	return id.String()
}
