package wizard

import (
	"sync"
	"time"

	"github.com/cryptobio/cryptobio-backend/internal/profile"
)

type AvailabilityStatus string

const (
	StatusIdle      AvailabilityStatus = "idle"
	StatusChecking  AvailabilityStatus = "checking"
	StatusAvailable AvailabilityStatus = "available"
	StatusTaken     AvailabilityStatus = "taken"
)

// availabilityChecker runs at most one pending username check per wizard
// session. Scheduling a new check supersedes the pending one: its timer is
// stopped and, if it already fired, its result is discarded. Only the
// latest scheduled check's result is ever applied.
type availabilityChecker struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	seq   uint64

	check func(username string) bool
	apply func(username string, status AvailabilityStatus)
}

func newAvailabilityChecker(
	delay time.Duration,
	check func(username string) bool,
	apply func(username string, status AvailabilityStatus),
) *availabilityChecker {
	return &availabilityChecker{delay: delay, check: check, apply: apply}
}

// Schedule registers the latest input value. Inputs shorter than the
// minimum username length reset the status to idle without querying.
func (c *availabilityChecker) Schedule(username string) {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	tooShort := len(username) < profile.UsernameMinLen
	if !tooShort {
		c.timer = time.AfterFunc(c.delay, func() { c.run(seq, username) })
	}
	c.mu.Unlock()

	if tooShort {
		c.apply(username, StatusIdle)
	}
}

func (c *availabilityChecker) run(seq uint64, username string) {
	if c.superseded(seq) {
		return
	}
	c.apply(username, StatusChecking)

	available := c.check(username)

	if c.superseded(seq) {
		return
	}
	if available {
		c.apply(username, StatusAvailable)
	} else {
		c.apply(username, StatusTaken)
	}
}

func (c *availabilityChecker) superseded(seq uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return seq != c.seq
}
