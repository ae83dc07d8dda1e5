package services

import (
	"strings"
	"sync"
	"time"
)

// LockoutStatus is the pure-read answer for a (username, ip) pair.
type LockoutStatus struct {
	Locked     bool
	RetryAfter time.Duration
}

type lockoutEntry struct {
	failures    int
	windowStart time.Time
	lockedUntil time.Time
	lastSeen    time.Time
}

// LockoutService counts failed logins per (username, client-ip) and locks the
// pair out after a threshold. Single-process and best-effort: it is not a
// distributed rate limiter.
type LockoutService struct {
	mu        sync.Mutex
	entries   map[string]*lockoutEntry
	threshold int
	window    time.Duration
	cooldown  time.Duration

	writes     int
	sweepEvery int
	entryTTL   time.Duration

	now func() time.Time
}

func NewLockoutService(threshold int, window, cooldown time.Duration) *LockoutService {
	if threshold <= 0 {
		threshold = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	if cooldown <= 0 {
		cooldown = 15 * time.Minute
	}
	return &LockoutService{
		entries:    make(map[string]*lockoutEntry),
		threshold:  threshold,
		window:     window,
		cooldown:   cooldown,
		sweepEvery: 64,
		entryTTL:   window + cooldown,
		now:        time.Now,
	}
}

func lockoutKey(username, ip string) string {
	return strings.ToLower(strings.TrimSpace(username)) + "|" + ip
}

// RecordFailure registers a failed attempt. Returns the resulting status;
// when the threshold is reached the pair is locked and the counter resets.
func (s *LockoutService) RecordFailure(username, ip string) LockoutStatus {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.maybeSweep(now)

	key := lockoutKey(username, ip)
	entry, ok := s.entries[key]
	if !ok {
		entry = &lockoutEntry{windowStart: now}
		s.entries[key] = entry
	}
	entry.lastSeen = now

	if now.Before(entry.lockedUntil) {
		return LockoutStatus{Locked: true, RetryAfter: entry.lockedUntil.Sub(now)}
	}

	// Sliding window: stale windows restart the count.
	if now.Sub(entry.windowStart) > s.window {
		entry.failures = 0
		entry.windowStart = now
	}

	entry.failures++
	if entry.failures >= s.threshold {
		entry.lockedUntil = now.Add(s.cooldown)
		entry.failures = 0
		entry.windowStart = now
		return LockoutStatus{Locked: true, RetryAfter: s.cooldown}
	}

	return LockoutStatus{}
}

// RecordSuccess clears the pair entirely.
func (s *LockoutService) RecordSuccess(username, ip string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, lockoutKey(username, ip))
}

// Status is a pure read; it never mutates counters.
func (s *LockoutService) Status(username, ip string) LockoutStatus {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[lockoutKey(username, ip)]
	if !ok || !now.Before(entry.lockedUntil) {
		return LockoutStatus{}
	}
	return LockoutStatus{Locked: true, RetryAfter: entry.lockedUntil.Sub(now)}
}

// maybeSweep drops stale entries every Nth write. Amortized cleanup instead
// of a dedicated timer. Caller holds the lock.
func (s *LockoutService) maybeSweep(now time.Time) {
	s.writes++
	if s.writes%s.sweepEvery != 0 {
		return
	}
	for key, entry := range s.entries {
		relevant := entry.lastSeen
		if entry.lockedUntil.After(relevant) {
			relevant = entry.lockedUntil
		}
		if now.Sub(relevant) > s.entryTTL {
			delete(s.entries, key)
		}
	}
}
