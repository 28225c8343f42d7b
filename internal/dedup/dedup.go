package dedup

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/jackmcnulty/sports-ticker/internal/aggregator"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Deduplicator suppresses snapshots whose content matches the last one
// published. A snapshot is still let through once maxQuiet has passed so
// downstream caches with a TTL stay warm.
type Deduplicator struct {
	maxQuiet time.Duration
	now      func() time.Time

	mu       sync.Mutex
	last     string
	lastSent time.Time
}

// NewDeduplicator creates a new deduplicator
func NewDeduplicator(maxQuiet time.Duration) *Deduplicator {
	return &Deduplicator{
		maxQuiet: maxQuiet,
		now:      time.Now,
	}
}

// ShouldPublish returns true if snap differs from the last published
// snapshot or the quiet period has expired, and records it as published
func (d *Deduplicator) ShouldPublish(snap aggregator.Snapshot) (bool, error) {
	key, err := Fingerprint(snap)
	if err != nil {
		return false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if key == d.last && now.Sub(d.lastSent) < d.maxQuiet {
		return false, nil
	}

	d.last = key
	d.lastSent = now
	return true, nil
}

// Reset forgets the last published snapshot
func (d *Deduplicator) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last = ""
	d.lastSent = time.Time{}
}

// Fingerprint hashes the user-visible content of a snapshot. ID and
// timestamp are excluded, so two polls of an unchanged scoreboard match.
func Fingerprint(snap aggregator.Snapshot) (string, error) {
	content, err := json.Marshal(struct {
		Mode     aggregator.Mode `json:"mode"`
		Events   interface{}     `json:"events"`
		Matchups interface{}     `json:"matchups"`
		Alert    string          `json:"alert"`
	}{snap.Mode, snap.Events, snap.Matchups, snap.Alert})
	if err != nil {
		return "", fmt.Errorf("fingerprinting snapshot: %w", err)
	}

	hash := sha256.Sum256(content)
	return fmt.Sprintf("%x", hash[:16]), nil
}
