package parser

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/chatlens/chatlens/internal/models"
)

// Dedup tracks content hashes seen within a single processing run. It is
// created fresh per run and threaded explicitly so concurrent runs never
// share state; it must not be reused across runs.
type Dedup struct {
	seen map[string]struct{}
}

// NewDedup creates an empty per-run dedup set.
func NewDedup() *Dedup {
	return &Dedup{seen: make(map[string]struct{})}
}

// hashMessage computes the content hash over the raw timestamp text, sender
// and message. Hashing happens before timestamp normalization so exact
// duplicate extractions are caught before normalization can coalesce
// near-duplicates.
func hashMessage(m models.Message) string {
	h := sha256.Sum256([]byte(m.Timestamp + m.Sender + m.Message))
	return hex.EncodeToString(h[:])
}

// Accept reports whether the record is the first seen with its content
// hash, recording it. First-seen wins; later identical records are
// rejected.
func (d *Dedup) Accept(m models.Message) bool {
	key := hashMessage(m)
	if _, dup := d.seen[key]; dup {
		return false
	}
	d.seen[key] = struct{}{}
	return true
}

// Len returns the number of distinct records seen so far.
func (d *Dedup) Len() int {
	return len(d.seen)
}
