// Package xid generates short prefixed identifiers for correlating log
// lines, such as HTTP request IDs and sync run IDs. Entity keys are
// assigned by the store and never come from here.
package xid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// New returns "<prefix>-<unix nanos>-<random hex>". When the random
// source is unavailable the timestamp alone still keeps IDs distinct
// enough for log correlation.
func New(prefix string) string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixNano(), hex.EncodeToString(buf))
}
