// Package pagination implements the opaque keyset cursor of the incremental
// article export.
package pagination

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const cursorSeparator = "|"

// ErrInvalidCursor wraps every decoding failure.
var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor marks the last article of a page in (fetched_at, id) order.
type Cursor struct {
	FetchedAt time.Time
	ID        int64
}

// Encode renders the cursor as URL-safe base64.
func (c Cursor) Encode() string {
	key := c.FetchedAt.UTC().Format(time.RFC3339Nano) + cursorSeparator + strconv.FormatInt(c.ID, 10)
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}

// Decode parses a value produced by Encode.
func Decode(encoded string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(encoded, "="))
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: bad encoding: %v", ErrInvalidCursor, err)
	}

	ts, idStr, ok := strings.Cut(string(raw), cursorSeparator)
	if !ok {
		return Cursor{}, fmt.Errorf("%w: missing separator", ErrInvalidCursor)
	}

	fetchedAt, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: bad timestamp: %v", ErrInvalidCursor, err)
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id < 0 {
		return Cursor{}, fmt.Errorf("%w: bad id %q", ErrInvalidCursor, idStr)
	}

	return Cursor{FetchedAt: fetchedAt.UTC(), ID: id}, nil
}
