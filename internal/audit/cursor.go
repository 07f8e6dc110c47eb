package audit

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidCursor is returned for malformed paging cursors.
var ErrInvalidCursor = errors.New("audit: invalid cursor")

type cursor struct {
	At time.Time
	ID int64
}

func encodeCursor(e Entry) string {
	raw := strconv.FormatInt(e.Timestamp.UnixNano(), 10) + ":" + strconv.FormatInt(e.ID, 10)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(s string) (*cursor, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	nanos, id, ok := strings.Cut(string(raw), ":")
	if !ok {
		return nil, ErrInvalidCursor
	}
	n, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	i, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	return &cursor{At: time.Unix(0, n).UTC(), ID: i}, nil
}
