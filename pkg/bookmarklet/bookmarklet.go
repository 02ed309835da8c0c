// Package bookmarklet holds the bookmarklet record and the pure helpers that
// produce canonical field values for it.
package bookmarklet

import (
	"encoding/json"
	"fmt"
	"time"
)

// Bookmarklet is a named, tagged script plus its bookkeeping timestamps.
type Bookmarklet struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Tags       []string  `json:"tags"`
	Favorite   bool      `json:"favorite"`
	Code       string    `json:"code"`
	CreatedAt  Timestamp `json:"createdAt"`
	UpdatedAt  Timestamp `json:"updatedAt"`
	LastUsedAt Timestamp `json:"lastUsedAt"`
}

// Used reports whether the bookmarklet has ever been run.
func (b Bookmarklet) Used() bool {
	return !b.LastUsedAt.IsZero()
}

// Clone returns a copy that shares no slices with b.
func (b Bookmarklet) Clone() Bookmarklet {
	out := b
	out.Tags = append([]string{}, b.Tags...)
	return out
}

const layoutJS = "2006-01-02T15:04:05.000Z07:00"

// ParseTime accepts RFC 3339 with or without fractional seconds.
func ParseTime(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// Timestamp is a time that serializes as an RFC 3339 string, or "" when zero.
type Timestamp struct {
	time.Time
}

// At wraps t, dropping the monotonic reading.
func At(t time.Time) Timestamp {
	return Timestamp{Time: t.Round(0)}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(fmt.Sprintf("%q", t.String())), nil
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v == "" {
		t.Time = time.Time{}
		return nil
	}
	var err error
	t.Time, err = ParseTime(v)
	return err
}

func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(layoutJS)
}
