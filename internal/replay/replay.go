package replay

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const (
	// ExtSingle is the file extension for single-player replays.
	ExtSingle = "ttr"
	// ExtMulti is the file extension for multiplayer replays.
	ExtMulti = "ttrm"

	filenameTimeLayout = "20060102T150405Z"
)

// Record is a raw replay entry as reported by a metadata stream.
type Record struct {
	ReplayID   string
	IsMulti    *bool
	RecordedAt string
}

// Descriptor identifies a replay and determines where it lives on disk.
type Descriptor struct {
	ID         string
	IsMulti    bool
	RecordedAt time.Time
}

// Key is a comparable form of a Descriptor covering every field. The
// timestamp is split into seconds and nanoseconds so every representable
// instant keeps a distinct key.
type Key struct {
	ID      string
	IsMulti bool
	Sec     int64
	Nsec    int
}

// FromRecord converts a raw record into a Descriptor. The multiplayer flag
// defaults to false when absent and the timestamp is normalized to UTC.
func FromRecord(rec Record) (Descriptor, error) {
	id := rec.ReplayID
	if err := validateID(id); err != nil {
		return Descriptor{}, err
	}
	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(rec.RecordedAt))
	if err != nil {
		return Descriptor{}, &TimestampParseError{ReplayID: id, Value: rec.RecordedAt, Err: err}
	}
	multi := false
	if rec.IsMulti != nil {
		multi = *rec.IsMulti
	}
	return Descriptor{
		ID:         id,
		IsMulti:    multi,
		RecordedAt: ts.UTC(),
	}, nil
}

func validateID(id string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return &InvalidRecordError{ReplayID: id, Reason: "empty replay id"}
	case strings.ContainsAny(id, `/\`):
		return &InvalidRecordError{ReplayID: id, Reason: "replay id contains a path separator"}
	case strings.Contains(id, ".."):
		return &InvalidRecordError{ReplayID: id, Reason: "replay id contains a relative path element"}
	}
	return nil
}

// Extension returns the file extension for the descriptor, without the dot.
func (d Descriptor) Extension() string {
	if d.IsMulti {
		return ExtMulti
	}
	return ExtSingle
}

// Filename returns the canonical on-disk name, e.g. 20230501T123000Z-abc123.ttr.
func (d Descriptor) Filename() string {
	return fmt.Sprintf("%s-%s.%s", d.RecordedAt.UTC().Format(filenameTimeLayout), d.ID, d.Extension())
}

// Path joins the canonical filename onto dir.
func (d Descriptor) Path(dir string) string {
	return filepath.Join(dir, d.Filename())
}

// Key returns the comparable identity of d.
func (d Descriptor) Key() Key {
	return Key{ID: d.ID, IsMulti: d.IsMulti, Sec: d.RecordedAt.Unix(), Nsec: d.RecordedAt.Nanosecond()}
}

// Equal reports whether d and other agree on every field.
func (d Descriptor) Equal(other Descriptor) bool {
	return d.Key() == other.Key()
}

// String implements fmt.Stringer.
func (d Descriptor) String() string {
	return d.Filename()
}

// Dedup removes descriptors equal to an earlier one, keeping first-seen order.
// Two descriptors sharing an id but disagreeing on another field are both kept.
func Dedup(descriptors []Descriptor) []Descriptor {
	if len(descriptors) == 0 {
		return nil
	}
	seen := make(map[Key]struct{}, len(descriptors))
	out := make([]Descriptor, 0, len(descriptors))
	for _, d := range descriptors {
		key := d.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}
	return out
}

// IsReplayFile reports whether name carries one of the replay extensions.
// The match is exact and case-sensitive, and a bare dotfile such as ".ttr"
// has no extension.
func IsReplayFile(name string) bool {
	ext := filepath.Ext(name)
	if len(name) == len(ext) {
		return false
	}
	switch ext {
	case "." + ExtSingle, "." + ExtMulti:
		return true
	default:
		return false
	}
}
