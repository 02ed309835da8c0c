package records

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"tableflip.dev/marklet/pkg/bookmarklet"
)

// ExportVersion is written into every snapshot.
const ExportVersion = 1

// Snapshot is the export document.
type Snapshot struct {
	Version    int                       `json:"version"`
	ExportedAt bookmarklet.Timestamp     `json:"exportedAt"`
	Items      []bookmarklet.Bookmarklet `json:"items"`
}

// ImportMode selects how imported items combine with the stored collection.
type ImportMode string

const (
	// ImportReplace discards the stored collection.
	ImportReplace ImportMode = "replace"
	// ImportMerge upserts by id.
	ImportMerge ImportMode = "merge"
)

// ParseImportMode validates s; "" means replace.
func ParseImportMode(s string) (ImportMode, error) {
	switch ImportMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ImportReplace:
		return ImportReplace, nil
	case ImportMerge:
		return ImportMerge, nil
	default:
		return "", fmt.Errorf("%w: unknown import mode %q", ErrInvalidFormat, s)
	}
}

// Export returns a versioned snapshot of every record.
func (s *Store) Export(ctx context.Context) (Snapshot, error) {
	items, err := s.ListAll(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Version:    ExportVersion,
		ExportedAt: s.stamp(),
		Items:      items,
	}, nil
}

// Import reads an export document and applies it with mode. Individual items
// are normalized leniently; only a document without an items array is
// rejected. It returns the number of items processed.
func (s *Store) Import(ctx context.Context, data []byte, mode ImportMode) (int, error) {
	rawItems, err := decodeItems(data)
	if err != nil {
		return 0, err
	}
	imported := make([]bookmarklet.Bookmarklet, 0, len(rawItems))
	for _, raw := range rawItems {
		imported = append(imported, s.importItem(raw))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, codes, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	next := metaState{Items: []meta{}}
	nextCodes := map[string]string{}
	if mode == ImportMerge {
		next = state.clone()
		for id, code := range codes {
			nextCodes[id] = code
		}
	}

	for _, item := range imported {
		m := split(item)
		if i := next.index(item.ID); i >= 0 {
			m.UpdatedAt = s.stamp()
			next.Items[i] = s.normalizeMeta(m)
		} else {
			next.Items = append(next.Items, m)
		}
		nextCodes[item.ID] = item.Code
	}

	if err := s.commit(ctx, state, next, nextCodes); err != nil {
		return 0, err
	}
	if err := s.clearDropped(ctx, state, next); err != nil {
		return len(imported), err
	}
	s.log.Info("imported bookmarklets", zap.Int("count", len(imported)), zap.String("mode", string(mode)))
	return len(imported), nil
}

// clearDropped unbinds every slot pointing at a record present in prev but
// not in next.
func (s *Store) clearDropped(ctx context.Context, prev, next metaState) error {
	if s.bindings == nil {
		return nil
	}
	for _, m := range prev.Items {
		if next.index(m.ID) >= 0 {
			continue
		}
		if err := s.bindings.ClearBinding(ctx, m.ID); err != nil {
			return fmt.Errorf("records: clear bindings for %s: %w", m.ID, err)
		}
	}
	return nil
}

func decodeItems(data []byte) ([]json.RawMessage, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrInvalidFormat)
	}
	raw := bytes.TrimSpace(doc["items"])
	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("%w: items must be an array", ErrInvalidFormat)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return items, nil
}

// importItem turns one loosely typed item into a normalized record. Missing
// or mistyped fields fall back to defaults.
func (s *Store) importItem(raw json.RawMessage) bookmarklet.Bookmarklet {
	fields := map[string]interface{}{}
	_ = json.Unmarshal(raw, &fields)

	id := stringOf(fields["id"])
	if id == "" {
		id = s.newID()
	}
	m := s.normalizeMeta(meta{
		ID:         id,
		Name:       stringOf(fields["name"]),
		Tags:       tagsOf(fields["tags"]),
		Favorite:   truthy(fields["favorite"]),
		CreatedAt:  timeOf(fields["createdAt"]),
		UpdatedAt:  timeOf(fields["updatedAt"]),
		LastUsedAt: timeOf(fields["lastUsedAt"]),
	})
	b := join(m, nil)
	b.Code = bookmarklet.NormalizeCode(stringOf(fields["code"]))
	return b
}

func stringOf(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func tagsOf(v interface{}) []string {
	switch t := v.(type) {
	case []interface{}:
		tags := make([]string, 0, len(t))
		for _, tag := range t {
			tags = append(tags, stringOf(tag))
		}
		return bookmarklet.NormalizeTags(tags)
	case string:
		return bookmarklet.ParseTags(t)
	default:
		return []string{}
	}
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case nil:
		return false
	default:
		return true
	}
}

func timeOf(v interface{}) bookmarklet.Timestamp {
	s, ok := v.(string)
	if !ok || s == "" {
		return bookmarklet.Timestamp{}
	}
	t, err := bookmarklet.ParseTime(s)
	if err != nil {
		return bookmarklet.Timestamp{}
	}
	return bookmarklet.At(t)
}
