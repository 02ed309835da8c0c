// Package records owns the persisted bookmarklet collection.
//
// Metadata for every record is kept as one document in the size-constrained
// sync partition; code bodies are kept as an id-to-code map in the local
// partition. Every mutation writes metadata first and code second; when the
// code write fails the previous metadata document is restored so the two
// partitions do not drift apart.
//
// Mutations are serialized within a process. Two processes writing the same
// base path concurrently can still lose one writer's change.
package records

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"tableflip.dev/marklet/pkg/bookmarklet"
	"tableflip.dev/marklet/pkg/store"
)

const (
	// MetaKey holds the metadata document in the sync partition.
	MetaKey = "bookmarklet_meta_v1"
	// CodeKey holds the id-to-code map in the local partition.
	CodeKey = "bookmarklet_code_v1"

	copySuffix = " (copy)"
)

var (
	// ErrNotFound is returned when an update or duplicate targets a missing id.
	ErrNotFound = errors.New("records: bookmarklet not found")
	// ErrInvalidFormat is returned for an import document without an items array.
	ErrInvalidFormat = errors.New("records: invalid import format")
)

// BindingCleaner removes shortcut bindings that point at a deleted record.
type BindingCleaner interface {
	ClearBinding(ctx context.Context, id string) error
}

// Payload carries the user supplied fields of a new record.
type Payload struct {
	Name     string
	Tags     []string
	Favorite bool
	Code     string
}

// Patch is a partial update. Nil fields are left alone; a non-nil empty Tags
// clears the tags.
type Patch struct {
	Name     *string
	Tags     []string
	Favorite *bool
	Code     *string
}

type meta struct {
	ID         string                `json:"id"`
	Name       string                `json:"name"`
	Tags       []string              `json:"tags"`
	Favorite   bool                  `json:"favorite"`
	CreatedAt  bookmarklet.Timestamp `json:"createdAt"`
	UpdatedAt  bookmarklet.Timestamp `json:"updatedAt"`
	LastUsedAt bookmarklet.Timestamp `json:"lastUsedAt"`
}

type metaState struct {
	Items []meta `json:"items"`
}

func (m metaState) index(id string) int {
	for i, item := range m.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (m metaState) clone() metaState {
	items := make([]meta, len(m.Items))
	copy(items, m.Items)
	return metaState{Items: items}
}

// Store is the record repository.
type Store struct {
	p        store.Persistence
	bindings BindingCleaner
	log      *zap.Logger
	now      func() time.Time
	newID    func() string

	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for write diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator replaces bookmarklet.NewID.
func WithIDGenerator(f func() string) Option {
	return func(s *Store) {
		s.newID = f
	}
}

// New returns a Store over p. bindings may be nil when no settings store
// needs to be kept consistent.
func New(p store.Persistence, bindings BindingCleaner, opts ...Option) *Store {
	s := &Store{
		p:        p,
		bindings: bindings,
		log:      zap.NewNop(),
		now:      time.Now,
		newID:    bookmarklet.NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) stamp() bookmarklet.Timestamp {
	return bookmarklet.At(s.now())
}

func (s *Store) normalizeMeta(m meta) meta {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.stamp()
	}
	if m.UpdatedAt.IsZero() || m.UpdatedAt.Before(m.CreatedAt.Time) {
		m.UpdatedAt = m.CreatedAt
	}
	return meta{
		ID:         m.ID,
		Name:       bookmarklet.Name(m.Name),
		Tags:       bookmarklet.NormalizeTags(m.Tags),
		Favorite:   m.Favorite,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
		LastUsedAt: m.LastUsedAt,
	}
}

func (s *Store) loadMeta(ctx context.Context) (metaState, error) {
	var state metaState
	if _, err := s.p.Get(ctx, store.Sync, MetaKey, &state); err != nil {
		return metaState{}, fmt.Errorf("records: load metadata: %w", err)
	}
	for i, item := range state.Items {
		state.Items[i] = s.normalizeMeta(item)
	}
	if state.Items == nil {
		state.Items = []meta{}
	}
	return state, nil
}

func (s *Store) loadCodes(ctx context.Context) (map[string]string, error) {
	codes := map[string]string{}
	if _, err := s.p.Get(ctx, store.Local, CodeKey, &codes); err != nil {
		return nil, fmt.Errorf("records: load code: %w", err)
	}
	if codes == nil {
		codes = map[string]string{}
	}
	return codes, nil
}

func (s *Store) load(ctx context.Context) (metaState, map[string]string, error) {
	state, err := s.loadMeta(ctx)
	if err != nil {
		return metaState{}, nil, err
	}
	codes, err := s.loadCodes(ctx)
	if err != nil {
		return metaState{}, nil, err
	}
	return state, codes, nil
}

// commit writes next and then codes (when non-nil). A failed code write
// restores prev.
func (s *Store) commit(ctx context.Context, prev, next metaState, codes map[string]string) error {
	if err := s.p.Set(ctx, store.Sync, MetaKey, next); err != nil {
		return fmt.Errorf("records: write metadata: %w", err)
	}
	if codes == nil {
		return nil
	}
	if err := s.p.Set(ctx, store.Local, CodeKey, codes); err != nil {
		werr := fmt.Errorf("records: write code: %w", err)
		if rerr := s.p.Set(context.WithoutCancel(ctx), store.Sync, MetaKey, prev); rerr != nil {
			s.log.Error("metadata rollback failed; records may have empty code",
				zap.Error(rerr), zap.NamedError("cause", err))
			return errors.Join(werr, fmt.Errorf("records: roll back metadata: %w", rerr))
		}
		return werr
	}
	return nil
}

func join(m meta, codes map[string]string) bookmarklet.Bookmarklet {
	return bookmarklet.Bookmarklet{
		ID:         m.ID,
		Name:       m.Name,
		Tags:       append([]string{}, m.Tags...),
		Favorite:   m.Favorite,
		Code:       codes[m.ID],
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
		LastUsedAt: m.LastUsedAt,
	}
}

func split(b bookmarklet.Bookmarklet) meta {
	return meta{
		ID:         b.ID,
		Name:       b.Name,
		Tags:       b.Tags,
		Favorite:   b.Favorite,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
		LastUsedAt: b.LastUsedAt,
	}
}

// ListAll returns every record in persisted order with its code. A record
// without a code entry gets "".
func (s *Store) ListAll(ctx context.Context) ([]bookmarklet.Bookmarklet, error) {
	state, codes, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]bookmarklet.Bookmarklet, 0, len(state.Items))
	for _, item := range state.Items {
		out = append(out, join(item, codes))
	}
	return out, nil
}

// Get returns the record with id. Absence is reported through the boolean.
func (s *Store) Get(ctx context.Context, id string) (bookmarklet.Bookmarklet, bool, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return bookmarklet.Bookmarklet{}, false, err
	}
	for _, b := range all {
		if b.ID == id {
			return b, true, nil
		}
	}
	return bookmarklet.Bookmarklet{}, false, nil
}

// Create inserts a new record at the front of the collection.
func (s *Store) Create(ctx context.Context, payload Payload) (bookmarklet.Bookmarklet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.create(ctx, payload)
}

func (s *Store) create(ctx context.Context, payload Payload) (bookmarklet.Bookmarklet, error) {
	state, codes, err := s.load(ctx)
	if err != nil {
		return bookmarklet.Bookmarklet{}, err
	}

	now := s.stamp()
	item := s.normalizeMeta(meta{
		ID:        s.newID(),
		Name:      payload.Name,
		Tags:      payload.Tags,
		Favorite:  payload.Favorite,
		CreatedAt: now,
		UpdatedAt: now,
	})

	next := metaState{Items: append([]meta{item}, state.Items...)}
	codes[item.ID] = bookmarklet.NormalizeCode(payload.Code)

	if err := s.commit(ctx, state, next, codes); err != nil {
		return bookmarklet.Bookmarklet{}, err
	}
	s.log.Debug("created bookmarklet", zap.String("id", item.ID), zap.String("name", item.Name))
	return join(item, codes), nil
}

// Update applies patch to the record with id.
func (s *Store) Update(ctx context.Context, id string, patch Patch) (bookmarklet.Bookmarklet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, codes, err := s.load(ctx)
	if err != nil {
		return bookmarklet.Bookmarklet{}, err
	}
	i := state.index(id)
	if i < 0 {
		return bookmarklet.Bookmarklet{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	next := state.clone()
	item := next.Items[i]
	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Tags != nil {
		item.Tags = patch.Tags
	}
	if patch.Favorite != nil {
		item.Favorite = *patch.Favorite
	}
	item.UpdatedAt = s.stamp()
	next.Items[i] = s.normalizeMeta(item)

	var writeCodes map[string]string
	if patch.Code != nil {
		codes[id] = bookmarklet.NormalizeCode(*patch.Code)
		writeCodes = codes
	}

	if err := s.commit(ctx, state, next, writeCodes); err != nil {
		return bookmarklet.Bookmarklet{}, err
	}
	return join(next.Items[i], codes), nil
}

// Delete removes the record with id and clears any shortcut binding to it.
// It reports whether a record was removed; deleting a missing id is not an
// error.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, codes, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	i := state.index(id)
	if i < 0 {
		return false, nil
	}

	next := metaState{Items: make([]meta, 0, len(state.Items)-1)}
	next.Items = append(next.Items, state.Items[:i]...)
	next.Items = append(next.Items, state.Items[i+1:]...)
	delete(codes, id)

	if err := s.commit(ctx, state, next, codes); err != nil {
		return false, err
	}
	if s.bindings != nil {
		if err := s.bindings.ClearBinding(ctx, id); err != nil {
			return true, fmt.Errorf("records: clear bindings for %s: %w", id, err)
		}
	}
	s.log.Debug("deleted bookmarklet", zap.String("id", id))
	return true, nil
}

// Duplicate creates an independent copy of the record with id.
func (s *Store) Duplicate(ctx context.Context, id string) (bookmarklet.Bookmarklet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, codes, err := s.load(ctx)
	if err != nil {
		return bookmarklet.Bookmarklet{}, err
	}
	i := state.index(id)
	if i < 0 {
		return bookmarklet.Bookmarklet{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	source := join(state.Items[i], codes)
	return s.create(ctx, Payload{
		Name:     source.Name + copySuffix,
		Tags:     source.Tags,
		Favorite: false,
		Code:     source.Code,
	})
}

// TouchUsage stamps the record with id as used now. A missing id is ignored.
func (s *Store) TouchUsage(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.loadMeta(ctx)
	if err != nil {
		return err
	}
	i := state.index(id)
	if i < 0 {
		return nil
	}
	next := state.clone()
	now := s.stamp()
	next.Items[i].LastUsedAt = now
	next.Items[i].UpdatedAt = now
	return s.commit(ctx, state, next, nil)
}
