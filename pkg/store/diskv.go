// Package store provides the durable key-value backend shared by the record
// and settings stores. State lives in two partitions: a size-constrained
// "sync" partition for small documents and an unconstrained "local" partition
// for bulk values.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/peterbourgon/diskv/v3"
)

// Partition names one of the two durable namespaces.
type Partition string

const (
	// Sync holds small documents and enforces a per-item size quota.
	Sync Partition = "sync"
	// Local holds bulk values without a quota.
	Local Partition = "local"
)

// Partitions lists every partition in write order.
var Partitions = []Partition{Sync, Local}

// ErrQuotaExceeded is returned when a value is too large for the sync partition.
var ErrQuotaExceeded = errors.New("store: quota exceeded")

// Persistence defines the persistence contract for partitioned documents.
type Persistence interface {
	// Get decodes the value stored under key into v and reports whether it
	// was present.
	Get(ctx context.Context, p Partition, key string, v interface{}) (bool, error)
	// Set encodes v and stores it under key.
	Set(ctx context.Context, p Partition, key string, v interface{}) error
	// Watch streams change events until ctx is cancelled.
	Watch(ctx context.Context) (<-chan Event, error)
}

// Load creates a Persistence backed by diskv using the provided config.
func Load(cfg Config) (Persistence, error) {
	if cfg == nil {
		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return nil, err
		}
	}

	basePath := cfg.BasePath()
	if basePath == "" {
		return nil, errors.New("store: base path unknown")
	}
	p := &persistence{
		basePath:     basePath,
		maxItemBytes: cfg.MaxItemBytes(),
		parts:        make(map[Partition]*diskv.Diskv, len(Partitions)),
	}
	for _, part := range Partitions {
		dir := filepath.Join(basePath, string(part))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: ensure partition %s: %w", part, err)
		}
		// No read cache: the daemon and the CLI write the same files.
		p.parts[part] = diskv.New(diskv.Options{
			BasePath:     dir,
			CacheSizeMax: 0,
		})
	}
	return p, nil
}

type persistence struct {
	basePath     string
	maxItemBytes int
	parts        map[Partition]*diskv.Diskv
}

func (p *persistence) partition(part Partition) (*diskv.Diskv, error) {
	d, ok := p.parts[part]
	if !ok {
		return nil, fmt.Errorf("store: unknown partition %q", part)
	}
	return d, nil
}

func (p *persistence) Get(ctx context.Context, part Partition, key string, v interface{}) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	d, err := p.partition(part)
	if err != nil {
		return false, err
	}
	if !d.Has(key) {
		return false, nil
	}
	data, err := d.Read(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("store: read %s/%s: %w", part, key, err)
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("store: decode %s/%s: %w", part, key, err)
	}
	return true, nil
}

func (p *persistence) Set(ctx context.Context, part Partition, key string, v interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d, err := p.partition(part)
	if err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s/%s: %w", part, key, err)
	}
	if part == Sync && p.maxItemBytes > 0 {
		if size := len(key) + len(data); size > p.maxItemBytes {
			return fmt.Errorf("%w: %s is %d bytes, limit %d", ErrQuotaExceeded, key, size, p.maxItemBytes)
		}
	}
	if err := d.Write(key, data); err != nil {
		return fmt.Errorf("store: write %s/%s: %w", part, key, err)
	}
	return nil
}
