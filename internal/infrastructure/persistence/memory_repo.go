package persistence

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"dealradar/internal/domain"
	"dealradar/internal/domain/entity"
	"dealradar/internal/infrastructure/kv"
	"dealradar/pkg/errcodes"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const memoryKey = "memory"

// MemoryRepository is the durable deal store on top of a backing store. Load
// verifies structural integrity before accepting bytes as current state;
// Save round-trips the encoding before the conditional swap and never
// overwrites state it has not verified against.
type MemoryRepository struct {
	store kv.Store

	mu      sync.Mutex
	current entity.Memory
	loaded  bool
}

func NewMemoryRepository(store kv.Store) *MemoryRepository {
	return &MemoryRepository{
		store:   store,
		current: entity.NewMemory(),
	}
}

// Load returns the durable memory. The returned state carries the raw
// snapshot it was decoded from, so a later Save compares against exactly
// the bytes this caller saw. When the backing data fails verification the
// prior in-memory state (or an empty store on first run) is returned
// together with a PersistenceIntegrity error, so the caller can surface the
// warning without losing history.
func (r *MemoryRepository) Load(ctx context.Context) (entity.Memory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := r.store.Get(ctx, memoryKey)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			if !r.loaded {
				r.current = entity.NewMemory()
				r.loaded = true
			}

			return r.current.Clone(), nil
		}

		return r.current.Clone(), domain.WrapError(err, errcodes.PersistenceIntegrity, "memory read failed")
	}

	memory, err := decodeMemory(raw)
	if err != nil {
		return r.current.Clone(), domain.WrapError(err, errcodes.PersistenceIntegrity, "memory verification failed")
	}

	memory.Revision = raw
	r.current = memory
	r.loaded = true

	return r.current.Clone(), nil
}

// Save atomically replaces the durable memory. The new state is encoded,
// decoded back and compared before the swap; the conditional write then
// compares against the snapshot memory was loaded from and fails with
// PersistenceConflict when another writer got there first, so interleaved
// cycles cannot overwrite each other's history.
func (r *MemoryRepository) Save(ctx context.Context, memory entity.Memory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := json.Marshal(newMemorySchema(memory))
	if err != nil {
		return domain.WrapError(err, errcodes.PersistenceIntegrity, "memory encode failed")
	}

	// Successful-load verification before overwrite: if these bytes cannot
	// be read back as an equivalent state, they must not replace history.
	reread, err := decodeMemory(raw)
	if err != nil {
		return domain.WrapError(err, errcodes.PersistenceIntegrity, "memory round-trip failed")
	}

	rereadRaw, err := json.Marshal(newMemorySchema(reread))
	if err != nil {
		return domain.WrapError(err, errcodes.PersistenceIntegrity, "memory round-trip encode failed")
	}

	if !bytes.Equal(raw, rereadRaw) {
		return domain.NewError(errcodes.PersistenceIntegrity, "memory round-trip mismatch")
	}

	if err := r.store.CompareAndSwap(ctx, memoryKey, memory.Revision, raw); err != nil {
		if errors.Is(err, kv.ErrConflict) {
			return domain.WrapError(err, errcodes.PersistenceConflict, "memory was updated concurrently")
		}

		return domain.WrapError(err, errcodes.PersistenceIntegrity, "memory write failed")
	}

	r.current = memory.Clone()
	r.current.Revision = raw
	r.loaded = true

	return nil
}

// Trim keeps only the newest keep opportunities (seen IDs are retained).
func (r *MemoryRepository) Trim(ctx context.Context, keep int) (entity.Memory, error) {
	memory, err := r.Load(ctx)
	if err != nil {
		return entity.Memory{}, fmt.Errorf("load: %w", err)
	}

	memory.Trim(keep)

	if err := r.Save(ctx, memory); err != nil {
		return entity.Memory{}, fmt.Errorf("save: %w", err)
	}

	return memory, nil
}

func decodeMemory(raw []byte) (entity.Memory, error) {
	var schema memorySchema

	if err := json.Unmarshal(raw, &schema); err != nil {
		return entity.Memory{}, fmt.Errorf("json.Unmarshal: %w", err)
	}

	memory, err := schema.toDomain()
	if err != nil {
		return entity.Memory{}, fmt.Errorf("schema.toDomain: %w", err)
	}

	return memory, nil
}
