package strata

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/strataconf/strata/merge"
)

// Fragment is an alias for merge.Fragment.
type Fragment = merge.Fragment

// layerEntry holds one source's contribution to an entity's configuration.
// At most one entry per (entity, source) pair exists at any time; setting
// again for the same source replaces the fragment in place.
type layerEntry struct {
	source    Source
	fragment  Fragment
	updatedAt time.Time
}

// Metadata describes an entity's layer stack without exposing the layers
// themselves.
type Metadata struct {
	// Sources lists the contributing sources in descending priority order.
	Sources []Source

	// UpdatedAt is the most recent layer update across all sources.
	UpdatedAt time.Time
}

// Manager owns per-entity configuration layer stacks and a cache of merged
// results. Entities are addressed by (ID, Type) pairs; each source
// contributes at most one layer per entity, and reads fold the layers
// lowest-priority-first through the merge engine.
//
// All methods are safe for concurrent use.
type Manager struct {
	// entities maps each entity key to its layers, kept sorted by
	// priority descending (stable order for hypothetical ties)
	entities map[Key][]*layerEntry

	// cache holds merged results, evicted by any write to the entity
	cache map[Key]Fragment

	opts managerOptions
	log  zerolog.Logger

	// now is swappable for tests
	now func() time.Time

	// mu protects entities and cache
	mu sync.RWMutex
}

// New creates a Manager. Invalid options make construction fail with a
// descriptive error; no partial manager is returned.
//
// Options:
//   - WithValidation(enabled): toggle fragment validation on Set (default: true)
//   - WithCaching(enabled): toggle the merged-result cache (default: true)
//   - WithDefaultStrategy(s): strategy for Get/Merge (default: merge.StrategyMerge)
//   - WithLogger(log): debug logging (default: no-op)
func New(opts ...Option) (*Manager, error) {
	options := defaultManagerOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if err := options.validate(); err != nil {
		return nil, err
	}

	return &Manager{
		entities: make(map[Key][]*layerEntry),
		cache:    make(map[Key]Fragment),
		opts:     options,
		log:      options.Logger,
		now:      time.Now,
	}, nil
}

// Set inserts or replaces the layer contributed by src for the given
// entity. When validation is enabled, an invalid fragment leaves the
// manager untouched and the returned error is a *ValidationError listing
// every violation. The stored fragment is a deep copy; later mutation of
// the caller's map has no effect.
func (m *Manager) Set(entityID, entityType string, frag Fragment, src Source) error {
	if !src.Valid() {
		return fmt.Errorf("invalid source %d", int(src))
	}

	if m.opts.EnableValidation {
		if res := validateFragment(frag); !res.Valid {
			return &ValidationError{Result: res}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := Key{ID: entityID, Type: entityType}
	stored := merge.Clone(frag)
	now := m.now()

	layers := m.entities[key]
	replaced := false
	for _, entry := range layers {
		if entry.source == src {
			entry.fragment = stored
			entry.updatedAt = now
			replaced = true
			break
		}
	}
	if !replaced {
		layers = append(layers, &layerEntry{
			source:    src,
			fragment:  stored,
			updatedAt: now,
		})
		sort.SliceStable(layers, func(i, j int) bool {
			return layers[i].source.Priority() > layers[j].source.Priority()
		})
		m.entities[key] = layers
	}

	delete(m.cache, key)

	m.log.Debug().
		Stringer("entity", key).
		Stringer("source", src).
		Bool("replaced", replaced).
		Msg("configuration layer set")
	return nil
}

// Get returns the merged configuration for an entity: all layers folded
// lowest-priority-first through the manager's default strategy. The result
// is cached until the next write to the entity. Returns a *NotFoundError
// if the entity has no layers.
//
// Callers must not mutate the returned fragment; use merge.Clone first if a
// private copy is needed.
func (m *Manager) Get(entityID, entityType string) (Fragment, error) {
	key := Key{ID: entityID, Type: entityType}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.opts.EnableCaching {
		if cached, ok := m.cache[key]; ok {
			return cached, nil
		}
	}

	layers := m.entities[key]
	if len(layers) == 0 {
		return nil, &NotFoundError{ID: entityID, Type: entityType}
	}

	// Layers are stored highest-priority-first; the fold wants the
	// opposite order so that later (higher-priority) fragments win.
	ordered := make([]Fragment, len(layers))
	for i, entry := range layers {
		ordered[len(layers)-1-i] = entry.fragment
	}

	result := merge.Layers(ordered, merge.DefaultOptions(m.opts.DefaultStrategy))
	if m.opts.EnableCaching {
		m.cache[key] = result
	}
	return result, nil
}

// GetBySource returns a copy of the single layer contributed by src,
// bypassing merging. It fails with a *NotFoundError if the entity has no
// layers at all, or no layer from that source.
func (m *Manager) GetBySource(entityID, entityType string, src Source) (Fragment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	layers := m.entities[Key{ID: entityID, Type: entityType}]
	if len(layers) == 0 {
		return nil, &NotFoundError{ID: entityID, Type: entityType}
	}
	for _, entry := range layers {
		if entry.source == src {
			return merge.Clone(entry.fragment), nil
		}
	}
	return nil, &NotFoundError{ID: entityID, Type: entityType, Source: src}
}

// Merge returns the entity's current merged configuration with extra merged
// on top, using the supplied options or the manager default. The result is
// a preview only; it is not persisted as a layer. A missing entity
// propagates Get's *NotFoundError.
func (m *Manager) Merge(entityID, entityType string, extra Fragment, opts ...merge.Options) (Fragment, error) {
	base, err := m.Get(entityID, entityType)
	if err != nil {
		return nil, err
	}

	options := merge.DefaultOptions(m.opts.DefaultStrategy)
	if len(opts) > 0 {
		options = opts[0]
	}
	return merge.Fragments(base, extra, options), nil
}

// Remove deletes all layers for an entity and evicts its cache entry.
// Returns a *NotFoundError if the entity has no layers.
func (m *Manager) Remove(entityID, entityType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := Key{ID: entityID, Type: entityType}
	if _, ok := m.entities[key]; !ok {
		return &NotFoundError{ID: entityID, Type: entityType}
	}
	delete(m.entities, key)
	delete(m.cache, key)

	m.log.Debug().Stringer("entity", key).Msg("configuration removed")
	return nil
}

// RemoveSource deletes only the layer contributed by src. Removing the last
// remaining layer deletes the entity's stack entirely. Returns a
// *NotFoundError if the entity is unknown or has no layer from src.
func (m *Manager) RemoveSource(entityID, entityType string, src Source) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := Key{ID: entityID, Type: entityType}
	layers, ok := m.entities[key]
	if !ok {
		return &NotFoundError{ID: entityID, Type: entityType}
	}

	idx := -1
	for i, entry := range layers {
		if entry.source == src {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &NotFoundError{ID: entityID, Type: entityType, Source: src}
	}

	layers = append(layers[:idx], layers[idx+1:]...)
	if len(layers) == 0 {
		delete(m.entities, key)
	} else {
		m.entities[key] = layers
	}
	delete(m.cache, key)

	m.log.Debug().
		Stringer("entity", key).
		Stringer("source", src).
		Msg("configuration layer removed")
	return nil
}

// Has reports whether the entity has at least one layer, regardless of
// cache state.
func (m *Manager) Has(entityID, entityType string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entities[Key{ID: entityID, Type: entityType}]) > 0
}

// Metadata returns the set of contributing sources and the most recent
// layer timestamp for an entity. Returns a *NotFoundError if the entity has
// no layers.
func (m *Manager) Metadata(entityID, entityType string) (*Metadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	layers := m.entities[Key{ID: entityID, Type: entityType}]
	if len(layers) == 0 {
		return nil, &NotFoundError{ID: entityID, Type: entityType}
	}

	meta := &Metadata{Sources: make([]Source, 0, len(layers))}
	for _, entry := range layers {
		meta.Sources = append(meta.Sources, entry.source)
		if entry.updatedAt.After(meta.UpdatedAt) {
			meta.UpdatedAt = entry.updatedAt
		}
	}
	return meta, nil
}

// Validate schema-checks a fragment in isolation, without storing anything.
// The result enumerates every violation found, not just the first.
func (m *Manager) Validate(frag Fragment) ValidationResult {
	return validateFragment(frag)
}

// ClearCache evicts all cached merged results without touching layers.
func (m *Manager) ClearCache() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cache = make(map[Key]Fragment)
}

// Clear removes all layers and all cache entries, returning the manager to
// its initial state.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entities = make(map[Key][]*layerEntry)
	m.cache = make(map[Key]Fragment)
	m.log.Debug().Msg("configuration manager cleared")
}

// Keys returns the composite keys of all entities currently holding layers,
// sorted by their canonical string form.
func (m *Manager) Keys() []Key {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]Key, 0, len(m.entities))
	for key := range m.entities {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}

// Count returns the number of entities with at least one layer.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entities)
}
