// Package strata provides a layered entity configuration manager.
//
// Configuration for an entity arrives from multiple sources (baked-in
// defaults, the filesystem, a control plane, runtime overrides). Each
// contribution is stored as a layer with a fixed source-derived priority,
// and reads fold the layers through a merge strategy to produce a single
// effective fragment, cached until the next write.
//
// Key features:
//   - Per-entity layer stacks with deterministic priority ordering
//   - Pluggable merge strategies (override, merge, extend) via the merge package
//   - Lazily computed, write-invalidated merged-result cache
//   - Optional shape validation of fragments on write
package strata
