package strata

import "fmt"

// Priority defines the precedence of a configuration layer.
// Higher values win during merging.
type Priority int

// Source identifies the origin of a configuration layer. Each source has a
// fixed priority; a layer's priority is derived from its source and never
// set independently.
type Source int

// Sources in ascending priority order. Runtime overrides beat the control
// plane, which beats filesystem configuration, which beats defaults.
const (
	// SourceDefault holds values baked into the application.
	SourceDefault Source = iota + 1

	// SourceFilesystem holds values loaded from configuration files.
	SourceFilesystem

	// SourceControlPlane holds values pushed by a control-plane API.
	SourceControlPlane

	// SourceRuntime holds live runtime overrides, the highest priority.
	SourceRuntime
)

// Priority returns the merge priority for this source.
func (s Source) Priority() Priority {
	return Priority(s)
}

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	return s >= SourceDefault && s <= SourceRuntime
}

// String returns the canonical name of the source.
func (s Source) String() string {
	switch s {
	case SourceDefault:
		return "default"
	case SourceFilesystem:
		return "filesystem"
	case SourceControlPlane:
		return "control-plane"
	case SourceRuntime:
		return "runtime"
	}
	return fmt.Sprintf("source(%d)", int(s))
}

// ParseSource converts a canonical source name back to a Source.
func ParseSource(name string) (Source, error) {
	switch name {
	case "default":
		return SourceDefault, nil
	case "filesystem":
		return SourceFilesystem, nil
	case "control-plane":
		return SourceControlPlane, nil
	case "runtime":
		return SourceRuntime, nil
	}
	return 0, fmt.Errorf("unknown source %q", name)
}

// Key is the composite address under which an entity's layers are stored.
// Two entities with the same ID but different types are distinct.
type Key struct {
	ID   string
	Type string
}

// String renders the key in its canonical "type:id" form.
func (k Key) String() string {
	return k.Type + ":" + k.ID
}
