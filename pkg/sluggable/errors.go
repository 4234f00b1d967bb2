package sluggable

import "errors"

// Configuration errors are returned at registration time.
var (
	// ErrInvalidSpec is returned when a Spec misses required settings.
	ErrInvalidSpec = errors.New("invalid slug spec")

	// ErrUnknownAssociation is returned when Spec.Scope names an association
	// the type does not declare.
	ErrUnknownAssociation = errors.New("slug scope names an unknown association")

	// ErrUnknownType is returned when Spec.Inherits names a type that has not
	// been registered yet.
	ErrUnknownType = errors.New("slug spec inherits from an unknown type")

	// ErrDuplicateType is returned when a type is registered twice.
	ErrDuplicateType = errors.New("slug spec already registered for type")
)

var (
	// ErrTypeNotRegistered is returned by Registry.Lookup for unknown types.
	ErrTypeNotRegistered = errors.New("no slug spec registered for type")

	// ErrSpecNotCompiled is returned when a Spec that did not go through
	// Compile or Registry.Register is passed to a Generator.
	ErrSpecNotCompiled = errors.New("slug spec is not compiled")

	// ErrNotFound is returned when a lookup by slug finds no record.
	ErrNotFound = errors.New("record not found by slug")

	// ErrNoParent is returned when an embedded record has no parent to take
	// its siblings from.
	ErrNoParent = errors.New("embedded record has no parent")

	// ErrUnsupportedScope is returned by stores that cannot query a scope
	// strategy, e.g. embedded arrays in a relational table.
	ErrUnsupportedScope = errors.New("scope strategy not supported by store")

	// ErrUnsupportedRecord is returned by stores that cannot persist the
	// given record implementation.
	ErrUnsupportedRecord = errors.New("record type not supported by store")

	// ErrDuplicateSlug is returned by MemoryStore and reservation-based
	// savers when a unique slug constraint is violated on save.
	ErrDuplicateSlug = errors.New("slug already taken in scope")

	// ErrRetriesExhausted is returned by SaveWithRetry when every attempt
	// hit a write conflict.
	ErrRetriesExhausted = errors.New("slug conflict retries exhausted")
)

// IsConfigurationError reports whether err was caused by an invalid
// declaration rather than by a store or a record.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidSpec) ||
		errors.Is(err, ErrUnknownAssociation) ||
		errors.Is(err, ErrUnknownType) ||
		errors.Is(err, ErrDuplicateType)
}

// IsDuplicateSlug reports whether err is ErrDuplicateSlug. It can be passed
// to WithConflictRetry.
func IsDuplicateSlug(err error) bool {
	return errors.Is(err, ErrDuplicateSlug)
}
