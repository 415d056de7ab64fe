// Package builder provides the mutable-counterpart machinery for the
// immutable model and layout records.
//
// Every record type in pkg/core/model and pkg/core/layout has a parallel
// builder type: a mutable struct whose fields mirror the record's fields,
// with nested record types replaced by their builder types (recursively,
// including through slices). Records are frozen value types; builders are
// what readers mutate while a map is under construction.
//
// # Registry
//
// The process-wide registry maps each record type to its builder type and
// conversion functions. Record packages populate it from their init
// functions, so by the time main runs the table is complete and read-only.
// Registration is idempotent: registering a type twice keeps the first
// entry.
//
//	reg, ok := builder.For(reflect.TypeOf((*model.Compartment)(nil)))
//	b, err := builder.New(reflect.TypeOf((*model.Compartment)(nil)))
//
// # Conversion
//
// [Build] and [FromObject] convert single values between the two forms and
// pass through anything that has no builder (plain scalars, already-frozen
// values). They do not recurse into containers - the per-type Build and
// AsBuilder methods handle nesting, helped by [BuildSlice] and [FromSlice].
//
// # Concurrency
//
// Registration happens during package init only. After init the registry
// is read-only and safe for concurrent readers without locking.
package builder
