package builder

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrNoBuilder is returned by [New] when the requested record type has
	// no registered builder. Non-record types have no builder by design;
	// asking for a fresh builder instance of one is a caller bug.
	ErrNoBuilder = errors.New("no builder registered for type")

	// ErrInvalidRegistration is returned by [Register] when the
	// registration is missing its record type, builder type, or one of the
	// conversion functions.
	ErrInvalidRegistration = errors.New("invalid builder registration")
)

// Builder is implemented by every builder type. BuildObject freezes the
// builder into its immutable record; RecordType reports the record type the
// builder produces.
type Builder interface {
	BuildObject() any
	RecordType() reflect.Type
}

// Registration binds a record type to its builder type and conversions.
type Registration struct {
	Record     reflect.Type       // record type, e.g. *model.Compartment
	Builder    reflect.Type       // builder type, e.g. *model.CompartmentBuilder
	New        func() Builder     // fresh zero-value builder
	FromObject func(any) Builder  // wrap an immutable record in builder form
}

// The registry is populated from init functions in the record packages and
// never written to afterwards.
var (
	byRecord  = map[reflect.Type]Registration{}
	byBuilder = map[reflect.Type]Registration{}
)

// Register adds a record↔builder binding to the registry. Registering a
// record type that is already present is a no-op, so the first registration
// wins and re-registration is idempotent.
//
// Register must only be called from package init functions.
func Register(r Registration) error {
	if r.Record == nil || r.Builder == nil || r.New == nil || r.FromObject == nil {
		return ErrInvalidRegistration
	}
	if _, ok := byRecord[r.Record]; ok {
		return nil
	}
	byRecord[r.Record] = r
	byBuilder[r.Builder] = r
	return nil
}

// MustRegister is Register for init functions, panicking on a malformed
// registration. A panic here is a programming error caught at startup.
func MustRegister(r Registration) {
	if err := Register(r); err != nil {
		panic(fmt.Sprintf("builder: register %v: %v", r.Record, err))
	}
}

// HasBuilder reports whether a builder is registered for the record type.
func HasBuilder(t reflect.Type) bool {
	_, ok := byRecord[t]
	return ok
}

// For returns the registration for a record type.
func For(t reflect.Type) (Registration, bool) {
	r, ok := byRecord[t]
	return r, ok
}

// ForBuilder returns the registration for a builder type.
func ForBuilder(t reflect.Type) (Registration, bool) {
	r, ok := byBuilder[t]
	return r, ok
}

// GetOrMake returns the builder type for t, or t unchanged when no builder
// is registered. Non-record types are their own builder, which is what lets
// recursive field transformation terminate at scalars and foreign types.
func GetOrMake(t reflect.Type) reflect.Type {
	if r, ok := byRecord[t]; ok {
		return r.Builder
	}
	return t
}

// New returns a fresh builder instance for the record type t.
func New(t reflect.Type) (Builder, error) {
	r, ok := byRecord[t]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNoBuilder, t)
	}
	return r.New(), nil
}

// Build converts x from builder form to immutable form. Values that are not
// builders pass through unchanged. Build does not recurse into containers;
// per-type Build methods own the recursion.
func Build(x any) any {
	if b, ok := x.(Builder); ok {
		return b.BuildObject()
	}
	return x
}

// FromObject converts x from immutable form to builder form. Values whose
// type has no registered builder pass through unchanged.
func FromObject(x any) any {
	if x == nil {
		return nil
	}
	if r, ok := byRecord[reflect.TypeOf(x)]; ok {
		return r.FromObject(x)
	}
	return x
}

// RecordTypeOf returns the record type behind x: for a builder, the type it
// builds; for anything else, the value's own type.
func RecordTypeOf(x any) reflect.Type {
	if b, ok := x.(Builder); ok {
		return b.RecordType()
	}
	return reflect.TypeOf(x)
}

// IsInstanceOrBuilder reports whether x is an instance of the record type t
// or of t's builder type. Builders are not assignable to their record type,
// so type assertions against a record type miss builder values; this check
// covers both forms.
func IsInstanceOrBuilder(x any, t reflect.Type) bool {
	xt := reflect.TypeOf(x)
	if xt == t {
		return true
	}
	if r, ok := byRecord[t]; ok && xt == r.Builder {
		return true
	}
	return false
}

// IsTypeOrBuilder reports whether ct is the record type t or t's builder
// type. This is the type-level analogue of [IsInstanceOrBuilder].
func IsTypeOrBuilder(ct, t reflect.Type) bool {
	if ct == t {
		return true
	}
	if r, ok := byRecord[t]; ok && ct == r.Builder {
		return true
	}
	return false
}

// BuildSlice freezes a slice of builders into a slice of records.
// A nil input yields a nil output.
func BuildSlice[R any, B interface{ Build() R }](in []B) []R {
	if in == nil {
		return nil
	}
	out := make([]R, len(in))
	for i, b := range in {
		out[i] = b.Build()
	}
	return out
}

// FromSlice wraps a slice of records into a slice of builders using the
// per-type conversion from. A nil input yields a nil output.
func FromSlice[R, B any](in []R, from func(R) B) []B {
	if in == nil {
		return nil
	}
	out := make([]B, len(in))
	for i, r := range in {
		out[i] = from(r)
	}
	return out
}
