package builder

import (
	"errors"
	"reflect"
	"testing"
)

type record struct{ V int }

type recordBuilder struct{ V int }

func (b *recordBuilder) Build() *record           { return &record{V: b.V} }
func (b *recordBuilder) BuildObject() any         { return b.Build() }
func (b *recordBuilder) RecordType() reflect.Type { return reflect.TypeOf((*record)(nil)) }

var (
	recordType  = reflect.TypeOf((*record)(nil))
	builderType = reflect.TypeOf((*recordBuilder)(nil))
)

func init() {
	MustRegister(Registration{
		Record:     recordType,
		Builder:    builderType,
		New:        func() Builder { return &recordBuilder{} },
		FromObject: func(x any) Builder { return &recordBuilder{V: x.(*record).V} },
	})
}

func TestRegisterInvalid(t *testing.T) {
	tests := []struct {
		name string
		reg  Registration
	}{
		{"missing record", Registration{Builder: builderType, New: func() Builder { return nil }, FromObject: func(any) Builder { return nil }}},
		{"missing builder", Registration{Record: recordType, New: func() Builder { return nil }, FromObject: func(any) Builder { return nil }}},
		{"missing new", Registration{Record: recordType, Builder: builderType, FromObject: func(any) Builder { return nil }}},
		{"missing from", Registration{Record: recordType, Builder: builderType, New: func() Builder { return nil }}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Register(tt.reg); !errors.Is(err, ErrInvalidRegistration) {
				t.Errorf("err = %v, want ErrInvalidRegistration", err)
			}
		})
	}
}

func TestRegisterIdempotent(t *testing.T) {
	// Re-registering the same record type must not clobber the first
	// registration.
	err := Register(Registration{
		Record:     recordType,
		Builder:    builderType,
		New:        func() Builder { return nil },
		FromObject: func(any) Builder { return nil },
	})
	if err != nil {
		t.Fatalf("re-register: %v", err)
	}

	b, err := New(recordType)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if b == nil {
		t.Fatal("first registration should have been kept")
	}
}

func TestNewUnregistered(t *testing.T) {
	type orphan struct{}
	if _, err := New(reflect.TypeOf((*orphan)(nil))); !errors.Is(err, ErrNoBuilder) {
		t.Errorf("err = %v, want ErrNoBuilder", err)
	}
}

func TestGetOrMake(t *testing.T) {
	if got := GetOrMake(recordType); got != builderType {
		t.Errorf("GetOrMake(record) = %v, want %v", got, builderType)
	}
	strType := reflect.TypeOf("")
	if got := GetOrMake(strType); got != strType {
		t.Errorf("GetOrMake(string) = %v, want identity", got)
	}
}

func TestBuildAndFromObject(t *testing.T) {
	frozen := Build(&recordBuilder{V: 7})
	r, ok := frozen.(*record)
	if !ok || r.V != 7 {
		t.Fatalf("Build = %#v, want record with V=7", frozen)
	}

	thawed := FromObject(r)
	b, ok := thawed.(*recordBuilder)
	if !ok || b.V != 7 {
		t.Fatalf("FromObject = %#v, want builder with V=7", thawed)
	}

	// Values without a registration pass through both directions.
	if got := Build(42); got != 42 {
		t.Errorf("Build(42) = %v, want passthrough", got)
	}
	if got := FromObject(42); got != 42 {
		t.Errorf("FromObject(42) = %v, want passthrough", got)
	}
	if FromObject(nil) != nil {
		t.Error("FromObject(nil) should be nil")
	}
}

func TestRecordTypeOf(t *testing.T) {
	if got := RecordTypeOf(&recordBuilder{}); got != recordType {
		t.Errorf("RecordTypeOf(builder) = %v, want %v", got, recordType)
	}
	if got := RecordTypeOf(&record{}); got != recordType {
		t.Errorf("RecordTypeOf(record) = %v, want %v", got, recordType)
	}
}

func TestIsInstanceOrBuilder(t *testing.T) {
	tests := []struct {
		name string
		x    any
		want bool
	}{
		{"record instance", &record{}, true},
		{"builder instance", &recordBuilder{}, true},
		{"unrelated value", "nope", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsInstanceOrBuilder(tt.x, recordType); got != tt.want {
				t.Errorf("IsInstanceOrBuilder = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsTypeOrBuilder(t *testing.T) {
	if !IsTypeOrBuilder(recordType, recordType) {
		t.Error("record type should match itself")
	}
	if !IsTypeOrBuilder(builderType, recordType) {
		t.Error("builder type should match its record type")
	}
	if IsTypeOrBuilder(reflect.TypeOf(""), recordType) {
		t.Error("unrelated type should not match")
	}
}

func TestBuildSlice(t *testing.T) {
	in := []*recordBuilder{{V: 1}, {V: 2}}
	out := BuildSlice[*record](in)
	if len(out) != 2 || out[0].V != 1 || out[1].V != 2 {
		t.Errorf("BuildSlice = %#v", out)
	}
	if BuildSlice[*record]([]*recordBuilder(nil)) != nil {
		t.Error("nil in should yield nil out")
	}
}

func TestFromSlice(t *testing.T) {
	in := []*record{{V: 1}, {V: 2}}
	out := FromSlice(in, func(r *record) *recordBuilder { return &recordBuilder{V: r.V} })
	if len(out) != 2 || out[1].V != 2 {
		t.Errorf("FromSlice = %#v", out)
	}
	if FromSlice(nil, func(r *record) *recordBuilder { return nil }) != nil {
		t.Error("nil in should yield nil out")
	}
}
