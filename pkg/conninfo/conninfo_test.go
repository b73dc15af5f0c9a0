package conninfo

import (
	"testing"
)

// TestSetOverwrites tests that setting an existing keyword replaces its
// value without adding a duplicate entry
func TestSetOverwrites(t *testing.T) {
	l := New()

	l.Set("host", "node1")
	l.Set("host", "node2")

	if got, ok := l.Get("host"); !ok || got != "node2" {
		t.Errorf("Get(host) = (%q, %v), want (\"node2\", true)", got, ok)
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d after overwriting, want 1", l.Len())
	}
}

// TestSetPreservesInsertionOrder tests that new keywords append in order
func TestSetPreservesInsertionOrder(t *testing.T) {
	l := New()
	l.Set("host", "node1")
	l.Set("port", "5432")
	l.Set("user", "app")
	l.Set("host", "node2") // overwrite must not reorder

	want := []Param{
		{Keyword: "host", Value: "node2"},
		{Keyword: "port", Value: "5432"},
		{Keyword: "user", Value: "app"},
	}
	got := l.Pairs()
	if len(got) != len(want) {
		t.Fatalf("Pairs() returned %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Pairs()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

// TestGetAbsentKeyword tests that an unset keyword reads as absent
func TestGetAbsentKeyword(t *testing.T) {
	l := New()

	if got, ok := l.Get("host"); ok {
		t.Errorf("Get(host) on empty list = (%q, true), want absent", got)
	}
}

// TestGetEmptyValueReadsAsAbsent tests that a keyword explicitly set to the
// empty string is stored but indistinguishable from absent on read
func TestGetEmptyValueReadsAsAbsent(t *testing.T) {
	l := New()
	l.Set("dbname", "")

	if got, ok := l.Get("dbname"); ok {
		t.Errorf("Get(dbname) = (%q, true), want absent for empty value", got)
	}
	// distinct in storage: the entry still occupies a slot
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (empty value is stored)", l.Len())
	}
}

// TestMerge tests that merge copies non-empty source entries and preserves
// unmatched destination entries
func TestMerge(t *testing.T) {
	dest := New()
	dest.Set("host", "node1")
	dest.Set("port", "5432")

	src := New()
	src.Set("port", "6432")
	src.Set("user", "app")
	src.Set("dbname", "") // empty entries are not merged

	dest.Merge(src)

	checks := []struct {
		keyword string
		value   string
		present bool
	}{
		{"host", "node1", true},
		{"port", "6432", true},
		{"user", "app", true},
		{"dbname", "", false},
	}
	for _, c := range checks {
		got, ok := dest.Get(c.keyword)
		if ok != c.present || got != c.value {
			t.Errorf("Get(%s) = (%q, %v), want (%q, %v)", c.keyword, got, ok, c.value, c.present)
		}
	}
}

// TestMergeNil tests that merging a nil source is a no-op
func TestMergeNil(t *testing.T) {
	l := New()
	l.Set("host", "node1")

	l.Merge(nil)

	if l.Len() != 1 {
		t.Errorf("Len() = %d after merging nil, want 1", l.Len())
	}
}

// TestNewWithDefaults tests that the driver's own defaults are reflected
// into the list, skipping empty ones
func TestNewWithDefaults(t *testing.T) {
	l, err := NewWithDefaults()
	if err != nil {
		t.Fatalf("NewWithDefaults() failed: %v", err)
	}
	if l.Len() == 0 {
		t.Fatal("NewWithDefaults() returned an empty list, expected driver defaults")
	}
	for _, p := range l.Pairs() {
		if p.Value == "" {
			t.Errorf("default %q has empty value, empty defaults must be skipped", p.Keyword)
		}
	}
	// port always has a built-in default
	if _, ok := l.Get("port"); !ok {
		t.Error("expected a default for port")
	}
}

// TestString tests serialization with libpq quoting rules
func TestString(t *testing.T) {
	tests := []struct {
		name  string
		build func() *ParamList
		want  string
	}{
		{
			name: "plain values",
			build: func() *ParamList {
				l := New()
				l.Set("host", "node1")
				l.Set("port", "5432")
				return l
			},
			want: "host=node1 port=5432",
		},
		{
			name: "value with spaces",
			build: func() *ParamList {
				l := New()
				l.Set("application_name", "pgherd cluster show")
				return l
			},
			want: "application_name='pgherd cluster show'",
		},
		{
			name: "value with quote and backslash",
			build: func() *ParamList {
				l := New()
				l.Set("password", `it's\here`)
				return l
			},
			want: `password='it\'s\\here'`,
		},
		{
			name: "empty values omitted",
			build: func() *ParamList {
				l := New()
				l.Set("host", "node1")
				l.Set("dbname", "")
				return l
			},
			want: "host=node1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.build().String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestFromConnConfigRoundTrip tests that reflecting a parsed configuration
// yields the parameters the driver negotiated
func TestFromConnConfigRoundTrip(t *testing.T) {
	l, err := Parse("host=node1 port=6432 user=app dbname=cluster application_name=pgherd", false)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	serialized := l.String()
	reparsed, err := Parse(serialized, false)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", serialized, err)
	}

	for _, p := range l.Pairs() {
		got, ok := reparsed.Get(p.Keyword)
		if !ok || got != p.Value {
			t.Errorf("round trip lost %s: got (%q, %v), want %q", p.Keyword, got, ok, p.Value)
		}
	}
	if reparsed.Len() != l.Len() {
		t.Errorf("round trip changed entry count: %d != %d", reparsed.Len(), l.Len())
	}
}
