package bookmarklet

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeTags(t *testing.T) {
	tests := map[string]struct {
		in   []string
		want []string
	}{
		"dedupe and trim": {
			in:   []string{"a", "a", " b ", ""},
			want: []string{"a", "b"},
		},
		"first occurrence wins": {
			in:   []string{"z", "y", " z", "x", "y "},
			want: []string{"z", "y", "x"},
		},
		"all blank": {
			in:   []string{" ", "\t", ""},
			want: []string{},
		},
		"nil": {
			in:   nil,
			want: []string{},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, NormalizeTags(tc.in)); diff != "" {
				t.Fatalf("unexpected tags (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseTags(t *testing.T) {
	got := ParseTags(" dev, tools,,dev ,  ")
	if diff := cmp.Diff([]string{"dev", "tools"}, got); diff != "" {
		t.Fatalf("unexpected tags (-want +got):\n%s", diff)
	}
}

func TestSafeNameTruncates(t *testing.T) {
	long := strings.Repeat("n", 150)
	got := SafeName("   " + long + "  ")
	if got != long[:MaxNameLength] {
		t.Fatalf("expected first %d characters, got %d", MaxNameLength, len(got))
	}
}

func TestSafeNameCountsCharacters(t *testing.T) {
	long := strings.Repeat("ブ", 130)
	got := []rune(SafeName(long))
	if len(got) != MaxNameLength {
		t.Fatalf("expected %d runes, got %d", MaxNameLength, len(got))
	}
}

func TestNameDefaultsWhenBlank(t *testing.T) {
	if got := Name("   "); got != DefaultName {
		t.Fatalf("expected %q, got %q", DefaultName, got)
	}
	if got := Name(" Reader mode "); got != "Reader mode" {
		t.Fatalf("unexpected name %q", got)
	}
}

func TestNormalizeCode(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"prefixed":         {in: "javascript:alert(1)", want: "alert(1)"},
		"percent encoded":  {in: "javascript:alert(%22hi%20there%22)", want: `alert("hi there")`},
		"mixed case":       {in: "  JavaScript: void(0) ", want: "void(0)"},
		"plus is literal":  {in: "javascript:1+1", want: "1+1"},
		"bad escape":       {in: "javascript:alert('100%')", want: "alert('100%')"},
		"plain passes":     {in: "alert(%22x%22)", want: "alert(%22x%22)"},
		"plain is trimmed": {in: "\n  console.log(1)\n", want: "console.log(1)"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := NormalizeCode(tc.in); got != tc.want {
				t.Fatalf("NormalizeCode(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		id := NewID()
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = struct{}{}
	}
}
