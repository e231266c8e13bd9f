package normalize

import "testing"

func TestNormSpace(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  hello   world ", "hello world"},
		{"a\n\tb", "a b"},
		{"", ""},
		{"   ", ""},
	}
	for _, c := range cases {
		if got := NormSpace(c.in); got != c.want {
			t.Errorf("NormSpace(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCleanText_DecodesEntities(t *testing.T) {
	got := CleanText("Tom &amp; Jerry &ndash;  die&nbsp;Katze")
	want := "Tom & Jerry – die Katze"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestCleanTextPtr_EmptyMeansNil(t *testing.T) {
	if got := CleanTextPtr("   "); got != nil {
		t.Errorf("expected nil for blank input, got %q", *got)
	}
	if got := CleanTextPtr(" x "); got == nil || *got != "x" {
		t.Errorf("expected \"x\", got %v", got)
	}
}

func TestToNumber(t *testing.T) {
	if n, ok := ToNumber("0.85"); !ok || n != 0.85 {
		t.Errorf("expected 0.85 from string, got %v ok=%v", n, ok)
	}
	if n, ok := ToNumber(float64(3)); !ok || n != 3 {
		t.Errorf("expected 3, got %v ok=%v", n, ok)
	}
	if _, ok := ToNumber("abc"); ok {
		t.Error("expected non-numeric string to fail")
	}
	if _, ok := ToNumber(nil); ok {
		t.Error("expected nil to fail")
	}
}

func TestToInt(t *testing.T) {
	if n, ok := ToInt(float64(2)); !ok || n != 2 {
		t.Errorf("expected 2, got %v ok=%v", n, ok)
	}
	if _, ok := ToInt(float64(2.5)); ok {
		t.Error("expected non-integral number to fail")
	}
	if n, ok := ToInt("7"); !ok || n != 7 {
		t.Errorf("expected 7 from string, got %v ok=%v", n, ok)
	}
}

func TestValueText_NumberFormatting(t *testing.T) {
	if got := ValueText(float64(12)); got != "12" {
		t.Errorf("expected \"12\", got %q", got)
	}
	if got := ValueText("  p.  4 "); got != "p. 4" {
		t.Errorf("expected cleaned string, got %q", got)
	}
	if got := ValueText(nil); got != "" {
		t.Errorf("expected empty for nil, got %q", got)
	}
}
