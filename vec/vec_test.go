package vec

import (
	"math"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestNormalized(t *testing.T) {
	tests := []struct {
		name string
		in   V3
		want float32 // expected length after normalize
	}{
		{"unit x", V3{1, 0, 0}, 1},
		{"diagonal", V3{3, 4, 0}, 1},
		{"small", V3{0.001, 0.002, -0.003}, 1},
		{"zero", V3{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalized().Length()
			if math.Abs(float64(got-tt.want)) > 1e-5 {
				t.Errorf("length after Normalized = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClampLength(t *testing.T) {
	v := V3{6, 8, 0} // length 10
	c := v.ClampLength(5)
	if math.Abs(float64(c.Length()-5)) > 1e-5 {
		t.Errorf("clamped length = %v, want 5", c.Length())
	}
	// Direction must be preserved, not truncated per component.
	if math.Abs(float64(c.X/c.Y-0.75)) > 1e-5 {
		t.Errorf("clamp changed direction: %+v", c)
	}

	// Under the cap: unchanged.
	u := V3{1, 1, 0}
	if u.ClampLength(5) != u {
		t.Errorf("ClampLength modified in-range vector")
	}
}

func TestLerp3(t *testing.T) {
	lo := V3{-5, 0, -5}
	hi := V3{5, 10, 5}

	if got := Lerp3(lo, hi, 0, 0, 0); got != lo {
		t.Errorf("t=0 should give lo, got %+v", got)
	}
	if got := Lerp3(lo, hi, 1, 1, 1); got != hi {
		t.Errorf("t=1 should give hi, got %+v", got)
	}
	mid := Lerp3(lo, hi, 0.5, 0.5, 0.5)
	if mid != (V3{0, 5, 0}) {
		t.Errorf("t=0.5 = %+v, want {0 5 0}", mid)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	in := V3{-1, 2.5, 3}
	data, err := yaml.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out V3
	if err := yaml.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestYAMLRejectsWrongArity(t *testing.T) {
	var v V3
	if err := yaml.Unmarshal([]byte("[1, 2]"), &v); err == nil {
		t.Error("expected error for 2-component sequence")
	}
}
