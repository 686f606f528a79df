package buffer

import (
	"errors"
	"testing"
)

func TestNewRejectsInvalidCapacity(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
	}{
		{"zero", 0},
		{"negative", -4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New[float32](tt.capacity)
			if !errors.Is(err, ErrInvalidCapacity) {
				t.Errorf("New(%d) error = %v, want ErrInvalidCapacity", tt.capacity, err)
			}
		})
	}
}

func TestGetSetBounds(t *testing.T) {
	b, err := New[float32](4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := b.Set(2, 7.5); err != nil {
		t.Fatalf("Set(2): %v", err)
	}
	v, err := b.Get(2)
	if err != nil || v != 7.5 {
		t.Errorf("Get(2) = %v, %v, want 7.5, nil", v, err)
	}

	for _, i := range []int{-1, 4, 100} {
		if _, err := b.Get(i); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Get(%d) error = %v, want ErrIndexOutOfRange", i, err)
		}
		if err := b.Set(i, 1); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Set(%d) error = %v, want ErrIndexOutOfRange", i, err)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	a, _ := New[float32](3)
	a.Set(0, 1)
	a.Set(1, 2)

	b := a.Clone()
	b.Set(0, 99)

	got, _ := a.Get(0)
	if got != 1 {
		t.Errorf("write to clone leaked into original: a[0] = %v, want 1", got)
	}
}

func TestCopyFrom(t *testing.T) {
	src, _ := New[float32](3)
	src.Set(1, 5)

	dst, _ := New[float32](3)
	if err := dst.CopyFrom(src); err != nil {
		t.Fatalf("CopyFrom: %v", err)
	}
	if v, _ := dst.Get(1); v != 5 {
		t.Errorf("dst[1] = %v, want 5", v)
	}

	// Snapshot stays fixed when the source mutates afterward.
	src.Set(1, 9)
	if v, _ := dst.Get(1); v != 5 {
		t.Errorf("snapshot changed with source: dst[1] = %v, want 5", v)
	}

	small, _ := New[float32](2)
	if err := small.CopyFrom(src); err == nil {
		t.Error("CopyFrom with mismatched capacity should fail")
	}
}
