package pool

import (
	"math"
	"testing"

	"github.com/reshop/reshop/internal/rherr"
)

func TestGetInterns(t *testing.T) {
	p := New(0)
	i1, err := p.Get(3.14)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if i1 == 0 {
		t.Fatalf("expected non-zero index")
	}
	i2, err := p.Get(3.14)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if i1 != i2 {
		t.Fatalf("expected equal values to intern to the same index, got %d and %d", i1, i2)
	}
	i3, _ := p.Get(2.71)
	if i3 == i1 {
		t.Fatalf("expected distinct values to get distinct indices")
	}
}

func TestGetRejectsNonFinite(t *testing.T) {
	p := New(0)
	if _, err := p.Get(math.NaN()); !rherr.Has(err, rherr.InvalidValue) {
		t.Fatalf("expected InvalidValue for NaN, got %v", err)
	}
	if _, err := p.Get(math.Inf(1)); !rherr.Has(err, rherr.InvalidValue) {
		t.Fatalf("expected InvalidValue for +Inf, got %v", err)
	}
}

func TestReadRoundTrip(t *testing.T) {
	p := New(0)
	idx, _ := p.Get(1.5)
	v, err := p.Read(idx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if v != 1.5 {
		t.Fatalf("expected 1.5, got %v", v)
	}
}

func TestReadOutOfRange(t *testing.T) {
	p := New(0)
	if _, err := p.Read(0); !rherr.Has(err, rherr.IndexOutOfRange) {
		t.Fatalf("expected IndexOutOfRange for idx 0, got %v", err)
	}
	if _, err := p.Read(1); !rherr.Has(err, rherr.IndexOutOfRange) {
		t.Fatalf("expected IndexOutOfRange for empty pool, got %v", err)
	}
}
