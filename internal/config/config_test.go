package config

import (
	"testing"

	"github.com/reshop/reshop/internal/rherr"
)

func TestSetOptionRoundTripsPerKind(t *testing.T) {
	b := New()
	b.SetOptionB("debug", true)
	b.SetOptionD("tol", 1e-6)
	b.SetOptionI("maxiter", 500)
	b.SetOptionS("solver", "gams")

	if v, err := b.GetOptionB("debug"); err != nil || v != true {
		t.Fatalf("GetOptionB = %v, %v", v, err)
	}
	if v, err := b.GetOptionD("tol"); err != nil || v != 1e-6 {
		t.Fatalf("GetOptionD = %v, %v", v, err)
	}
	if v, err := b.GetOptionI("maxiter"); err != nil || v != 500 {
		t.Fatalf("GetOptionI = %v, %v", v, err)
	}
	if v, err := b.GetOptionS("solver"); err != nil || v != "gams" {
		t.Fatalf("GetOptionS = %v, %v", v, err)
	}
}

func TestGetOptionWrongKindIsInvalidValue(t *testing.T) {
	b := New()
	b.SetOptionI("maxiter", 10)
	_, err := b.GetOptionB("maxiter")
	if !rherr.Has(err, rherr.InvalidValue) {
		t.Fatalf("err = %v, want InvalidValue", err)
	}
}

func TestGetOptionMissingIsNotFound(t *testing.T) {
	b := New()
	_, err := b.GetOptionS("nope")
	if !rherr.Has(err, rherr.NotFound) {
		t.Fatalf("err = %v, want NotFound", err)
	}
}

func TestParseDefaultsBuildsBag(t *testing.T) {
	doc := []byte(`
bool:
  debug: true
float:
  tol: 0.0001
int:
  maxiter: 200
string:
  solver: ampl
`)
	d, err := ParseDefaults(doc, "test.yaml")
	if err != nil {
		t.Fatalf("ParseDefaults: %v", err)
	}
	b := d.Bag()
	if v, err := b.GetOptionI("maxiter"); err != nil || v != 200 {
		t.Fatalf("GetOptionI = %v, %v", v, err)
	}
	if v, err := b.GetOptionS("solver"); err != nil || v != "ampl" {
		t.Fatalf("GetOptionS = %v, %v", v, err)
	}
}
