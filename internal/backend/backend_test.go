package backend

import (
	"testing"

	"github.com/jhump/protoreflect/dynamic"

	"github.com/reshop/reshop/internal/avar"
	"github.com/reshop/reshop/internal/ctr"
	"github.com/reshop/reshop/internal/equvar"
)

func newTestContainer(t *testing.T) *ctr.Container {
	t.Helper()
	c := ctr.New(1, 2)
	vis, err := c.AddVars(2, 0, 10)
	if err != nil {
		t.Fatalf("AddVars: %v", err)
	}
	ei, err := c.AddEquation(equvar.Unset, equvar.ConeRPlus)
	if err != nil {
		t.Fatalf("AddEquation: %v", err)
	}
	if err := c.AddLin(ei, avar.NewList(vis), []float64{1.5, -2}); err != nil {
		t.Fatalf("AddLin: %v", err)
	}
	return c
}

func TestBuildSolveRequestEncodesLinearEquation(t *testing.T) {
	c := newTestContainer(t)
	req, err := buildSolveRequest(c, "sess-1", "gams")
	if err != nil {
		t.Fatalf("buildSolveRequest: %v", err)
	}

	if got := req.GetFieldByName("session_id"); got != "sess-1" {
		t.Fatalf("session_id = %v, want sess-1", got)
	}
	vars, ok := req.GetFieldByName("variables").([]interface{})
	if !ok || len(vars) != 2 {
		t.Fatalf("variables = %v, want 2 entries", req.GetFieldByName("variables"))
	}
	equs, ok := req.GetFieldByName("equations").([]interface{})
	if !ok || len(equs) != 1 {
		t.Fatalf("equations = %v, want 1 entry", req.GetFieldByName("equations"))
	}
	eq := equs[0].(*dynamic.Message)
	linVars, ok := eq.GetFieldByName("lin_vars").([]int32)
	if !ok || len(linVars) != 2 {
		t.Fatalf("lin_vars = %v, want 2 entries", eq.GetFieldByName("lin_vars"))
	}
	linVals, ok := eq.GetFieldByName("lin_vals").([]float64)
	if !ok || len(linVals) != 2 || linVals[0] != 1.5 || linVals[1] != -2 {
		t.Fatalf("lin_vals = %v, want [1.5 -2]", eq.GetFieldByName("lin_vals"))
	}
}

func TestDecodeSolveReportReadsPositionalMaps(t *testing.T) {
	msg := dynamic.NewMessage(reportMsg)
	msg.SetFieldByName("success", true)
	msg.SetFieldByName("message", "ok")
	msg.SetFieldByName("var_levels", []float64{3.5, 4.5})
	msg.SetFieldByName("equ_multipliers", []float64{0.25})

	rep, err := decodeSolveReport(msg)
	if err != nil {
		t.Fatalf("decodeSolveReport: %v", err)
	}
	if !rep.Success || rep.Message != "ok" {
		t.Fatalf("rep = %+v, want Success=true Message=ok", rep)
	}
	if rep.VarLevels[0] != 3.5 || rep.VarLevels[1] != 4.5 {
		t.Fatalf("VarLevels = %v, want {0:3.5 1:4.5}", rep.VarLevels)
	}
	if rep.EquMultipliers[0] != 0.25 {
		t.Fatalf("EquMultipliers = %v, want {0:0.25}", rep.EquMultipliers)
	}
}
