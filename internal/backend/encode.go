package backend

import (
	"github.com/jhump/protoreflect/dynamic"

	"github.com/reshop/reshop/internal/ctr"
	"github.com/reshop/reshop/internal/equvar"
	"github.com/reshop/reshop/internal/rherr"
)

// buildSolveRequest turns dst's live variables and equations into a
// SolveRequest dynamic message (spec §4.7 step c: "hand the destination
// to an external solver"). dst is expected to already be a compressed,
// densely-indexed container (ctr.Container.Compress's output), so
// position i in the request corresponds exactly to rid.Idx(i) in dst.
func buildSolveRequest(dst *ctr.Container, sessionID, encoding string) (*dynamic.Message, error) {
	req := dynamic.NewMessage(requestMsg)
	req.SetFieldByName("session_id", sessionID)
	req.SetFieldByName("encoding", encoding)

	for _, v := range dst.Vars {
		vm := dynamic.NewMessage(variableMsg)
		vm.SetFieldByName("lb", v.Lb)
		vm.SetFieldByName("ub", v.Ub)
		vm.SetFieldByName("level", v.Level)
		if err := req.TryAddRepeatedFieldByName("variables", vm); err != nil {
			return nil, rherr.E(rherr.RuntimeError, "backend.buildSolveRequest", "variable %d: %v", v.Idx, err)
		}
	}

	for _, e := range dst.Equs {
		em := dynamic.NewMessage(equationMsg)
		em.SetFieldByName("cone", int32(e.Cone))
		em.SetFieldByName("cst", e.Cst)

		linVars := make([]int32, e.Lequ.Len())
		linVals := make([]float64, e.Lequ.Len())
		for i := 0; i < e.Lequ.Len(); i++ {
			vi, val := e.Lequ.At(i)
			linVars[i] = int32(vi)
			linVals[i] = val
		}
		em.SetFieldByName("lin_vars", linVars)
		em.SetFieldByName("lin_vals", linVals)

		if e.HasTree() {
			if err := encodeTree(em, e, dst, encoding); err != nil {
				return nil, err
			}
		}

		if err := req.TryAddRepeatedFieldByName("equations", em); err != nil {
			return nil, rherr.E(rherr.RuntimeError, "backend.buildSolveRequest", "equation %d: %v", e.Idx, err)
		}
	}

	return req, nil
}

// encodeTree fills em's nonlinear fields from e.Tree, using the wire
// format "ampl" backends need (the line-oriented token stream) and the
// (opcode, arg) pair stream gams/direct backends share.
func encodeTree(em *dynamic.Message, e *equvar.Equ, dst *ctr.Container, encoding string) error {
	if encoding == "ampl" {
		tokens, err := e.Tree.ToAmpl(dst.Pool)
		if err != nil {
			return rherr.E(rherr.RuntimeError, "backend.encodeTree", "equation %d ToAmpl: %v", e.Idx, err)
		}
		kinds := make([]int32, len(tokens))
		ints := make([]int32, len(tokens))
		floats := make([]float64, len(tokens))
		for i, tok := range tokens {
			kinds[i] = int32(tok.Kind)
			ints[i] = int32(tok.Int)
			floats[i] = tok.Float
		}
		em.SetFieldByName("token_kinds", kinds)
		em.SetFieldByName("token_ints", ints)
		em.SetFieldByName("token_floats", floats)
		return nil
	}

	// "gams" and "direct" both ride the same (opcode, arg) wire; a
	// direct/Julia-style backend is expected to read GAMS-numbered
	// opcodes off the same stream rather than define a third encoding,
	// since no separate wire format for it is specified.
	instrs, err := e.Tree.ToGams(dst.Pool.Len())
	if err != nil {
		return rherr.E(rherr.RuntimeError, "backend.encodeTree", "equation %d ToGams: %v", e.Idx, err)
	}
	opcodes := make([]int32, len(instrs))
	args := make([]int32, len(instrs))
	for i, instr := range instrs {
		opcodes[i] = int32(instr.Op)
		args[i] = instr.Arg
	}
	em.SetFieldByName("opcodes", opcodes)
	em.SetFieldByName("args", args)
	return nil
}

// decodeSolveReport reads a SolveReport dynamic message into a Report,
// indexed the same way buildSolveRequest indexed its variables/equations.
func decodeSolveReport(msg *dynamic.Message) (*Report, error) {
	rep := &Report{
		VarLevels:      map[int]float64{},
		VarMultipliers: map[int]float64{},
		EquLevels:      map[int]float64{},
		EquMultipliers: map[int]float64{},
	}
	success, ok := msg.GetFieldByName("success").(bool)
	if !ok {
		return nil, rherr.E(rherr.Inconsistency, "backend.decodeSolveReport", "success field has unexpected type")
	}
	rep.Success = success
	if m, ok := msg.GetFieldByName("message").(string); ok {
		rep.Message = m
	}

	if err := fillFloatMap(msg, "var_levels", rep.VarLevels); err != nil {
		return nil, err
	}
	if err := fillFloatMap(msg, "var_multipliers", rep.VarMultipliers); err != nil {
		return nil, err
	}
	if err := fillFloatMap(msg, "equ_levels", rep.EquLevels); err != nil {
		return nil, err
	}
	if err := fillFloatMap(msg, "equ_multipliers", rep.EquMultipliers); err != nil {
		return nil, err
	}
	return rep, nil
}

func fillFloatMap(msg *dynamic.Message, field string, into map[int]float64) error {
	raw := msg.GetFieldByName(field)
	vals, ok := raw.([]float64)
	if !ok {
		return rherr.E(rherr.Inconsistency, "backend.fillFloatMap", "field %q has unexpected type %T", field, raw)
	}
	for i, v := range vals {
		into[i] = v
	}
	return nil
}
