package backend

import (
	"context"

	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"

	"github.com/reshop/reshop/internal/ctr"
	"github.com/reshop/reshop/internal/rherr"
)

// RPCBackend talks the embedded minimal-contract service (proto.go) over
// an already-dialed gRPC connection. gams/ampl/direct only differ in the
// Encoding tag they set on the request and, through encodeTree, the wire
// format used for an equation's nonlinear part.
type RPCBackend struct {
	Conn     *grpc.ClientConn
	Encoding string
}

// NewGams builds the GAMS GMO minimal-contract backend: equations'
// nonlinear parts ride the GAMS (opcode, arg) stream from nltree.ToGams.
func NewGams(conn *grpc.ClientConn) *RPCBackend {
	return &RPCBackend{Conn: conn, Encoding: "gams"}
}

// NewAmpl builds the AMPL NL minimal-contract backend: equations'
// nonlinear parts ride the line-oriented token stream from nltree.ToAmpl.
func NewAmpl(conn *grpc.ClientConn) *RPCBackend {
	return &RPCBackend{Conn: conn, Encoding: "ampl"}
}

// NewDirect builds the Julia-bridge minimal-contract backend. It reuses
// the GAMS opcode numbering for the nonlinear wire (spec names no
// separate wire format for a "direct" bridge), distinguished from gams
// only by the encoding tag a solver-side implementation dispatches on.
func NewDirect(conn *grpc.ClientConn) *RPCBackend {
	return &RPCBackend{Conn: conn, Encoding: "direct"}
}

func (b *RPCBackend) Name() string { return b.Encoding }

// Run exports dst into a SolveRequest, invokes the solve method, and
// decodes the SolveReport (spec §4.7 step c/d). The call blocks: per
// spec §5 "solver invocation is a synchronous call."
func (b *RPCBackend) Run(ctx context.Context, dst *ctr.Container) (*Report, error) {
	req, err := buildSolveRequest(dst, dst.SessionID.String(), b.Encoding)
	if err != nil {
		return nil, err
	}

	resp := dynamic.NewMessage(reportMsg)
	if err := b.Conn.Invoke(ctx, solveMethodPath, req, resp); err != nil {
		return nil, rherr.E(rherr.RuntimeError, "backend.RPCBackend.Run", "%s backend RPC failed: %v", b.Encoding, err)
	}

	return decodeSolveReport(resp)
}
