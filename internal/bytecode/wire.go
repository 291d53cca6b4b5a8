// Wire decoding for GAMS bytecode that arrives packed as raw bytes
// rather than already-split (opcode, arg) pairs, e.g. over the solver
// bridge of internal/backend. Each record is a fixed 5-byte frame: one
// byte opcode tag, one big-endian int32 argument. This is exactly the
// shape Erlang-style bit-syntax matching was built for, so we use
// funbit instead of hand-rolled byte slicing (see SPEC_FULL.md's domain
// stack section).
package bytecode

import (
	"github.com/funvibe/funbit/pkg/funbit"

	"github.com/reshop/reshop/internal/rherr"
)

// DecodeWire splits a packed GAMS instruction frame into Instr records.
// It is the inverse of EncodeWire and is used when the bytecode source
// is a byte-oriented transport (e.g. a Julia or out-of-process GAMS
// bridge) rather than an in-process (opcode, arg) slice.
func DecodeWire(raw []byte) (Stream, error) {
	const frame = 5
	if len(raw)%frame != 0 {
		return nil, rherr.E(rherr.InvalidValue, "bytecode.DecodeWire", "stream length %d is not a multiple of the %d-byte record frame", len(raw), frame)
	}
	out := make(Stream, 0, len(raw)/frame)
	for off := 0; off < len(raw); off += frame {
		var opByte uint
		var argU uint
		matcher := funbit.NewMatcher().
			Integer(&opByte, funbit.WithSize(8), funbit.WithUnsigned()).
			Integer(&argU, funbit.WithSize(32), funbit.WithUnsigned(), funbit.WithBigEndian())

		if _, err := funbit.Match(matcher, raw[off:off+frame]); err != nil {
			return nil, rherr.Wrap(rherr.InvalidOpCode, "bytecode.DecodeWire", err, "malformed record at byte offset %d", off)
		}
		out = append(out, Instr{Op: GamsOp(opByte), Arg: int32(argU)})
	}
	return out, nil
}

// EncodeWire packs a Stream back into the 5-byte-per-record wire frame.
func EncodeWire(s Stream) ([]byte, error) {
	out := make([]byte, 0, len(s)*5)
	for _, instr := range s {
		builder := funbit.NewBuilder().
			AddInteger(uint(instr.Op), funbit.WithSize(8), funbit.WithUnsigned()).
			AddInteger(uint(uint32(instr.Arg)), funbit.WithSize(32), funbit.WithUnsigned(), funbit.WithBigEndian())

		bits, err := funbit.Build(builder)
		if err != nil {
			return nil, rherr.Wrap(rherr.InvalidOpCode, "bytecode.EncodeWire", err, "failed to encode %s", instr.Op)
		}
		out = append(out, bits.Bytes()...)
	}
	return out, nil
}
