package backend

import (
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
)

// contractSource is the minimal-contract service GAMS/AMPL/Julia-style
// external solver backends implement out-of-process (spec §1: "specific
// solver backends ... beyond the minimal contract the core needs from
// them"). It is parsed once at init with protoparse, the same way the
// teacher parses a user-supplied .proto file in grpcLoadProto, except
// the source is embedded rather than read from disk.
const contractSource = `
syntax = "proto3";
package reshop.backend;

message Variable {
  double lb = 1;
  double ub = 2;
  double level = 3;
}

message Equation {
  int32 cone = 1;
  double cst = 2;
  repeated int32 lin_vars = 3;
  repeated double lin_vals = 4;
  // gams/direct encoding: parallel (opcode, arg) pairs from nltree.ToGams.
  repeated int32 opcodes = 5;
  repeated int32 args = 6;
  // ampl encoding: the line-oriented token stream from nltree.ToAmpl.
  repeated int32 token_kinds = 7;
  repeated int32 token_ints = 8;
  repeated double token_floats = 9;
}

message SolveRequest {
  string session_id = 1;
  string encoding = 2; // "gams" | "ampl" | "direct"
  repeated Variable variables = 3;
  repeated Equation equations = 4;
}

message SolveReport {
  bool success = 1;
  string message = 2;
  repeated double var_levels = 3;
  repeated double var_multipliers = 4;
  repeated double equ_levels = 5;
  repeated double equ_multipliers = 6;
}

service SolveService {
  rpc Solve(SolveRequest) returns (SolveReport);
}
`

const contractFile = "reshop_backend.proto"
const solveMethodPath = "/reshop.backend.SolveService/Solve"

var (
	fileDesc    *desc.FileDescriptor
	variableMsg *desc.MessageDescriptor
	equationMsg *desc.MessageDescriptor
	requestMsg  *desc.MessageDescriptor
	reportMsg   *desc.MessageDescriptor
)

func init() {
	parser := protoparse.Parser{
		Accessor: protoparse.FileContentsFromMap(map[string]string{contractFile: contractSource}),
	}
	fds, err := parser.ParseFiles(contractFile)
	if err != nil {
		panic(fmt.Sprintf("backend: failed to parse embedded contract proto: %v", err))
	}
	fileDesc = fds[0]

	variableMsg = mustMessage(fileDesc, "Variable")
	equationMsg = mustMessage(fileDesc, "Equation")
	requestMsg = mustMessage(fileDesc, "SolveRequest")
	reportMsg = mustMessage(fileDesc, "SolveReport")
}

func mustMessage(fd *desc.FileDescriptor, name string) *desc.MessageDescriptor {
	md := fd.FindMessage("reshop.backend." + name)
	if md == nil {
		panic(fmt.Sprintf("backend: embedded contract proto has no message %q", name))
	}
	return md
}
