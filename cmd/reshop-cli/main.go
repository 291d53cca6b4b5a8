// Command reshop-cli is a small diagnostics driver around pkg/reshop: it
// builds a model, runs its consistency checks, and reports results
// on stderr, colorized when stderr is a terminal. It is not a
// modeling language or a solver front end — spec.md explicitly keeps the
// CLI/driver layer out of the core's scope; this binary only exercises
// the public API for smoke-testing and demonstration.
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/reshop/reshop/internal/avar"
	"github.com/reshop/reshop/internal/equvar"
	"github.com/reshop/reshop/internal/rherr"
	"github.com/reshop/reshop/pkg/reshop"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "check":
		runCheck()
	case "version":
		fmt.Println("reshop-cli (development build)")
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: reshop-cli <check|version>")
}

// runCheck builds a tiny demonstration model (two bounded variables and
// one linear constraint) and runs its full consistency check, reporting
// success or the tagged error through the diagnostics sink.
func runCheck() {
	m := reshop.New(1, 2, nil)

	vis, err := m.AddVars(2, 0, 10)
	if err != nil {
		report(err)
		os.Exit(1)
	}

	ei, err := m.AddCon(equvar.ConeRPlus)
	if err != nil {
		report(err)
		os.Exit(1)
	}

	if err := m.AddLin(ei, avar.NewList(vis), []float64{1, -1}); err != nil {
		report(err)
		os.Exit(1)
	}

	if err := m.CheckExpensive(); err != nil {
		report(err)
		os.Exit(1)
	}

	fmt.Printf("model %s: ok (%d vars, 1 equ)\n", m.SessionID(), len(vis))
}

func report(err error) {
	sink := newDiagnosticsSink(os.Stderr)
	sink.report(err)
}

// diagnosticsSink prints an error's rherr.Kind tag, colorized when the
// output stream is a real terminal (grounded on the teacher's
// termIsTTY's isatty.IsTerminal/IsCygwinTerminal check).
type diagnosticsSink struct {
	out   *os.File
	color bool
}

func newDiagnosticsSink(out *os.File) *diagnosticsSink {
	color := isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())
	return &diagnosticsSink{out: out, color: color}
}

func (s *diagnosticsSink) report(err error) {
	kind, _ := rherr.KindOf(err)
	tag := kind.String()
	if s.color {
		tag = "\033[31m" + tag + "\033[0m"
	}
	fmt.Fprintf(s.out, "[%s] %s\n", tag, err)
}
