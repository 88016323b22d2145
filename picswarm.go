package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/phil-mansfield/picswarm/lib/checkpoint"
	"github.com/phil-mansfield/picswarm/lib/config"
	"github.com/phil-mansfield/picswarm/lib/error"
	"github.com/phil-mansfield/picswarm/lib/integration"
	"github.com/phil-mansfield/picswarm/lib/particles"
	"github.com/phil-mansfield/picswarm/lib/swarm"
)

const usage = `picswarm moves a swarm of tracer particles through a mesh and keeps
a set of integration points in step with it.

Usage:
    picswarm help             prints an example configuration file
    picswarm check <config>   checks a configuration file for errors
    picswarm run <config>     runs the swarm described by a configuration file
`

func main() {
	// Parse arguments.
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}
	mode := args[0]

	// Run the chosen mode.
	switch mode {
	case "help":
		fmt.Println(config.Example)
	case "check":
		Check(readConfig(args))
	case "run":
		cfg := readConfig(args)
		if err := cfg.CheckInit(); err != nil {
			error.External("%s", err.Error())
		}
		Run(cfg)
	default:
		error.External(
			"You attempted to run picswarm in the mode '%s', but the only "+
				"valid modes are 'help', 'check', and 'run'.", mode,
		)
	}
}

func readConfig(args []string) *config.Config {
	if len(args) != 2 {
		error.External("The '%s' mode takes exactly one configuration "+
			"file, but %d arguments were given.", args[0], len(args)-1)
	}
	cfg, err := config.ReadFile(args[1])
	if cfg == nil {
		error.External("Could not parse '%s': %s", args[1], err.Error())
	}
	return cfg
}

// Check runs picswarm's "check" mode which tests for errors in the
// configuration file. Depending on the file's Strictness, the first error
// either stops the program or every error is printed as a warning.
func Check(cfg *config.Config) {
	strictness, err := cfg.Run.ParsedStrictness()
	if err != nil {
		strictness = config.CrashOnError
	}

	problems := cfg.Problems()
	for _, p := range problems {
		if strictness == config.CrashOnError {
			error.External("%s", p.Error())
		}
		error.Warn("%s", p.Error())
	}

	if len(problems) == 0 {
		fmt.Println("No errors detected.")
	} else {
		fmt.Printf("%d errors detected.\n", len(problems))
	}
}

// Run runs picswarm's "run" mode: it sets up the tracer swarm and its
// integration points, then advects the tracers with a uniform velocity.
func Run(cfg *config.Config) {
	if cfg.Run.ValidLogFile() {
		f, err := os.Create(cfg.Run.LogFile)
		if err != nil {
			error.External("%s", err.Error())
		}
		defer f.Close()
		log.SetOutput(f)
	}

	m, err := cfg.Mesh.Build()
	if err != nil {
		error.External("%s", err.Error())
	}
	opt, err := cfg.Swarm.Options()
	if err != nil {
		error.External("%s", err.Error())
	}

	tracers, err := swarm.New(cfg.Swarm.Name, m, opt)
	if err != nil {
		error.External("%s", err.Error())
	}
	for _, name := range cfg.VariableNames() {
		v := cfg.Variable[name]
		if _, err := tracers.AddVariable(name, v.Kind, v.Count); err != nil {
			error.External("%s", err.Error())
		}
	}

	pop, err := cfg.Swarm.PopulationLayout()
	if err != nil {
		error.External("%s", err.Error())
	}
	if err := tracers.Populate(pop); err != nil {
		error.External("%s", err.Error())
	}
	log.Printf("Created %d tracers in %d cells.", tracers.Len(), m.Cells())

	ic, err := cfg.Integration.Config()
	if err != nil {
		error.External("%s", err.Error())
	}
	ic.Layout = opt.Layout
	gen, err := integration.New(ic, m, tracers)
	if err != nil {
		error.External("%s", err.Error())
	}
	repopulate(gen)
	logStep(0, tracers, gen)

	x := make([]float64, m.Dim())
	for step := 1; step <= cfg.Run.Steps; step++ {
		for i := 0; i < tracers.Len(); i++ {
			tracers.Position(i, x)
			for k := range x {
				x[k] += cfg.Run.Velocity[k] * cfg.Run.Dt
			}
			tracers.Move(i, x)
		}

		if err := tracers.UpdateOwners(); err != nil {
			error.External("Step %d: %s", step, err.Error())
		}
		repopulate(gen)
		logStep(step, tracers, gen)
	}

	if cfg.Run.ValidCheckpoint() {
		err := checkpoint.WriteFile(cfg.Run.Checkpoint, tracers.Store())
		if err != nil {
			error.External("%s", err.Error())
		}
		log.Printf("Wrote checkpoint to %s.", cfg.Run.Checkpoint)
	}
}

// repopulate stops the program if the integration points can't be
// recomputed. Broken invariants are reported as internal errors.
func repopulate(gen integration.Generator) {
	err := gen.Repopulate()
	if err == nil {
		return
	}

	var mismatch *integration.CountMismatchError
	var conflict *particles.LiveViewConflictError
	if errors.As(err, &mismatch) || errors.As(err, &conflict) {
		error.Internal("%s", err.Error())
	}
	error.External("%s", err.Error())
}

func logStep(step int, tracers *swarm.Swarm, gen integration.Generator) {
	pts := gen.Points()
	log.Printf("Step %d: %d tracers, %d escaped, %d %s points with total "+
		"weight %.6g.", step, tracers.Len(), tracers.Escaped(), pts.Len(),
		gen.Variant(), pts.TotalWeight())
}
