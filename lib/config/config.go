/*package config reads picswarm's gcfg configuration files and turns them
into the parameters used by the rest of the library.*/
package config

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/picswarm/lib/gauss"
	"github.com/phil-mansfield/picswarm/lib/integration"
	"github.com/phil-mansfield/picswarm/lib/mesh"
	"github.com/phil-mansfield/picswarm/lib/particles"
	"github.com/phil-mansfield/picswarm/lib/swarm"
)

const Example = `[Mesh]

#######################
# Required Parameters #
#######################

# One of [ DQ0 | Q1 | DQ1 | DPC1 | Q2 ]. This sets the shape function order
# used to pick default Gauss point counts.
ElementType = Q1

# The number of cells along each axis, followed by the lower and upper
# corners of the domain. One line per dimension; 1 to 3 dimensions are
# supported.
Resolution = 8
Resolution = 8
Min = 0
Min = 0
Max = 1
Max = 1

[Swarm]

#######################
# Optional Parameters #
#######################

# Name of the tracer swarm. Its coordinates are stored in <Name>_coords.
# Name = tracers

# Memory layout of the particle store: Interlaced or Block.
# Layout = Interlaced

# If true, tracers which leave the mesh are kept as "escaped" instead of
# stopping the run.
# EscapeAllowed = false

# How the initial tracers are placed: Gauss (at the Gauss points of every
# cell) or Random (uniformly random within each cell).
# Population = Gauss

# For Gauss, points per direction (0 = shape function default). For Random,
# particles per cell.
# ParticlesPerCell = 0
# Seed = 0

# User variables are added with one section each. Kind is one of
# [ char | short | int | long | float | double ].
# [Variable "density"]
# Kind = double
# Count = 1

[Integration]

# One of [ Gauss | GaussBorder | PIC ].
# Variant = PIC

# Gauss variants only. 0 = shape function default.
# ParticlesPerDirection = 0

# PIC only. Weights is Constant or Voronoi. VoronoiResolution is the number
# of samples per direction used by Voronoi.
# Weights = Constant
# VoronoiResolution = 10

# PIC only. Allow cells with no tracers. Always on when EscapeAllowed is set.
# ZeroWeightCells = false

# PIC only. Tracer variables copied onto the integration points. Defaults to
# the tracer coordinates.
# Shared = tracers_coords

[Run]

# Number of advection steps, the time step, and a uniform velocity with one
# line per dimension.
# Steps = 0
# Dt = 0.01
# Velocity = 1
# Velocity = 0

# Output files. Checkpoint is written after the last step.
# Checkpoint = tracers.chk
# LogFile = log.out

# What "check" does with configuration errors: Crash or Warn.
# Strictness = Crash`

type MeshConfig struct {
	// Required
	ElementType string
	Resolution  []int
	Min, Max    []float64
}

type SwarmConfig struct {
	Name, Layout     string
	EscapeAllowed    bool
	Population       string
	ParticlesPerCell int
	Seed             int64
}

type VariableConfig struct {
	Kind  string
	Count int
}

type IntegrationConfig struct {
	Variant               string
	ParticlesPerDirection int
	Weights               string
	VoronoiResolution     int
	ZeroWeightCells       bool
	Shared                []string
}

type RunConfig struct {
	Steps      int
	Dt         float64
	Velocity   []float64
	Checkpoint string
	LogFile    string
	Strictness string
}

// Config is the contents of a configuration file.
type Config struct {
	Mesh        MeshConfig
	Swarm       SwarmConfig
	Variable    map[string]*VariableConfig
	Integration IntegrationConfig
	Run         RunConfig
}

// Default returns a Config holding every default value.
func Default() *Config {
	return &Config{
		Mesh: MeshConfig{ElementType: "Q1"},
		Swarm: SwarmConfig{
			Name: "tracers", Layout: "Interlaced", Population: "Gauss",
		},
		Variable: map[string]*VariableConfig{},
		Integration: IntegrationConfig{
			Variant: "PIC", Weights: "Constant", VoronoiResolution: 10,
		},
		Run: RunConfig{Strictness: "Crash"},
	}
}

// ReadFile reads and checks a configuration file. If the file can be
// parsed, the Config is returned even if it fails CheckInit.
func ReadFile(fname string) (*Config, error) {
	cfg := Default()
	if err := gcfg.ReadFileInto(cfg, fname); err != nil {
		return nil, err
	}
	return cfg, cfg.CheckInit()
}

// ReadString reads and checks configuration text.
func ReadString(text string) (*Config, error) {
	cfg := Default()
	if err := gcfg.ReadStringInto(cfg, text); err != nil {
		return nil, err
	}
	return cfg, cfg.CheckInit()
}

// CheckInit returns the first problem with the configuration, if any.
func (cfg *Config) CheckInit() error {
	if errs := cfg.Problems(); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// Problems returns every problem with the configuration.
func (cfg *Config) Problems() []error {
	errs := []error{}
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	_, err := cfg.Mesh.Build()
	add(err)
	_, err = cfg.Swarm.Options()
	add(err)
	if !cfg.Swarm.ValidPopulation() {
		add(fmt.Errorf("[Swarm] Population is '%s', but must be one of "+
			"'Gauss' or 'Random'.", cfg.Swarm.Population))
	}
	if !cfg.Swarm.ValidParticlesPerCell() {
		add(fmt.Errorf("[Swarm] ParticlesPerCell is %d, which is not valid "+
			"for Population '%s'.", cfg.Swarm.ParticlesPerCell,
			cfg.Swarm.Population))
	}
	for _, name := range cfg.VariableNames() {
		add(cfg.Variable[name].CheckInit(name))
	}
	_, err = cfg.Integration.Config()
	add(err)
	_, err = cfg.Run.ParsedStrictness()
	add(err)
	if !cfg.Run.ValidSteps() {
		add(fmt.Errorf("[Run] Steps is %d, but must be non-negative.",
			cfg.Run.Steps))
	}
	if cfg.Run.Steps > 0 && len(cfg.Run.Velocity) != len(cfg.Mesh.Resolution) {
		add(fmt.Errorf("[Run] Velocity has %d components, but the mesh has "+
			"%d dimensions.", len(cfg.Run.Velocity), len(cfg.Mesh.Resolution)))
	}
	return errs
}

// Build creates the mesh described by the [Mesh] section.
func (con *MeshConfig) Build() (*mesh.Cartesian, error) {
	elem, err := mesh.ParseElementType(con.ElementType)
	if err != nil {
		return nil, err
	}
	return mesh.NewCartesian(elem, con.Resolution, con.Min, con.Max)
}

func (con *SwarmConfig) Options() (swarm.Options, error) {
	l, err := particles.ParseLayout(con.Layout)
	if err != nil {
		return swarm.Options{}, err
	}
	return swarm.Options{Layout: l, EscapeAllowed: con.EscapeAllowed}, nil
}

func (con *SwarmConfig) ValidPopulation() bool {
	p := strings.ToLower(con.Population)
	return p == "gauss" || p == "random"
}

func (con *SwarmConfig) ValidParticlesPerCell() bool {
	if strings.ToLower(con.Population) == "random" {
		return con.ParticlesPerCell > 0
	}
	return con.ParticlesPerCell >= 0 &&
		con.ParticlesPerCell <= gauss.MaxPointsPerDirection
}

// PopulationLayout returns the layout used to place the initial tracers.
func (con *SwarmConfig) PopulationLayout() (swarm.PopulationLayout, error) {
	switch strings.ToLower(con.Population) {
	case "gauss":
		return swarm.GaussLayout{PointsPerDirection: con.ParticlesPerCell}, nil
	case "random":
		r, err := swarm.NewRandomLayout(con.ParticlesPerCell, uint64(con.Seed))
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	return nil, fmt.Errorf("[Swarm] Population is '%s', but must be one of "+
		"'Gauss' or 'Random'.", con.Population)
}

// VariableNames returns the names of the [Variable] sections in sorted
// order.
func (cfg *Config) VariableNames() []string {
	names := make([]string, 0, len(cfg.Variable))
	for name := range cfg.Variable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (con *VariableConfig) CheckInit(name string) error {
	if _, err := particles.ParseKind(con.Kind); err != nil {
		return fmt.Errorf("[Variable \"%s\"]: %s", name, err.Error())
	} else if con.Count < 1 {
		return fmt.Errorf("[Variable \"%s\"] Count is %d, but must be at "+
			"least 1.", name, con.Count)
	}
	return nil
}

// Config returns the parameters of the integration point generator.
func (con *IntegrationConfig) Config() (integration.Config, error) {
	v, err := integration.ParseVariant(con.Variant)
	if err != nil {
		return integration.Config{}, err
	}
	w, err := integration.ParseWeightStrategy(con.Weights, con.VoronoiResolution)
	if err != nil {
		return integration.Config{}, err
	}
	if v == integration.PIC && !con.ValidVoronoiResolution() {
		return integration.Config{}, fmt.Errorf("[Integration] "+
			"VoronoiResolution is %d, but must be at least 1.",
			con.VoronoiResolution)
	}
	if !con.ValidParticlesPerDirection() {
		return integration.Config{}, fmt.Errorf("[Integration] "+
			"ParticlesPerDirection is %d, but must be 0 or in the range "+
			"[1, 5].", con.ParticlesPerDirection)
	}

	return integration.Config{
		Variant:            v,
		PointsPerDirection: con.ParticlesPerDirection,
		Weights:            w,
		ZeroWeightCells:    con.ZeroWeightCells,
		Shared:             con.Shared,
	}, nil
}

func (con *IntegrationConfig) ValidParticlesPerDirection() bool {
	return con.ParticlesPerDirection >= 0 &&
		con.ParticlesPerDirection <= gauss.MaxPointsPerDirection
}

func (con *IntegrationConfig) ValidVoronoiResolution() bool {
	return strings.ToLower(con.Weights) != "voronoi" || con.VoronoiResolution > 0
}

func (con *RunConfig) ValidSteps() bool {
	return con.Steps >= 0
}

func (con *RunConfig) ValidCheckpoint() bool {
	return con.Checkpoint != ""
}

func (con *RunConfig) ValidLogFile() bool {
	return con.LogFile != ""
}
