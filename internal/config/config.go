package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt        = 1.0
	DefaultRefine    = 4
	DefaultTolerance = 1e-12
	DefaultMaxIter   = 1000
)

// Coupling identifies this participant to the coordination service. The
// adapter interprets no dynamic flags; everything here is static for the
// run.
type Coupling struct {
	Participant  string `yaml:"participant"`
	ConfigFile   string `yaml:"config_file"`
	MeshName     string `yaml:"mesh_name"`
	WriteDataset string `yaml:"write_dataset"`
	ReadDataset  string `yaml:"read_dataset"`
}

// Solver holds the PDE solver parameters.
type Solver struct {
	Refine    int     `yaml:"refine"`
	Dt        float64 `yaml:"dt"`
	Tolerance float64 `yaml:"tolerance"`
	MaxIter   int     `yaml:"max_iter"`
}

type Config struct {
	Coupling Coupling `yaml:"coupling"`
	Solver   Solver   `yaml:"solver"`
	DataDir  string   `yaml:"data_dir"`
}

func DefaultConfig() *Config {
	return &Config{
		Coupling: Coupling{
			Participant:  "laplace-solver",
			ConfigFile:   "precice-config.xml",
			MeshName:     "original-mesh",
			WriteDataset: "dummy",
			ReadDataset:  "boundary-data",
		},
		Solver: Solver{
			Refine:    DefaultRefine,
			Dt:        DefaultDt,
			Tolerance: DefaultTolerance,
			MaxIter:   DefaultMaxIter,
		},
		DataDir: ".cosolve",
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Coupling.Participant == "" {
		return fmt.Errorf("config: participant name must not be empty")
	}
	if c.Coupling.MeshName == "" {
		return fmt.Errorf("config: mesh name must not be empty")
	}
	if c.Solver.Dt <= 0 {
		return fmt.Errorf("config: dt must be positive, got %f", c.Solver.Dt)
	}
	if c.Solver.Refine < 1 {
		return fmt.Errorf("config: refine must be at least 1, got %d", c.Solver.Refine)
	}
	if c.Solver.Tolerance <= 0 {
		return fmt.Errorf("config: tolerance must be positive, got %g", c.Solver.Tolerance)
	}
	return nil
}
