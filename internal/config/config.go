package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gyeh/claimgen/internal/catalog"
	"github.com/gyeh/claimgen/internal/output"
	"github.com/gyeh/claimgen/internal/synth"
)

// Defaults for paths that have no synth equivalent.
const (
	DefaultScenarios = "scripts/scenarios.json"
	DefaultOutDir    = "transform/seeds"
	DefaultFormat    = "csv"
)

// Config holds all runtime configuration for a claimgen run.
type Config struct {
	// Generation
	Members       int
	Years         []int
	Probability   float64
	Seed          int64
	MinAge        int
	MaxAge        int
	MaxScenarios  int
	RxCostMin     float64
	RxCostMax     float64
	ScenariosPath string
	CodeMapPath   string
	OutDir        string
	Format        string

	// Shared
	ConfigPath string
	LogFormat  string // "text" or "json"
	Progress   bool

	// Load
	DSN   string
	Force bool

	// Publish
	S3Bucket string
	S3Prefix string
	S3Region string

	// Risk model rendering
	SQLPath string
	SQLOut  string
}

// Default returns a Config populated with the generation defaults.
func Default() Config {
	o := synth.DefaultOptions()
	return Config{
		Members:       o.Members,
		Years:         o.Years,
		Probability:   o.Probability,
		Seed:          o.Seed,
		MinAge:        o.MinAge,
		MaxAge:        o.MaxAge,
		MaxScenarios:  o.MaxScenarios,
		RxCostMin:     o.RxCost.Low,
		RxCostMax:     o.RxCost.High,
		ScenariosPath: DefaultScenarios,
		OutDir:        DefaultOutDir,
		Format:        DefaultFormat,
		LogFormat:     "text",
	}
}

// yamlConfig is the on-disk YAML structure. Pointer fields distinguish an
// absent key from a zero value. Other top-level sections (run_settings,
// database) belong to other readers and are ignored here.
type yamlConfig struct {
	Generation struct {
		Members      *int      `yaml:"members"`
		Years        []int     `yaml:"years"`
		Probability  *float64  `yaml:"probability"`
		Seed         *int64    `yaml:"seed"`
		MinAge       *int      `yaml:"min_age"`
		MaxAge       *int      `yaml:"max_age"`
		MaxScenarios *int      `yaml:"max_scenarios"`
		RxCostRange  []float64 `yaml:"rx_cost_range"`
		Scenarios    *string   `yaml:"scenarios"`
		CodeMap      *string   `yaml:"code_map"`
		Out          *string   `yaml:"out"`
		Format       *string   `yaml:"format"`
	} `yaml:"generation"`
	Publish struct {
		Bucket *string `yaml:"s3_bucket"`
		Prefix *string `yaml:"s3_prefix"`
		Region *string `yaml:"s3_region"`
	} `yaml:"publish"`
}

// LoadFromFile reads a YAML config file and merges its values into Config.
// Keys whose flag name appears in explicit keep the value already set, so
// command-line flags win over the file.
func (c *Config) LoadFromFile(path string, explicit func(flag string) bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if explicit == nil {
		explicit = func(string) bool { return false }
	}

	g := yc.Generation
	setInt(&c.Members, g.Members, explicit("members"))
	setInt(&c.MinAge, g.MinAge, explicit("min-age"))
	setInt(&c.MaxAge, g.MaxAge, explicit("max-age"))
	setInt(&c.MaxScenarios, g.MaxScenarios, explicit("max-scenarios"))
	if g.Probability != nil && !explicit("probability") {
		c.Probability = *g.Probability
	}
	if g.Seed != nil && !explicit("seed") {
		c.Seed = *g.Seed
	}
	if len(g.Years) > 0 && !explicit("years") {
		c.Years = g.Years
	}
	if len(g.RxCostRange) > 0 {
		if len(g.RxCostRange) != 2 {
			return fmt.Errorf("generation.rx_cost_range must have two numbers, got %d", len(g.RxCostRange))
		}
		if !explicit("rx-cost-min") {
			c.RxCostMin = g.RxCostRange[0]
		}
		if !explicit("rx-cost-max") {
			c.RxCostMax = g.RxCostRange[1]
		}
	}
	setString(&c.ScenariosPath, g.Scenarios, explicit("scenarios"))
	setString(&c.CodeMapPath, g.CodeMap, explicit("code-map"))
	setString(&c.OutDir, g.Out, explicit("out"))
	setString(&c.Format, g.Format, explicit("format"))

	setString(&c.S3Bucket, yc.Publish.Bucket, explicit("s3-bucket"))
	setString(&c.S3Prefix, yc.Publish.Prefix, explicit("s3-prefix"))
	setString(&c.S3Region, yc.Publish.Region, explicit("s3-region"))
	return nil
}

func setInt(dst *int, v *int, keep bool) {
	if v != nil && !keep {
		*dst = *v
	}
}

func setString(dst *string, v *string, keep bool) {
	if v != nil && !keep {
		*dst = *v
	}
}

// SynthOptions converts the generation fields into generator options.
func (c *Config) SynthOptions() synth.Options {
	return synth.Options{
		Seed:         c.Seed,
		Members:      c.Members,
		Years:        c.Years,
		Probability:  c.Probability,
		MinAge:       c.MinAge,
		MaxAge:       c.MaxAge,
		MaxScenarios: c.MaxScenarios,
		RxCost:       catalog.CostRange{Low: c.RxCostMin, High: c.RxCostMax},
	}
}

// Validate checks the generation settings and returns an error if the
// config is invalid.
func (c *Config) Validate() error {
	if err := c.SynthOptions().Validate(); err != nil {
		return err
	}
	if _, err := output.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.OutDir == "" {
		return fmt.Errorf("--out is required")
	}
	if c.ScenariosPath == "" {
		return fmt.Errorf("--scenarios is required")
	}
	return nil
}

// ValidateWithDSN checks the directory and DSN fields used by load.
func (c *Config) ValidateWithDSN() error {
	if c.DSN == "" {
		return fmt.Errorf("--dsn or DATABASE_URL is required")
	}
	if c.OutDir == "" {
		return fmt.Errorf("--out is required")
	}
	if _, err := os.Stat(c.OutDir); err != nil {
		return fmt.Errorf("output dir not accessible: %w", err)
	}
	return nil
}

// ValidatePublish checks the S3 settings and the format of the tables to
// upload.
func (c *Config) ValidatePublish() error {
	if c.S3Bucket == "" {
		return fmt.Errorf("--s3-bucket is required")
	}
	if _, err := output.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.OutDir == "" {
		return fmt.Errorf("--out is required")
	}
	return nil
}
