package vlm

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	kitlog "github.com/go-kit/kit/log"
	"github.com/spf13/viper"
)

// WakeModel selects how the wake vertices are convected.
type WakeModel uint8

const (
	// PrescribedWake convects the wake with the freestream only.
	PrescribedWake WakeModel = iota
	// FreeWake convects the wake with the full solution velocity (freestream and every vortex).
	FreeWake
)

func (m WakeModel) String() string {
	switch m {
	case PrescribedWake:
		return "prescribed"
	case FreeWake:
		return "free"
	default:
		return fmt.Sprintf("WakeModel(%d)", uint8(m))
	}
}

// ParseWakeModel returns the wake model from its name.
func ParseWakeModel(s string) (WakeModel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "prescribed":
		return PrescribedWake, nil
	case "free":
		return FreeWake, nil
	default:
		return PrescribedWake, fmt.Errorf("unknown wake model `%s` (expected prescribed or free)", s)
	}
}

// Config holds the solver knobs.
type Config struct {
	WakeModel           WakeModel
	StreamlineSteps     int
	StreamlineDeltaTime float64 // seconds
	Verbose             bool
	OutputDir           string
	Workers             int
	// FiniteLegFactor replaces the semi-infinite horseshoe legs by finite legs of this many wing spans when
	// positive. 20 reproduces the legacy solvers.
	FiniteLegFactor float64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		WakeModel:           PrescribedWake,
		StreamlineSteps:     10,
		StreamlineDeltaTime: 0.1,
		OutputDir:           "./output",
		Workers:             runtime.NumCPU(),
	}
}

// Validate returns an error if a knob is out of range.
func (c Config) Validate() error {
	if c.WakeModel != PrescribedWake && c.WakeModel != FreeWake {
		return fmt.Errorf("unknown wake model %s", c.WakeModel)
	}
	if c.StreamlineSteps < 0 {
		return fmt.Errorf("streamlines.steps must not be negative (got %d)", c.StreamlineSteps)
	}
	if c.StreamlineSteps > 0 && !(c.StreamlineDeltaTime > 0) {
		return fmt.Errorf("streamlines.delta_time must be positive (got %f)", c.StreamlineDeltaTime)
	}
	if c.Workers < 1 {
		return fmt.Errorf("solver.workers must be positive (got %d)", c.Workers)
	}
	if c.FiniteLegFactor < 0 {
		return fmt.Errorf("solver.finite_leg_factor must not be negative (got %f)", c.FiniteLegFactor)
	}
	return nil
}

// Logger returns a logfmt logger for the given solver, or a no-op logger when not verbose.
func (c Config) Logger(solver string) kitlog.Logger {
	if !c.Verbose {
		return kitlog.NewNopLogger()
	}
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	return kitlog.With(klog, "solver", solver)
}

// ConfigFromEnv loads the configuration from the directory in the `VLM_CONFIG` environment variable.
func ConfigFromEnv() (Config, error) {
	confPath := os.Getenv("VLM_CONFIG")
	if confPath == "" {
		return Config{}, fmt.Errorf("environment variable `VLM_CONFIG` is missing or empty")
	}
	return LoadConfig(confPath)
}

// LoadConfig reads conf.toml in the provided directory. Missing keys keep their default value.
func LoadConfig(dir string) (Config, error) {
	v := viper.New()
	v.SetConfigName("conf")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("%s/conf.toml not found: %s", dir, err)
	}
	conf := DefaultConfig()
	v.SetDefault("solver.wake", conf.WakeModel.String())
	v.SetDefault("solver.workers", conf.Workers)
	v.SetDefault("solver.finite_leg_factor", conf.FiniteLegFactor)
	v.SetDefault("streamlines.steps", conf.StreamlineSteps)
	v.SetDefault("streamlines.delta_time", conf.StreamlineDeltaTime)
	v.SetDefault("general.verbose", conf.Verbose)
	v.SetDefault("general.output_path", conf.OutputDir)

	wake, err := ParseWakeModel(v.GetString("solver.wake"))
	if err != nil {
		return Config{}, err
	}
	conf.WakeModel = wake
	conf.Workers = v.GetInt("solver.workers")
	conf.FiniteLegFactor = v.GetFloat64("solver.finite_leg_factor")
	conf.StreamlineSteps = v.GetInt("streamlines.steps")
	conf.StreamlineDeltaTime = v.GetFloat64("streamlines.delta_time")
	conf.Verbose = v.GetBool("general.verbose")
	conf.OutputDir = v.GetString("general.output_path")
	return conf, conf.Validate()
}
