package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/ChristopherRabotin/vlm"
	"github.com/ChristopherRabotin/vlm/tools"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/spatial/r3"
)

// This code reads the scenario file, builds a rectangular airplane and runs the requested solver.

const defaultScenario = "~~unset~~"

var (
	scenario    string
	confDir     string
	verbose     bool
	metricsAddr string
	tracing     bool
)

func init() {
	// Read flags
	flag.StringVar(&scenario, "scenario", defaultScenario, "scenario TOML file")
	flag.StringVar(&confDir, "conf", "", "directory of conf.toml (defaults to $VLM_CONFIG, then to the built-in configuration)")
	flag.BoolVar(&verbose, "verbose", false, "log every step")
	flag.StringVar(&metricsAddr, "metrics", "", "serve Prometheus metrics on this address (e.g. :9100)")
	flag.BoolVar(&tracing, "trace", false, "print the spans of every step to stderr")
}

func main() {
	flag.Parse()
	// Load scenario
	if scenario == defaultScenario {
		log.Fatal("no scenario provided")
	}
	scenario = strings.Replace(scenario, ".toml", "", 1)
	viper.AddConfigPath(".")
	viper.SetConfigName(scenario)
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("./%s.toml: Error %s", scenario, err)
	}

	conf := loadConfig()
	if verbose {
		conf.Verbose = true
		log.Printf("[conf] %+v", conf)
	}

	// Read operating point
	op := vlm.DefaultOperatingPoint()
	for key, ptr := range map[string]*float64{
		"operating.density":  &op.Density,
		"operating.velocity": &op.Velocity,
		"operating.alpha":    &op.Alpha,
		"operating.beta":     &op.Beta,
	} {
		if viper.IsSet(key) {
			*ptr = viper.GetFloat64(key)
		}
	}
	if verbose {
		log.Printf("[conf] operating point: %s", op)
	}

	var collector *vlm.SolverCollector
	if metricsAddr != "" {
		var err error
		if collector, err = vlm.NewSolverCollector(nil); err != nil {
			log.Fatalf("could not register metrics: %s", err)
		}
		http.Handle("/metrics", collector.Handler())
		go func() {
			if err := http.ListenAndServe(metricsAddr, nil); err != nil {
				log.Printf("[WARNING] metrics server stopped: %s", err)
			}
		}()
	}
	shutdown := func(context.Context) error { return nil }
	if tracing {
		var err error
		if shutdown, err = vlm.InitTracing(os.Stderr); err != nil {
			log.Fatalf("could not set up tracing: %s", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := solve(ctx, conf, op, collector)
	stop()
	// log.Fatal skips deferred calls, so the spans are flushed first.
	if serr := shutdown(context.Background()); serr != nil {
		log.Printf("[WARNING] flushing spans: %s", serr)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// solve meshes the scenario airplane and runs the requested solver. Solver errors are only reported, since the
// results computed up to the error are still logged.
func solve(ctx context.Context, conf vlm.Config, op vlm.OperatingPoint, collector *vlm.SolverCollector) error {
	// Read airplane
	name := viper.GetString("airplane.name")
	span := viper.GetFloat64("airplane.span")
	chord := viper.GetFloat64("airplane.chord")
	chordwise := viper.GetInt("airplane.chordwise")
	spanwise := viper.GetInt("airplane.spanwise")
	xyzRef := r3.Vec{X: viper.GetFloat64("airplane.xref"), Y: viper.GetFloat64("airplane.yref"), Z: viper.GetFloat64("airplane.zref")}

	solver := viper.GetString("solver.type")
	switch solver {
	case "horseshoe", "ring":
		a, err := tools.RectangularAirplane(name, span, chord, chordwise, spanwise, xyzRef)
		if err != nil {
			return fmt.Errorf("could not mesh airplane: %w", err)
		}
		var run func(context.Context) error
		if solver == "horseshoe" {
			s := vlm.NewSteadyHorseshoeSolver(a, op, conf)
			s.Metrics = collector
			run = s.Run
		} else {
			s := vlm.NewSteadyRingSolver(a, op, conf)
			s.Metrics = collector
			run = s.Run
		}
		if err := run(ctx); err != nil {
			log.Printf("[WARNING] %s", err)
		}
		report(a)
	case "unsteady":
		m, err := readMovement(name, span, chord, chordwise, spanwise, xyzRef, op)
		if err != nil {
			return fmt.Errorf("could not build movement: %w", err)
		}
		export := vlm.ExportConfig{
			Filename:  viper.GetString("export.filename"),
			AsCSV:     viper.GetBool("export.csv"),
			Plot:      viper.GetBool("export.plot"),
			Timestamp: viper.GetBool("export.timestamp"),
		}
		s := vlm.NewUnsteadySolver(m, conf, export)
		s.Metrics = collector
		if err := s.Run(ctx); err != nil {
			log.Printf("[WARNING] %s", err)
		}
		if hist := s.History(); len(hist) > 0 {
			last := hist[len(hist)-1]
			log.Printf("step %d of %d (t=%.3f s)", last.Step+1, m.NumSteps(), last.Time)
			report(m.Airplanes[last.Step])
		}
	default:
		return fmt.Errorf("unknown solver type `%s` (expected horseshoe, ring or unsteady)", solver)
	}
	return nil
}

// loadConfig reads the solver configuration from the -conf flag, the environment or the defaults.
func loadConfig() vlm.Config {
	var (
		conf vlm.Config
		err  error
	)
	switch {
	case confDir != "":
		conf, err = vlm.LoadConfig(confDir)
	case os.Getenv("VLM_CONFIG") != "":
		conf, err = vlm.ConfigFromEnv()
	default:
		return vlm.DefaultConfig()
	}
	if err != nil {
		log.Fatalf("configuration: %s", err)
	}
	return conf
}

func readMovement(name string, span, chord float64, chordwise, spanwise int, xyzRef r3.Vec, op vlm.OperatingPoint) (*vlm.Movement, error) {
	steps := viper.GetInt("movement.steps")
	dt := viper.GetFloat64("movement.dt")
	amplitude := viper.GetFloat64("movement.amplitude")
	frequency := viper.GetFloat64("movement.frequency")
	switch kind := viper.GetString("movement.kind"); kind {
	case "", "static":
		return tools.StaticMovement(name, span, chord, chordwise, spanwise, xyzRef, op, steps, dt)
	case "plunge":
		return tools.PlungingMovement(name, span, chord, chordwise, spanwise, xyzRef, op, steps, dt, amplitude, frequency)
	case "flap":
		return tools.FlappingMovement(name, span, chord, chordwise, spanwise, xyzRef, op, steps, dt, amplitude, frequency)
	default:
		return nil, fmt.Errorf("unknown movement kind `%s` (expected static, plunge or flap)", kind)
	}
}

func report(a *vlm.Airplane) {
	f, m := a.ForceWindAxes, a.MomentWindAxes
	log.Printf("%s: force (wind axes) [%.4f %.4f %.4f] N", a.Name, f.X, f.Y, f.Z)
	log.Printf("%s: moment (wind axes) [%.4f %.4f %.4f] N.m", a.Name, m.X, m.Y, m.Z)
	log.Printf("%s: %s", a.Name, a.Coefficients)
}
