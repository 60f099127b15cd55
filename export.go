package vlm

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// ExportConfig configures the exporting of the results.
type ExportConfig struct {
	Filename  string
	AsCSV     bool // one row per time step
	Plot      bool // coefficient history as PNG, written once the channel is closed
	Timestamp bool
}

// IsUseless returns whether this config doesn't actually do anything.
func (c ExportConfig) IsUseless() bool {
	return !c.AsCSV && !c.Plot
}

// path returns the output file name with the provided prefix and extension.
func (c ExportConfig) path(outputDir, prefix, ext string) string {
	if c.Timestamp {
		t := time.Now()
		return filepath.Join(outputDir, fmt.Sprintf("%s-%s-%d-%02d-%02dT%02d.%02d.%02d.%s", prefix, c.Filename, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), ext))
	}
	return filepath.Join(outputDir, fmt.Sprintf("%s-%s.%s", prefix, c.Filename, ext))
}

var csvHeader = []string{"step", "time", "CDi", "CY", "CL", "Cl", "Cm", "Cn", "Fx", "Fy", "Fz", "Mx", "My", "Mz"}

// createCSVFile returns a file which requires a defer close statement!
func createCSVFile(conf ExportConfig, outputDir string) (*os.File, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(conf.path(outputDir, "coefficients", "csv"))
	if err != nil {
		return nil, err
	}
	// Header
	if _, err = fmt.Fprintf(f, `# Creation date (UTC): %s
# Coefficients, forces (N) and moments (N.m) are in wind axes.
#   Time is in seconds since the first step.
`, time.Now().UTC()); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}

func csvRecord(r StepResult) []string {
	c := r.Coefficients
	rec := []string{strconv.Itoa(r.Step), formatFloat(r.Time)}
	for _, v := range []float64{c.CDi, c.CY, c.CL, c.Cl, c.Cm, c.Cn, r.Force.X, r.Force.Y, r.Force.Z, r.Moment.X, r.Moment.Y, r.Moment.Z} {
		rec = append(rec, formatFloat(v))
	}
	return rec
}

// StreamResults streams the output of the channel to the output directory until the channel is closed. The channel
// is always drained, even after a write error, so that the producer never blocks.
func StreamResults(conf ExportConfig, outputDir string, results <-chan StepResult) error {
	var (
		f       *os.File
		w       *csv.Writer
		history []StepResult
		errs    []error
	)
	if conf.AsCSV {
		var err error
		if f, err = createCSVFile(conf, outputDir); err != nil {
			errs = append(errs, err)
		} else {
			w = csv.NewWriter(f)
			errs = append(errs, w.Write(csvHeader))
		}
	}
	for r := range results {
		history = append(history, r)
		if w != nil {
			errs = append(errs, w.Write(csvRecord(r)))
			w.Flush()
		}
	}
	// The channel is closed, hence the simulation is over.
	if w != nil {
		w.Flush()
		errs = append(errs, w.Error(), f.Close())
	}
	if conf.Plot && len(history) > 0 {
		errs = append(errs, PlotCoefficients(history, conf.path(outputDir, "coefficients", "png")))
	}
	return errors.Join(errs...)
}

// PlotCoefficients saves the lift, induced drag and pitching moment coefficient histories to a PNG file.
func PlotCoefficients(results []StepResult, filename string) error {
	cl := make(plotter.XYs, len(results))
	cdi := make(plotter.XYs, len(results))
	cm := make(plotter.XYs, len(results))
	for i, r := range results {
		cl[i].X, cl[i].Y = r.Time, r.Coefficients.CL
		cdi[i].X, cdi[i].Y = r.Time, r.Coefficients.CDi
		cm[i].X, cm[i].Y = r.Time, r.Coefficients.Cm
	}
	p := plot.New()
	p.Title.Text = "Aerodynamic coefficients"
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "coefficient"
	if err := plotutil.AddLinePoints(p, "CL", cl, "CDi", cdi, "Cm", cm); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 5*vg.Inch, filename)
}
