// Command selfcheck exercises the growth engine end to end and reports
// pass/fail per phase: the built-in nesting check, a constant-wind run, an
// accumulated run, and optionally a live run against the terrain and weather
// providers.
//
// Usage:
//
//	go run ./cmd/selfcheck [-live] [-hours 6]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/firefront/internal/adapter/openmeteo"
	"github.com/couchcryptid/firefront/internal/adapter/opentopo"
	"github.com/couchcryptid/firefront/internal/domain"
	"github.com/couchcryptid/firefront/internal/geometry"
	"github.com/couchcryptid/firefront/internal/observability"
	"github.com/couchcryptid/firefront/internal/projection"
	"github.com/couchcryptid/firefront/internal/simulation"
	"github.com/couchcryptid/firefront/internal/slope"
)

// phase tracks pass/fail for a check phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	live := flag.Bool("live", false, "also run against the public DEM and forecast providers")
	hours := flag.Int("hours", 6, "hours to simulate in the run phases")
	flag.Parse()

	if *hours < 1 || *hours > 240 {
		flag.Usage()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	if code := run(ctx, *hours, *live); code != 0 {
		os.Exit(code)
	}
}

func run(ctx context.Context, hours int, live bool) int {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()

	offline := simulation.New(nil, nil, simulation.DefaultOptions(), metrics, logger)

	fmt.Println("=== Fire Front Self-Check ===")
	fmt.Println()

	phases := []*phase{
		checkBuiltin(ctx, offline),
		checkRun(ctx, offline, "Constant wind run", hours, false),
		checkRun(ctx, offline, "Accumulated run", hours, true),
	}
	if live {
		dem := opentopo.NewClient(opentopo.DefaultURL, 20*time.Second, metrics, logger)
		meteo := openmeteo.NewClient(openmeteo.DefaultURL, 20*time.Second, nil, metrics, logger)
		online := simulation.New(slope.NewEstimator(dem, slope.DefaultOptions(), logger), meteo,
			simulation.DefaultOptions(), metrics, logger)
		phases = append(phases, checkLive(ctx, online, hours))
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll checks passed.")
		return 0
	}
	fmt.Println("\nSelf-check FAILED.")
	return 1
}

func checkBuiltin(ctx context.Context, sim *simulation.Simulator) *phase {
	p := &phase{name: "Built-in growth check"}
	report, err := sim.SelfCheck(ctx)
	if err != nil {
		p.errorf("self-check: %v", err)
		return p
	}
	if report.Passed() {
		return p
	}
	if !report.AreaIncreasing {
		p.errorf("areas not strictly increasing: %v", report.AreasM2)
	}
	if !report.Nested {
		p.errorf("fronts are not nested")
	}
	return p
}

func checkRun(ctx context.Context, sim *simulation.Simulator, name string, hours int, accumulate bool) *phase {
	p := &phase{name: name}
	cfg := domain.SimulationConfig{
		RunID:       "selfcheck",
		Perimeter:   simulation.SelfCheckPerimeter(),
		Hours:       hours,
		WindMS:      domain.DefaultWindMS,
		WindFromDeg: domain.DefaultWindDeg,
		BaseROSMS:   domain.DefaultBaseROSMS,
		SlopeTan:    domain.DefaultSlopeTan,
		Accumulate:  accumulate,
	}
	res, err := sim.Run(ctx, cfg)
	if err != nil {
		p.errorf("run: %v", err)
		return p
	}
	checkResult(p, res, hours)

	if res.Meta.AccumulationEffective != accumulate {
		p.errorf("accumulation_effective = %v, want %v", res.Meta.AccumulationEffective, accumulate)
	}
	return p
}

func checkLive(ctx context.Context, sim *simulation.Simulator, hours int) *phase {
	p := &phase{name: "Live provider run"}
	cfg := domain.SimulationConfig{
		RunID:     "selfcheck-live",
		Perimeter: simulation.SelfCheckPerimeter(),
		Hours:     hours,
		BaseROSMS: domain.DefaultBaseROSMS,
		SlopeTan:  domain.DefaultSlopeTan,
		UseDEM:    true,
		UseMeteo:  true,
	}
	res, err := sim.Run(ctx, cfg)
	if err != nil {
		p.errorf("run: %v", err)
		return p
	}
	checkResult(p, res, hours)

	if res.Meta.DEMError != "" {
		p.errorf("dem: %s", res.Meta.DEMError)
	}
	if res.Meta.MeteoError != "" {
		p.errorf("meteo: %s", res.Meta.MeteoError)
	}
	if len(res.Meta.MeteoPreview) == 0 && res.Meta.MeteoError == "" {
		p.errorf("meteo preview is empty")
	}
	return p
}

// checkResult verifies front count, hour numbering, planar growth, and that
// the collection encodes.
func checkResult(p *phase, res domain.Result, hours int) {
	if len(res.Fronts) != hours {
		p.errorf("got %d fronts, want %d", len(res.Fronts), hours)
		return
	}
	prev := geometry.Area(projection.MultiPolygonToPlanar(simulation.SelfCheckPerimeter()))
	for i, f := range res.Fronts {
		if f.Hour != i+1 {
			p.errorf("front %d has hour %d", i, f.Hour)
		}
		area := geometry.Area(projection.MultiPolygonToPlanar(f.Geometry))
		if area < prev {
			p.errorf("hour %d: area %.0f m2 smaller than previous %.0f m2", f.Hour, area, prev)
		}
		prev = area
	}
	if _, err := json.Marshal(res.FeatureCollection()); err != nil {
		p.errorf("encode feature collection: %v", err)
	}
}
