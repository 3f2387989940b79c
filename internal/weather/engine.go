package weather

import (
	"log"
	"time"
)

// EngineConfig holds the options that shape metric resolution. They are
// applied once when the engine is built.
type EngineConfig struct {
	Wind             WindMeasurement
	Defaults         GroupDefaults
	Mappings         string
	TransmitterOrder string
	RainCollector    RainCollector
	Hardware         string
}

// Engine resolves and normalizes the readings of one poll cycle. It performs
// no I/O; the only cross-cycle state is the RainState passed to Normalize.
type Engine struct {
	catalog    *Catalog
	assignment Assignment
	resolver   *Resolver
	rainFactor float64
	hardware   string
	skipped    []string
}

// NewEngine builds the catalog, transmitter assignment and resolver.
func NewEngine(cfg EngineConfig) *Engine {
	if !cfg.Wind.Valid() {
		log.Printf("WARN: invalid wind measurement %d; using 1-minute average", cfg.Wind)
		cfg.Wind = WindAvg1Min
	}
	if !cfg.RainCollector.Valid() {
		log.Printf("WARN: invalid rain collector %d; using type 1", cfg.RainCollector)
		cfg.RainCollector = RainCollector001In
	}
	if cfg.Defaults.Weather == "" || cfg.Defaults.Soil == "" {
		def := DefaultGroupDefaults()
		if cfg.Defaults.Weather == "" {
			cfg.Defaults.Weather = def.Weather
		}
		if cfg.Defaults.Soil == "" {
			cfg.Defaults.Soil = def.Soil
		}
	}

	catalog := NewCatalog(cfg.Wind)
	mappings := ParseMappings(cfg.Mappings, catalog)
	for _, tok := range mappings.Skipped {
		log.Printf("WARN: ignoring mapping %q", tok)
	}
	assignment := BuildAssignment(catalog, cfg.Defaults, mappings.Overrides)

	return &Engine{
		catalog:    catalog,
		assignment: assignment,
		resolver:   NewResolver(assignment, cfg.TransmitterOrder),
		rainFactor: cfg.RainCollector.ScaleFactor(),
		hardware:   cfg.Hardware,
		skipped:    mappings.Skipped,
	}
}

// Catalog returns the metric catalog the engine was built with.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// SkippedMappings returns the mapping tokens that could not be applied.
func (e *Engine) SkippedMappings() []string {
	return e.skipped
}

// Bindings lists every metric together with its preferred transmitter.
func (e *Engine) Bindings() []TransmitterBinding {
	specs := e.catalog.Specs()
	out := make([]TransmitterBinding, 0, len(specs))
	for _, s := range specs {
		out = append(out, TransmitterBinding{
			MetricSpec:      s,
			PostProcessName: s.PostProcess.String(),
			TransmitterID:   e.assignment[s.NativeField],
		})
	}
	return out
}

// Normalize resolves every catalog metric from ix, applies scaling and
// post-processing, and builds the cycle's Record. rain is the state owned by
// the poll loop and Normalize must be called once per cycle with it. A nil
// rain reports the scaled rain counter untracked.
func (e *Engine) Normalize(ix *ReadingIndex, ts time.Time, rain *RainState) Record {
	specs := e.catalog.Specs()
	resolved := make([]Resolved, 0, len(specs))
	for _, s := range specs {
		v, ok := e.resolver.ResolveMetric(ix, s)
		if !ok {
			continue
		}
		resolved = append(resolved, Resolved{
			Name:  s.Name,
			Value: Apply(s.PostProcess, v, e.rainFactor, rain),
		})
	}

	rec := BuildRecord(ts, resolved)
	rec.Hardware = e.hardware
	return rec
}
