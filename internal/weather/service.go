package weather

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/i474232898/weatherlink-poller/internal/observability"
)

// Service runs poll cycles: it fetches every source, ingests the payloads,
// normalizes them through the Engine and persists the resulting Record.
type Service struct {
	engine  *Engine
	store   Store
	sources []Source
	sinks   []Sink
	metrics *observability.Metrics
	clock   clockwork.Clock

	// mu serializes cycles; rain is only touched while it is held.
	mu   sync.Mutex
	rain RainState
}

// Option customizes a Service.
type Option func(*Service)

// WithSinks adds record sinks.
func WithSinks(sinks ...Sink) Option {
	return func(s *Service) { s.sinks = append(s.sinks, sinks...) }
}

// WithClock replaces the time source used when no payload carries a timestamp.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// NewService creates a new Service.
func NewService(engine *Engine, store Store, sources []Source, metrics *observability.Metrics, opts ...Option) *Service {
	s := &Service{
		engine:  engine,
		store:   store,
		sources: sources,
		metrics: metrics,
		clock:   clockwork.NewRealClock(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type fetchResult struct {
	source  Source
	payload Payload
}

// Poll runs one cycle. Sources are fetched concurrently but ingested in a fixed
// order, air quality before weather, so the weather timestamp wins when both
// report one. A failing source only loses its own contribution; Poll always
// returns a Record.
func (s *Service) Poll(ctx context.Context) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	start := s.clock.Now()
	if len(s.sources) == 0 {
		log.Printf("ERROR: no weather or aqi host configured; record will be empty")
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []fetchResult
	)
	for _, src := range s.sources {
		src := src
		wg.Add(1)
		go func() {
			defer wg.Done()

			p, err := src.Fetch(ctx)
			if err != nil {
				// Log and continue; we want partial success when possible.
				log.Printf("ERROR: source %s fetch failed: %v", src.Name(), err)
				s.metrics.SourceFailures.WithLabelValues(src.Kind().String()).Inc()
				return
			}

			mu.Lock()
			results = append(results, fetchResult{source: src, payload: p})
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].source.Kind() < results[j].source.Kind()
	})

	index := NewReadingIndex()
	var ts time.Time
	for _, r := range results {
		if r.payload.Data.Timestamp > 0 {
			ts = time.Unix(r.payload.Data.Timestamp, 0)
		}
		if err := index.Ingest(r.payload); err != nil {
			log.Printf("WARN: source %s: %v", r.source.Name(), err)
			s.metrics.IngestWarnings.Inc()
		}
	}
	if ts.IsZero() {
		ts = s.clock.Now()
	}

	rec := s.engine.Normalize(index, ts, &s.rain)

	s.metrics.PollCycles.Inc()
	s.metrics.MetricsResolved.Set(float64(len(rec.Values)))
	if delta, ok := rec.Value("rain"); ok && delta > 0 {
		s.metrics.RainTotal.Add(delta)
	}

	s.store.SaveRecord(rec)
	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, rec); err != nil {
			log.Printf("ERROR: sink %s publish failed: %v", sink.Name(), err)
			s.metrics.SinkFailures.WithLabelValues(sink.Name()).Inc()
		}
	}

	s.metrics.PollDuration.Observe(s.clock.Since(start).Seconds())
	return rec, nil
}

// Bindings delegates to the engine.
func (s *Service) Bindings() []TransmitterBinding {
	return s.engine.Bindings()
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest() (Record, error) {
	return s.store.GetLatest()
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(from, to time.Time) ([]Record, error) {
	return s.store.GetRange(from, to)
}
