package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/i474232898/weatherlink-poller/internal/weather"
	"github.com/sony/gobreaker"
)

// WeatherLinkProvider implements the weather.Source interface for a Davis
// WeatherLink Live or AirLink device on the local network.
type WeatherLinkProvider struct {
	name    string
	kind    weather.SourceKind
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewWeatherLinkProvider creates a provider polling host's current_conditions endpoint.
func NewWeatherLinkProvider(client *http.Client, kind weather.SourceKind, host string) *WeatherLinkProvider {
	name := kind.String()
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    1 * time.Minute,
		Timeout:     30 * time.Second,
	})

	return &WeatherLinkProvider{
		name:    name,
		kind:    kind,
		baseURL: CurrentConditionsURL(host),
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      1,
				InitialInterval: 250 * time.Millisecond,
				MaxInterval:     time.Second,
			},
		},
		circuit: cb,
	}
}

// CurrentConditionsURL returns the endpoint for host. A host without a port
// gets the device default of 80.
func CurrentConditionsURL(host string) string {
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, "80")
	}
	return fmt.Sprintf("http://%s/v1/current_conditions", host)
}

func (p *WeatherLinkProvider) Name() string {
	return p.name
}

func (p *WeatherLinkProvider) Kind() weather.SourceKind {
	return p.kind
}

func (p *WeatherLinkProvider) Fetch(ctx context.Context) (weather.Payload, error) {
	buildRequest := func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, p.baseURL, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Payload{}, err
	}
	defer resp.Body.Close()

	var payload weather.Payload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Payload{}, fmt.Errorf("decode %s: %w", p.baseURL, err)
	}
	if payload.Error != nil {
		return weather.Payload{}, payload.Error
	}

	return payload, nil
}
