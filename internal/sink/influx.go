package sink

import (
	"context"
	"fmt"

	influx "github.com/influxdata/influxdb/client/v2"

	"github.com/i474232898/weatherlink-poller/internal/weather"
)

type pointWriter interface {
	Write(bp influx.BatchPoints) error
	Close() error
}

// InfluxSink writes each record as one point, one field per metric.
type InfluxSink struct {
	client      pointWriter
	database    string
	measurement string
}

// NewInfluxSink creates an InfluxDB HTTP client for addr.
func NewInfluxSink(addr, user, password, database, measurement string) (*InfluxSink, error) {
	c, err := influx.NewHTTPClient(influx.HTTPConfig{
		Addr:     addr,
		Username: user,
		Password: password,
	})
	if err != nil {
		return nil, fmt.Errorf("influx client: %w", err)
	}
	return &InfluxSink{client: c, database: database, measurement: measurement}, nil
}

func (s *InfluxSink) Name() string {
	return "influx"
}

// Publish writes rec. Records without values are skipped since InfluxDB
// rejects points with no fields.
func (s *InfluxSink) Publish(_ context.Context, rec weather.Record) error {
	if len(rec.Values) == 0 {
		return nil
	}

	bp, err := influx.NewBatchPoints(influx.BatchPointsConfig{
		Database:  s.database,
		Precision: "s",
	})
	if err != nil {
		return err
	}

	p, err := recordToPoint(s.measurement, rec)
	if err != nil {
		return err
	}
	bp.AddPoint(p)

	return s.client.Write(bp)
}

func (s *InfluxSink) Close() error {
	return s.client.Close()
}

func recordToPoint(measurement string, rec weather.Record) (*influx.Point, error) {
	tags := map[string]string{
		"units": string(rec.Units),
	}
	if rec.Hardware != "" {
		tags["hardware"] = rec.Hardware
	}

	fields := make(map[string]interface{}, len(rec.Values))
	for k, v := range rec.Values {
		fields[k] = v
	}

	return influx.NewPoint(measurement, tags, fields, rec.Timestamp)
}
