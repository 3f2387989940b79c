package sink

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	influx "github.com/influxdata/influxdb/client/v2"
	"github.com/jackc/pgx/v5/pgconn"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weatherlink-poller/internal/weather"
)

func testRecord() weather.Record {
	rec := weather.BuildRecord(time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC), []weather.Resolved{
		{Name: "outTemp", Value: 62.7},
		{Name: "rain", Value: 0.02},
	})
	rec.Hardware = "DavisWWW"
	return rec
}

type fakeMessageWriter struct {
	msgs []kafkago.Message
	err  error
}

func (f *fakeMessageWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return f.err
}

func (f *fakeMessageWriter) Close() error { return nil }

func TestRecordToMessage(t *testing.T) {
	rec := testRecord()

	msg, err := recordToMessage(rec)
	require.NoError(t, err)

	assert.Equal(t, []byte(rec.ID.String()), msg.Key)
	assert.Contains(t, string(msg.Value), `"outTemp":62.7`)
	assert.Contains(t, string(msg.Value), `"units":"US"`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "observed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2024-04-26T15:10:00Z"), msg.Headers[1].Value)
}

func TestKafkaSink_Publish(t *testing.T) {
	w := &fakeMessageWriter{}
	k := &KafkaSink{writer: w}

	require.NoError(t, k.Publish(context.Background(), testRecord()))
	assert.Len(t, w.msgs, 1)

	w.err = errors.New("leader not available")
	assert.Error(t, k.Publish(context.Background(), testRecord()))
	assert.Equal(t, "kafka", k.Name())
}

type fakeExecer struct {
	sql  string
	args []any
}

func (f *fakeExecer) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.sql = sql
	f.args = args
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func TestPostgresSink_Publish(t *testing.T) {
	db := &fakeExecer{}
	p := &PostgresSink{db: db}
	rec := testRecord()

	require.NoError(t, p.Publish(context.Background(), rec))

	assert.Equal(t, insertRecord, db.sql)
	require.Len(t, db.args, 5)
	assert.Equal(t, rec.ID, db.args[0])
	assert.Equal(t, "US", db.args[2])
	assert.Equal(t, "DavisWWW", db.args[3])

	var vals map[string]float64
	require.NoError(t, json.Unmarshal(db.args[4].([]byte), &vals))
	assert.Equal(t, rec.Values, vals)
	assert.NoError(t, p.Close())
}

type fakePointWriter struct {
	batches []influx.BatchPoints
}

func (f *fakePointWriter) Write(bp influx.BatchPoints) error {
	f.batches = append(f.batches, bp)
	return nil
}

func (f *fakePointWriter) Close() error { return nil }

func TestRecordToPoint(t *testing.T) {
	rec := testRecord()

	p, err := recordToPoint("weather", rec)
	require.NoError(t, err)

	assert.Equal(t, "weather", p.Name())
	assert.Equal(t, map[string]string{"units": "US", "hardware": "DavisWWW"}, p.Tags())
	fields, err := p.Fields()
	require.NoError(t, err)
	assert.Equal(t, 62.7, fields["outTemp"])
	assert.True(t, p.Time().Equal(rec.Timestamp))
}

func TestInfluxSink_Publish(t *testing.T) {
	w := &fakePointWriter{}
	s := &InfluxSink{client: w, database: "weather", measurement: "wll"}

	require.NoError(t, s.Publish(context.Background(), testRecord()))
	require.Len(t, w.batches, 1)
	assert.Equal(t, "weather", w.batches[0].Database())
	assert.Len(t, w.batches[0].Points(), 1)

	// Empty records carry no fields and are skipped.
	empty := weather.BuildRecord(time.Now(), nil)
	require.NoError(t, s.Publish(context.Background(), empty))
	assert.Len(t, w.batches, 1)
}
