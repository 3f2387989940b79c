package weather

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrUnsupportedRecordType marks a condition element whose data_structure_type
// has no transmitter id mapping.
var ErrUnsupportedRecordType = errors.New("unsupported record type")

// Data structure types reported in current_conditions.
const (
	RecordISS        = 1
	RecordLeafSoil   = 2
	RecordBarometer  = 3
	RecordIndoor     = 4
	RecordAirQuality = 6
)

const (
	keyRecordType = "data_structure_type"
	keyTxID       = "txid"
)

// Payload is the body returned by a device's /v1/current_conditions endpoint.
type Payload struct {
	Data  PayloadData `json:"data"`
	Error *APIError   `json:"error"`
}

// PayloadData carries the device timestamp and per-sensor condition records.
type PayloadData struct {
	DID        string      `json:"did"`
	Timestamp  int64       `json:"ts"`
	Conditions []Condition `json:"conditions"`
}

// Condition is one decoded condition element: data_structure_type, an optional
// txid, and the sensor fields.
type Condition map[string]any

// APIError is the error object a device returns instead of data.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("device error %d: %s", e.Code, e.Message)
}

type readingKey struct {
	tx    string
	field string
}

// ReadingIndex is a flat (transmitter id, native field) store for one poll cycle.
// It is not safe for concurrent writers.
type ReadingIndex struct {
	values map[readingKey]any
}

// NewReadingIndex returns an empty index.
func NewReadingIndex() *ReadingIndex {
	return &ReadingIndex{values: make(map[readingKey]any)}
}

// Set stores a value, replacing any earlier value for the same key.
func (ix *ReadingIndex) Set(tx, field string, v any) {
	ix.values[readingKey{tx: tx, field: field}] = v
}

// Get returns the raw value stored for (tx, field).
func (ix *ReadingIndex) Get(tx, field string) (any, bool) {
	v, ok := ix.values[readingKey{tx: tx, field: field}]
	return v, ok
}

// Len returns the number of stored readings.
func (ix *ReadingIndex) Len() int {
	return len(ix.values)
}

// Ingest stores every field of every condition element under the element's
// transmitter id. Elements with an unrecognized type are skipped; the returned
// error wraps ErrUnsupportedRecordType for each of them while the rest of the
// payload is still ingested. JSON nulls are not stored.
func (ix *ReadingIndex) Ingest(p Payload) error {
	var errs []error
	for i, c := range p.Data.Conditions {
		tx, err := transmitterFor(c)
		if err != nil {
			errs = append(errs, fmt.Errorf("condition %d: %w", i, err))
			continue
		}
		for k, v := range c {
			if k == keyRecordType || k == keyTxID || v == nil {
				continue
			}
			ix.Set(tx, k, v)
		}
	}
	return errors.Join(errs...)
}

func transmitterFor(c Condition) (string, error) {
	rt, ok := toFloat(c[keyRecordType])
	if !ok {
		return "", fmt.Errorf("%w: missing %s", ErrUnsupportedRecordType, keyRecordType)
	}
	if rt != math.Trunc(rt) {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedRecordType, rt)
	}

	switch int(rt) {
	case RecordISS, RecordLeafSoil:
		txid, ok := c[keyTxID]
		if !ok || txid == nil {
			return "", fmt.Errorf("%w: type %d without %s", ErrUnsupportedRecordType, int(rt), keyTxID)
		}
		return idString(txid), nil
	case RecordBarometer:
		return TxBarometric, nil
	case RecordIndoor:
		return TxIndoor, nil
	case RecordAirQuality:
		return TxAirQuality, nil
	default:
		return "", fmt.Errorf("%w: %v", ErrUnsupportedRecordType, rt)
	}
}

func idString(v any) string {
	switch t := v.(type) {
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// toFloat converts a decoded JSON value to a float. Strings are parsed; any
// other non-numeric value, NaN or an infinity is reported as missing.
func toFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
