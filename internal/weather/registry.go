package weather

import (
	"strings"
)

// Fixed transmitter ids for the device-internal sensors.
const (
	TxBarometric = "B"
	TxIndoor     = "I"
	TxAirQuality = "A"
)

// DefaultTransmitterOrder is the fallback scan order, one id per rune.
const DefaultTransmitterOrder = "12345678BIA"

// GroupDefaults holds the configurable default transmitter ids.
type GroupDefaults struct {
	Weather string
	Soil    string
}

// DefaultGroupDefaults returns the ids used when nothing is configured.
func DefaultGroupDefaults() GroupDefaults {
	return GroupDefaults{Weather: "1", Soil: "2"}
}

func (d GroupDefaults) idFor(g Group) string {
	switch g {
	case GroupWeather:
		return d.Weather
	case GroupSoil:
		return d.Soil
	case GroupBarometric:
		return TxBarometric
	case GroupIndoor:
		return TxIndoor
	default:
		return TxAirQuality
	}
}

// Override pins one logical metric to a transmitter id.
type Override struct {
	Metric        string
	TransmitterID string
}

// MappingResult is the outcome of parsing a mappings string. Tokens that could
// not be used are kept in Skipped so callers can report them.
type MappingResult struct {
	Overrides []Override
	Skipped   []string
}

// ParseMappings parses whitespace separated name:id tokens. Commas are also
// accepted as separators, so "outTemp:A,inTemp:I" splits into two tokens
// rather than giving outTemp the id "A,". Tokens with the wrong arity, empty
// parts or a name missing from the catalog are skipped.
func ParseMappings(s string, catalog *Catalog) MappingResult {
	var res MappingResult

	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	for _, tok := range tokens {
		parts := strings.Split(tok, ":")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			res.Skipped = append(res.Skipped, tok)
			continue
		}
		if _, err := catalog.Lookup(parts[0]); err != nil {
			res.Skipped = append(res.Skipped, tok)
			continue
		}
		res.Overrides = append(res.Overrides, Override{Metric: parts[0], TransmitterID: parts[1]})
	}
	return res
}

// Assignment maps a native field name to the transmitter id preferred for it.
type Assignment map[string]string

// BuildAssignment applies group defaults to every catalog entry, then the
// overrides, which always win.
func BuildAssignment(catalog *Catalog, defaults GroupDefaults, overrides []Override) Assignment {
	a := make(Assignment)
	for _, s := range catalog.Specs() {
		a[s.NativeField] = defaults.idFor(s.Group)
	}
	for _, o := range overrides {
		spec, err := catalog.Lookup(o.Metric)
		if err != nil {
			continue
		}
		a[spec.NativeField] = o.TransmitterID
	}
	return a
}
