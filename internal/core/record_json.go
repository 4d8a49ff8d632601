package core

import (
	"encoding/json"
)

// MarshalJSON writes a record keyed by the CSV column names. Missing years
// and non-finite metrics are null, since JSON has no NaN.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, MetricCount()+3)
	out[ColumnCountry] = r.Country
	if r.HasYear {
		out[ColumnYear] = r.Year
	} else {
		out[ColumnYear] = nil
	}
	for _, def := range Metrics() {
		if r.Finite(def.Metric) {
			out[string(def.Metric)] = r.Value(def.Metric)
		} else {
			out[string(def.Metric)] = nil
		}
	}
	if len(r.Extra) > 0 {
		out["extra"] = r.Extra
	}
	return json.Marshal(out)
}
