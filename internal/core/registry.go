package core

import (
	"fmt"
	"strings"
	"sync"
)

// MetricDef describes a recognized numeric column.
type MetricDef struct {
	Metric Metric `json:"column"`
	Label  string `json:"label"`
	Unit   string `json:"unit"`
}

var (
	registry   []MetricDef
	registryMu sync.RWMutex
)

func init() {
	RegisterMetric(MetricDef{Metric: MetricAvgTemperature, Label: "Average temperature", Unit: "°C"})
	RegisterMetric(MetricDef{Metric: MetricCO2PerCapita, Label: "CO2 emissions per capita", Unit: "t"})
	RegisterMetric(MetricDef{Metric: MetricSeaLevelRise, Label: "Sea level rise", Unit: "mm"})
	RegisterMetric(MetricDef{Metric: MetricRainfall, Label: "Rainfall", Unit: "mm"})
	RegisterMetric(MetricDef{Metric: MetricPopulation, Label: "Population", Unit: ""})
	RegisterMetric(MetricDef{Metric: MetricRenewablePct, Label: "Renewable energy", Unit: "%"})
	RegisterMetric(MetricDef{Metric: MetricExtremeEvents, Label: "Extreme weather events", Unit: ""})
	RegisterMetric(MetricDef{Metric: MetricForestAreaPct, Label: "Forest area", Unit: "%"})
}

// RegisterMetric adds a metric definition to the schema.
// Panics if the metric is already registered.
func RegisterMetric(def MetricDef) {
	registryMu.Lock()
	defer registryMu.Unlock()

	for _, existing := range registry {
		if strings.EqualFold(string(existing.Metric), string(def.Metric)) {
			panic(fmt.Sprintf("metric already registered: %s", def.Metric))
		}
	}
	registry = append(registry, def)
}

// LookupMetric resolves a column name (case-insensitive) to a registered metric.
func LookupMetric(name string) (MetricDef, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	name = strings.TrimSpace(name)
	for _, def := range registry {
		if strings.EqualFold(string(def.Metric), name) {
			return def, true
		}
	}
	return MetricDef{}, false
}

// ParseMetric is LookupMetric returning ErrUnknownMetric on a miss.
func ParseMetric(name string) (Metric, error) {
	def, ok := LookupMetric(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMetric, name)
	}
	return def.Metric, nil
}

// Metrics returns all metric definitions in schema order.
func Metrics() []MetricDef {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]MetricDef, len(registry))
	copy(out, registry)
	return out
}

// MetricCount returns the number of registered metrics.
func MetricCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}
