package forecast

import "github.com/shopspring/decimal"

// Metric is one displayed quantity of a forecast result
type Metric struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Metrics returns the six result quantities in display order. Lengths and
// volumes keep two decimals, counts are whole numbers.
func (r Result) Metrics() []Metric {
	return []Metric{
		{Key: "conductor", Label: "Conductor (m)", Value: fixed(r.ACSRConductorM, 2)},
		{Key: "tower", Label: "Steel Towers", Value: fixed(r.TowersSteelCount, 0)},
		{Key: "insulator", Label: "Insulators", Value: fixed(r.InsulatorsCount, 0)},
		{Key: "concrete", Label: "Concrete (m³)", Value: fixed(r.ConcreteM3, 2)},
		{Key: "transformer", Label: "Transformers", Value: fixed(r.PowerTransformersCount, 0)},
		{Key: "breaker", Label: "Circuit Breakers", Value: fixed(r.CircuitBreakersCount, 0)},
	}
}

func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}
