// Package forecast holds the forecast request and result records, the form
// defaults and options shown to users, and request validation.
package forecast

import (
	"net/url"
	"strings"
)

// Field names as sent to and returned by the prediction service
const (
	FieldRegion             = "Region"
	FieldTerrain            = "Terrain"
	FieldInfrastructureType = "Infrastructure_Type"
	FieldProjectCategory    = "Project_Category"
	FieldVoltageLevel       = "Voltage_Level_kV"
	FieldWeatherCondition   = "Weather_Condition"
	FieldRouteLength        = "Route_Length_km"
)

// Request is the set of project parameters sent to the prediction endpoint.
// Values are kept as strings, the way the form submits them.
type Request struct {
	Region             string `json:"Region" validate:"required,option"`
	Terrain            string `json:"Terrain" validate:"required,option"`
	InfrastructureType string `json:"Infrastructure_Type" validate:"required,option"`
	ProjectCategory    string `json:"Project_Category" validate:"required,option"`
	VoltageLevelKV     string `json:"Voltage_Level_kV" validate:"required,option"`
	WeatherCondition   string `json:"Weather_Condition" validate:"required,option"`
	RouteLengthKM      string `json:"Route_Length_km" validate:"required,numeric,nonnegative"`
}

// Result is the predicted material demand returned by the prediction endpoint
type Result struct {
	ACSRConductorM         float64 `json:"ACSR_Conductor_m"`
	TowersSteelCount       float64 `json:"Towers_Steel_Count"`
	InsulatorsCount        float64 `json:"Insulators_Count"`
	PowerTransformersCount float64 `json:"Power_Transformers_Count"`
	CircuitBreakersCount   float64 `json:"Circuit_Breakers_Count"`
	ConcreteM3             float64 `json:"Concrete_m3"`
}

// DefaultRequest returns the values a fresh form starts with
func DefaultRequest() Request {
	return Request{
		Region:             "North",
		Terrain:            "Urban",
		InfrastructureType: "Transmission_Line",
		ProjectCategory:    "New_Installation",
		VoltageLevelKV:     "33",
		WeatherCondition:   "Clear",
		RouteLengthKM:      "10",
	}
}

// Get returns the value of a field by its wire name
func (r Request) Get(name string) string {
	switch name {
	case FieldRegion:
		return r.Region
	case FieldTerrain:
		return r.Terrain
	case FieldInfrastructureType:
		return r.InfrastructureType
	case FieldProjectCategory:
		return r.ProjectCategory
	case FieldVoltageLevel:
		return r.VoltageLevelKV
	case FieldWeatherCondition:
		return r.WeatherCondition
	case FieldRouteLength:
		return r.RouteLengthKM
	}
	return ""
}

// FromForm builds a request from submitted form values. Missing fields stay
// empty so validation can report them.
func FromForm(v url.Values) Request {
	get := func(name string) string { return strings.TrimSpace(v.Get(name)) }
	return Request{
		Region:             get(FieldRegion),
		Terrain:            get(FieldTerrain),
		InfrastructureType: get(FieldInfrastructureType),
		ProjectCategory:    get(FieldProjectCategory),
		VoltageLevelKV:     get(FieldVoltageLevel),
		WeatherCondition:   get(FieldWeatherCondition),
		RouteLengthKM:      get(FieldRouteLength),
	}
}
