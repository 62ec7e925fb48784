package forecast

import (
	"errors"
	"net/url"
	"testing"
)

func TestDefaultRequestIsValid(t *testing.T) {
	if err := Validate(DefaultRequest()); err != nil {
		t.Fatalf("Expected default request to be valid, got %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
		field  string
	}{
		{"missing region", func(r *Request) { r.Region = "" }, FieldRegion},
		{"unknown terrain", func(r *Request) { r.Terrain = "Desert" }, FieldTerrain},
		{"unknown voltage", func(r *Request) { r.VoltageLevelKV = "110" }, FieldVoltageLevel},
		{"label instead of value", func(r *Request) { r.InfrastructureType = "Transmission Line" }, FieldInfrastructureType},
		{"missing route length", func(r *Request) { r.RouteLengthKM = "" }, FieldRouteLength},
		{"negative route length", func(r *Request) { r.RouteLengthKM = "-1" }, FieldRouteLength},
		{"non-numeric route length", func(r *Request) { r.RouteLengthKM = "ten" }, FieldRouteLength},
		{"NaN route length", func(r *Request) { r.RouteLengthKM = "NaN" }, FieldRouteLength},
		{"hex route length", func(r *Request) { r.RouteLengthKM = "0x1p3" }, FieldRouteLength},
		{"underscored route length", func(r *Request) { r.RouteLengthKM = "1_0" }, FieldRouteLength},
		{"infinite route length", func(r *Request) { r.RouteLengthKM = "Inf" }, FieldRouteLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := DefaultRequest()
			tt.mutate(&req)

			err := Validate(req)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if len(verr.Fields) != 1 || verr.Fields[0] != tt.field {
				t.Errorf("Expected field %s, got %v", tt.field, verr.Fields)
			}
		})
	}
}

func TestValidateReportsAllFields(t *testing.T) {
	err := Validate(Request{})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 7 {
		t.Errorf("Expected 7 invalid fields, got %v", verr.Fields)
	}
}

func TestValidateAcceptsZeroAndDecimalRouteLength(t *testing.T) {
	for _, v := range []string{"0", "0.1", "1.5", "100"} {
		req := DefaultRequest()
		req.RouteLengthKM = v
		if err := Validate(req); err != nil {
			t.Errorf("Expected route length %q to be valid, got %v", v, err)
		}
	}
}

func TestFromForm(t *testing.T) {
	values := url.Values{
		FieldRegion:             {"South"},
		FieldTerrain:            {" Coastal "},
		FieldInfrastructureType: {"Substation"},
		FieldProjectCategory:    {"Maintenance"},
		FieldVoltageLevel:       {"220"},
		FieldWeatherCondition:   {"Storm"},
		FieldRouteLength:        {"1.5"},
	}

	req := FromForm(values)
	want := Request{
		Region:             "South",
		Terrain:            "Coastal",
		InfrastructureType: "Substation",
		ProjectCategory:    "Maintenance",
		VoltageLevelKV:     "220",
		WeatherCondition:   "Storm",
		RouteLengthKM:      "1.5",
	}
	if req != want {
		t.Errorf("Expected %+v, got %+v", want, req)
	}
}

func TestGet(t *testing.T) {
	req := DefaultRequest()
	if req.Get(FieldVoltageLevel) != "33" {
		t.Errorf("Expected voltage 33, got %q", req.Get(FieldVoltageLevel))
	}
	if req.Get("unknown") != "" {
		t.Error("Expected empty value for unknown field")
	}
}

func TestSelectFields(t *testing.T) {
	fields := SelectFields()
	if len(fields) != 6 {
		t.Fatalf("Expected 6 select fields, got %d", len(fields))
	}

	infra := fields[2]
	if infra.Name != FieldInfrastructureType {
		t.Fatalf("Expected %s, got %s", FieldInfrastructureType, infra.Name)
	}
	if infra.Options[0].Label != "Transmission Line" {
		t.Errorf("Expected humanized label, got %q", infra.Options[0].Label)
	}

	voltage := fields[4]
	if voltage.Options[4].Value != "400" || voltage.Options[4].Label != "400 kV" {
		t.Errorf("Unexpected voltage option: %+v", voltage.Options[4])
	}

	// Callers must not be able to change the package option lists
	fields[0].Name = "changed"
	if SelectFields()[0].Name != FieldRegion {
		t.Error("SelectFields returned shared slice")
	}
}

func TestMetrics(t *testing.T) {
	res := Result{
		ACSRConductorM:         3100.456,
		TowersSteelCount:       31,
		InsulatorsCount:        124.4,
		PowerTransformersCount: 0,
		CircuitBreakersCount:   2,
		ConcreteM3:             150.5,
	}

	metrics := res.Metrics()
	want := []struct{ key, value string }{
		{"conductor", "3100.46"},
		{"tower", "31"},
		{"insulator", "124"},
		{"concrete", "150.50"},
		{"transformer", "0"},
		{"breaker", "2"},
	}

	if len(metrics) != len(want) {
		t.Fatalf("Expected %d metrics, got %d", len(want), len(metrics))
	}
	for i, w := range want {
		if metrics[i].Key != w.key || metrics[i].Value != w.value {
			t.Errorf("metric %d: expected %s=%s, got %s=%s", i, w.key, w.value, metrics[i].Key, metrics[i].Value)
		}
	}
}
