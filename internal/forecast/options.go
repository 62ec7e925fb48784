package forecast

import (
	"strings"

	"github.com/samber/lo"
)

// Option is one choice of a select field
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field describes a select field of the forecast form
type Field struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Options []Option `json:"options"`
}

var selectFields = []Field{
	{Name: FieldRegion, Label: "Region", Options: options([]string{"North", "South", "East", "West", "Central"}, humanize)},
	{Name: FieldTerrain, Label: "Terrain", Options: options([]string{"Urban", "Rural", "Mountainous", "Coastal"}, humanize)},
	{Name: FieldInfrastructureType, Label: "Infrastructure Type", Options: options([]string{"Transmission_Line", "Substation"}, humanize)},
	{Name: FieldProjectCategory, Label: "Project Category", Options: options([]string{"New_Installation", "Maintenance", "Emergency_Repair", "System_Upgrade"}, humanize)},
	{Name: FieldVoltageLevel, Label: "Voltage Level (kV)", Options: options([]string{"33", "66", "132", "220", "400"}, func(v string) string { return v + " kV" })},
	{Name: FieldWeatherCondition, Label: "Weather Condition", Options: options([]string{"Clear", "Rainy", "Storm", "Heatwave", "Snow"}, humanize)},
}

func humanize(v string) string {
	return strings.ReplaceAll(v, "_", " ")
}

func options(values []string, label func(string) string) []Option {
	return lo.Map(values, func(v string, _ int) Option {
		return Option{Value: v, Label: label(v)}
	})
}

// SelectFields returns the select fields of the form in display order
func SelectFields() []Field {
	out := make([]Field, len(selectFields))
	copy(out, selectFields)
	return out
}

// IsOption reports whether value is a valid choice for the named field
func IsOption(name, value string) bool {
	field, ok := lo.Find(selectFields, func(f Field) bool { return f.Name == name })
	if !ok {
		return false
	}
	return lo.ContainsBy(field.Options, func(o Option) bool { return o.Value == value })
}
