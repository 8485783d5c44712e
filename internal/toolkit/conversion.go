package toolkit

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// UnitCategory groups units that convert into each other.
type UnitCategory string

const (
	UnitBytes       UnitCategory = "bytes"
	UnitTime        UnitCategory = "time"
	UnitLength      UnitCategory = "length"
	UnitTemperature UnitCategory = "temperature"
)

// Unit is a measurement unit. A value v in this unit equals
// v*factor + offset in the category's base unit (byte, second, meter,
// degree Celsius).
type Unit struct {
	CanonicalName string       `json:"canonicalName"`
	Aliases       []string     `json:"aliases"`
	Category      UnitCategory `json:"category"`

	factor float64
	offset float64
}

func (u *Unit) toBase(v float64) float64   { return v*u.factor + u.offset }
func (u *Unit) fromBase(v float64) float64 { return (v - u.offset) / u.factor }

func linear(name string, category UnitCategory, factor float64, aliases ...string) *Unit {
	return &Unit{CanonicalName: name, Aliases: aliases, Category: category, factor: factor}
}

// units is ordered by category, then by increasing size.
var units = []*Unit{
	linear("b", UnitBytes, 0.125, "bit", "bits"),
	linear("byte", UnitBytes, 1, "B", "bytes"),
	linear("kb", UnitBytes, 1<<10, "KB", "kib", "KiB", "kilobyte", "kilobytes", "kibibyte", "kibibytes"),
	linear("mb", UnitBytes, 1<<20, "MB", "mib", "MiB", "megabyte", "megabytes", "mebibyte", "mebibytes"),
	linear("gb", UnitBytes, 1<<30, "GB", "gib", "GiB", "gigabyte", "gigabytes", "gibibyte", "gibibytes"),
	linear("tb", UnitBytes, 1<<40, "TB", "tib", "TiB", "terabyte", "terabytes", "tebibyte", "tebibytes"),
	linear("pb", UnitBytes, 1<<50, "PB", "pib", "PiB", "petabyte", "petabytes", "pebibyte", "pebibytes"),

	linear("ns", UnitTime, 1e-9, "nanosecond", "nanoseconds", "nanosec"),
	linear("us", UnitTime, 1e-6, "µs", "microsecond", "microseconds", "microsec"),
	linear("ms", UnitTime, 1e-3, "millisecond", "milliseconds", "millisec"),
	linear("s", UnitTime, 1, "sec", "secs", "second", "seconds"),
	linear("min", UnitTime, 60, "minute", "minutes"),
	linear("h", UnitTime, 3600, "hr", "hrs", "hour", "hours"),
	linear("day", UnitTime, 86400, "days", "d"),
	linear("week", UnitTime, 604800, "weeks", "wk", "wks"),

	linear("mm", UnitLength, 0.001, "millimeter", "millimeters", "millimetre", "millimetres"),
	linear("cm", UnitLength, 0.01, "centimeter", "centimeters", "centimetre", "centimetres"),
	linear("m", UnitLength, 1, "meter", "meters", "metre", "metres"),
	linear("km", UnitLength, 1000, "kilometer", "kilometers", "kilometre", "kilometres"),
	linear("in", UnitLength, 0.0254, "inch", "inches"),
	linear("ft", UnitLength, 0.3048, "foot", "feet"),
	linear("yd", UnitLength, 0.9144, "yard", "yards"),
	linear("mi", UnitLength, 1609.344, "mile", "miles"),

	{CanonicalName: "c", Aliases: []string{"celsius", "°c", "°C"}, Category: UnitTemperature, factor: 1},
	{CanonicalName: "f", Aliases: []string{"fahrenheit", "°f", "°F"}, Category: UnitTemperature, factor: 5.0 / 9.0, offset: -160.0 / 9.0},
	{CanonicalName: "k", Aliases: []string{"kelvin", "K"}, Category: UnitTemperature, factor: 1, offset: -273.15},
}

var exactUnits, foldedUnits = buildUnitIndex()

// buildUnitIndex indexes names as written and lower-cased. Exact matches win,
// so "b" is a bit and "B" a byte.
func buildUnitIndex() (map[string]*Unit, map[string]*Unit) {
	exact := make(map[string]*Unit)
	folded := make(map[string]*Unit)
	for _, u := range units {
		for _, name := range append([]string{u.CanonicalName}, u.Aliases...) {
			exact[name] = u
			if _, taken := folded[strings.ToLower(name)]; !taken {
				folded[strings.ToLower(name)] = u
			}
		}
	}
	return exact, folded
}

// LookupUnit finds a unit by canonical name or alias.
func LookupUnit(name string) (*Unit, bool) {
	name = strings.TrimSpace(name)
	if u, ok := exactUnits[name]; ok {
		return u, true
	}
	u, ok := foldedUnits[strings.ToLower(name)]
	return u, ok
}

// UnitsIn returns the units of category in size order. An empty category
// returns every unit.
func UnitsIn(category UnitCategory) []*Unit {
	var out []*Unit
	for _, u := range units {
		if category == "" || u.Category == category {
			out = append(out, u)
		}
	}
	return out
}

// Convert converts value between two units of the same category.
func Convert(value float64, from, to string) (float64, error) {
	src, ok := LookupUnit(from)
	if !ok {
		return 0, invalidInput("from", "unknown unit %q", from)
	}
	dst, ok := LookupUnit(to)
	if !ok {
		return 0, invalidInput("to", "unknown unit %q", to)
	}
	if src.Category != dst.Category {
		return 0, invalidInput("to", "cannot convert %s (%s) to %s (%s)", from, src.Category, to, dst.Category)
	}
	if src == dst {
		return value, nil
	}
	return dst.fromBase(src.toBase(value)), nil
}

// formatValue prints near-integers without a fraction and everything else
// with up to six decimals.
func formatValue(v float64) string {
	rounded := math.Round(v)
	if math.Abs(rounded-v) < 0.0001 {
		if rounded == 0 {
			return "0"
		}
		return strconv.FormatFloat(rounded, 'f', 0, 64)
	}
	s := strconv.FormatFloat(v, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func conversionTools() []*Tool {
	valueInput := Input{Name: "value", Description: "Number to convert", Type: "number", Required: true}
	fromInput := Input{Name: "from", Description: "Source unit, e.g. km, MiB, celsius", Type: "string", Required: true}

	return []*Tool{
		{
			Name:        "unit-convert",
			Title:       "Unit Convert",
			Category:    CategoryConversion,
			Description: "Convert a value between bytes, time, length or temperature units",
			Inputs: []Input{
				valueInput,
				fromInput,
				{Name: "to", Description: "Target unit", Type: "string", Required: true},
			},
			Fn: unitConvert,
		},
		{
			Name:        "unit-convert-all",
			Title:       "Unit Convert All",
			Category:    CategoryConversion,
			Description: "Convert a value into every other unit of its category",
			Inputs:      []Input{valueInput, fromInput},
			Fn:          unitConvertAll,
		},
		{
			Name:        "unit-list",
			Title:       "Unit List",
			Category:    CategoryConversion,
			Description: "List known units and their aliases as JSON",
			Inputs: []Input{
				{Name: "category", Description: "bytes, time, length or temperature; empty for all", Type: "string"},
			},
			Fn: unitList,
		},
	}
}

func unitConvert(_ context.Context, in Inputs) (Result, error) {
	value, err := in.Float("value", 0)
	if err != nil {
		return Result{}, err
	}
	to := strings.TrimSpace(in.String("to"))

	out, err := Convert(value, in.String("from"), to)
	if err != nil {
		return Result{}, err
	}
	return Result{Output: formatValue(out) + " " + to}, nil
}

func unitConvertAll(_ context.Context, in Inputs) (Result, error) {
	value, err := in.Float("value", 0)
	if err != nil {
		return Result{}, err
	}
	src, ok := LookupUnit(in.String("from"))
	if !ok {
		return Result{}, invalidInput("from", "unknown unit %q", in.String("from"))
	}

	var lines []string
	for _, dst := range UnitsIn(src.Category) {
		if dst == src {
			continue
		}
		out := dst.fromBase(src.toBase(value))
		lines = append(lines, formatValue(out)+" "+dst.CanonicalName)
	}

	return Result{Output: strings.Join(lines, "\n")}, nil
}

func unitList(_ context.Context, in Inputs) (Result, error) {
	category := UnitCategory(strings.ToLower(strings.TrimSpace(in.String("category"))))
	switch category {
	case "", UnitBytes, UnitTime, UnitLength, UnitTemperature:
	default:
		return Result{}, invalidInput("category", "%q is not one of bytes, time, length, temperature", category)
	}

	data, err := json.MarshalIndent(UnitsIn(category), "", "  ")
	if err != nil {
		return Result{}, fmt.Errorf("encode units: %w", err)
	}
	return Result{Output: string(data)}, nil
}
