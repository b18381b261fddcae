// Package units converts between the SI values the solver works in and the
// engineering units shown in editors and reports.
package units

import (
	"fmt"
	"math"
)

const (
	pascalsPerBar       = 100000.0
	litresMinPerM3s     = 60000.0
	kelvinOffset        = 273.15
	millimetresPerMetre = 1000.0
)

// PaToBar converts pascals to bar.
func PaToBar(pa float64) float64 { return pa / pascalsPerBar }

// BarToPa converts bar to pascals.
func BarToPa(bar float64) float64 { return bar * pascalsPerBar }

// M3sToLmin converts cubic metres per second to litres per minute.
func M3sToLmin(m3s float64) float64 { return m3s * litresMinPerM3s }

// LminToM3s converts litres per minute to cubic metres per second.
func LminToM3s(lmin float64) float64 { return lmin / litresMinPerM3s }

// KToC converts kelvin to degrees Celsius.
func KToC(k float64) float64 { return k - kelvinOffset }

// CToK converts degrees Celsius to kelvin.
func CToK(c float64) float64 { return c + kelvinOffset }

// MToMm converts metres to millimetres.
func MToMm(m float64) float64 { return m * millimetresPerMetre }

// MmToM converts millimetres to metres.
func MmToM(mm float64) float64 { return mm / millimetresPerMetre }

// PipeArea returns the flow cross-section of a round pipe with internal
// diameter d (m), in m².
func PipeArea(d float64) float64 {
	return math.Pi * d * d / 4
}

// Velocity returns the mean velocity (m/s) of flow q (m³/s) through a pipe of
// internal diameter d (m). A non-positive diameter yields zero.
func Velocity(q, d float64) float64 {
	if d <= 0 {
		return 0
	}
	return q / PipeArea(d)
}

// Display formatting, matching the precision used in the editor tables.

// FormatBar renders a pressure in pascals as bar with two decimals.
func FormatBar(pa float64) string { return fmt.Sprintf("%.2f", PaToBar(pa)) }

// FormatLmin renders a flow in m³/s as L/min with one decimal.
func FormatLmin(m3s float64) string { return fmt.Sprintf("%.1f", M3sToLmin(m3s)) }

// FormatCelsius renders a temperature in kelvin as °C with one decimal.
func FormatCelsius(k float64) string { return fmt.Sprintf("%.1f", KToC(k)) }

// FormatMm renders a length in metres as millimetres with two decimals.
func FormatMm(m float64) string { return fmt.Sprintf("%.2f", MToMm(m)) }
