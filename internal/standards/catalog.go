// Package standards maps continuous pipe diameters onto a catalog of
// manufactured nominal sizes and wall-thickness schedules.
//
// The built-in catalog covers ASME B36.10M (carbon steel) and B36.19M
// (stainless steel) from DN15 to DN400. All catalog dimensions are in
// millimetres; diameters exchanged with the rest of the system are in metres.
package standards

// Schedule is a named wall-thickness class offered for one nominal size.
type Schedule struct {
	Name            string  `json:"name" yaml:"name"`
	WallThicknessMm float64 `json:"wall_thickness_mm" yaml:"wall_thickness_mm"`
}

// Entry is one nominal pipe size with its schedules in lookup order.
type Entry struct {
	DN              int        `json:"dn" yaml:"dn"`
	NPS             string     `json:"nps" yaml:"nps"`
	OuterDiameterMm float64    `json:"outer_diameter_mm" yaml:"outer_diameter_mm"`
	Schedules       []Schedule `json:"schedules" yaml:"schedules"`
}

// WallThickness returns the wall thickness of the named schedule.
func (e Entry) WallThickness(schedule string) (float64, bool) {
	for _, s := range e.Schedules {
		if s.Name == schedule {
			return s.WallThicknessMm, true
		}
	}
	return 0, false
}

// ScheduleNames lists the schedule names in lookup order.
func (e Entry) ScheduleNames() []string {
	names := make([]string, 0, len(e.Schedules))
	for _, s := range e.Schedules {
		names = append(names, s.Name)
	}
	return names
}

// Catalog is an ordered list of nominal sizes. Order matters: lookups scan
// entries and schedules front to back and the first hit wins.
type Catalog []Entry

// Lookup returns the entry for a nominal diameter.
func (c Catalog) Lookup(dn int) (Entry, bool) {
	for _, e := range c {
		if e.DN == dn {
			return e, true
		}
	}
	return Entry{}, false
}

func sch(name string, wt float64) Schedule {
	return Schedule{Name: name, WallThicknessMm: wt}
}

// ASME returns the built-in ASME B36.10M / B36.19M catalog.
//
// Numeric schedule names precede the lettered ones within each size. "40"
// therefore wins over the dimensionally identical "40s" and "STD".
func ASME() Catalog {
	return Catalog{
		{DN: 15, NPS: "1/2", OuterDiameterMm: 21.3, Schedules: []Schedule{
			sch("40", 2.77), sch("80", 3.73), sch("5s", 1.65), sch("10s", 2.11),
			sch("40s", 2.77), sch("STD", 2.77), sch("80s", 3.73), sch("XS", 3.73),
		}},
		{DN: 20, NPS: "3/4", OuterDiameterMm: 26.7, Schedules: []Schedule{
			sch("40", 2.87), sch("80", 3.91), sch("5s", 1.65), sch("10s", 2.11),
			sch("40s", 2.87), sch("STD", 2.87), sch("80s", 3.91), sch("XS", 3.91),
		}},
		{DN: 25, NPS: "1", OuterDiameterMm: 33.4, Schedules: []Schedule{
			sch("40", 3.38), sch("80", 4.55), sch("5s", 1.65), sch("10s", 2.77),
			sch("40s", 3.38), sch("STD", 3.38), sch("80s", 4.55), sch("XS", 4.55),
		}},
		{DN: 32, NPS: "1 1/4", OuterDiameterMm: 42.2, Schedules: []Schedule{
			sch("40", 3.56), sch("80", 4.85), sch("5s", 1.65), sch("10s", 2.77),
			sch("40s", 3.56), sch("STD", 3.56), sch("80s", 4.85), sch("XS", 4.85),
		}},
		{DN: 40, NPS: "1 1/2", OuterDiameterMm: 48.3, Schedules: []Schedule{
			sch("40", 3.68), sch("80", 5.08), sch("5s", 1.65), sch("10s", 2.77),
			sch("40s", 3.68), sch("STD", 3.68), sch("80s", 5.08), sch("XS", 5.08),
		}},
		{DN: 50, NPS: "2", OuterDiameterMm: 60.3, Schedules: []Schedule{
			sch("40", 3.91), sch("80", 5.54), sch("5s", 1.65), sch("10s", 2.77),
			sch("40s", 3.91), sch("STD", 3.91), sch("80s", 5.54), sch("XS", 5.54),
		}},
		{DN: 65, NPS: "2 1/2", OuterDiameterMm: 73.0, Schedules: []Schedule{
			sch("40", 5.16), sch("80", 7.01), sch("5s", 2.11), sch("10s", 3.05),
			sch("40s", 5.16), sch("STD", 5.16), sch("80s", 7.01), sch("XS", 7.01),
		}},
		{DN: 80, NPS: "3", OuterDiameterMm: 88.9, Schedules: []Schedule{
			sch("40", 5.49), sch("80", 7.62), sch("5s", 2.11), sch("10s", 3.05),
			sch("40s", 5.49), sch("STD", 5.49), sch("80s", 7.62), sch("XS", 7.62),
		}},
		{DN: 100, NPS: "4", OuterDiameterMm: 114.3, Schedules: []Schedule{
			sch("40", 6.02), sch("80", 8.56), sch("5s", 2.11), sch("10s", 3.05),
			sch("40s", 6.02), sch("STD", 6.02), sch("80s", 8.56), sch("XS", 8.56),
		}},
		{DN: 125, NPS: "5", OuterDiameterMm: 141.3, Schedules: []Schedule{
			sch("40", 6.55), sch("80", 9.53), sch("5s", 2.77), sch("10s", 3.40),
			sch("40s", 6.55), sch("STD", 6.55), sch("80s", 9.53), sch("XS", 9.53),
		}},
		{DN: 150, NPS: "6", OuterDiameterMm: 168.3, Schedules: []Schedule{
			sch("40", 7.11), sch("80", 10.97), sch("5s", 2.77), sch("10s", 3.40),
			sch("40s", 7.11), sch("STD", 7.11), sch("80s", 10.97), sch("XS", 10.97),
		}},
		{DN: 200, NPS: "8", OuterDiameterMm: 219.1, Schedules: []Schedule{
			sch("20", 6.35), sch("30", 7.04), sch("40", 8.18), sch("60", 10.31), sch("80", 12.70),
			sch("5s", 2.77), sch("10s", 3.76), sch("40s", 8.18), sch("STD", 8.18),
			sch("80s", 12.70), sch("XS", 12.70),
		}},
		{DN: 250, NPS: "10", OuterDiameterMm: 273.0, Schedules: []Schedule{
			sch("20", 6.35), sch("30", 7.80), sch("40", 9.27), sch("60", 12.70), sch("80", 15.09),
			sch("5s", 3.40), sch("10s", 4.19), sch("40s", 9.27), sch("STD", 9.27),
			sch("80s", 12.70), sch("XS", 12.70),
		}},
		{DN: 300, NPS: "12", OuterDiameterMm: 323.8, Schedules: []Schedule{
			sch("20", 6.35), sch("30", 8.38), sch("40", 10.31), sch("60", 14.27), sch("80", 17.48),
			sch("5s", 3.96), sch("10s", 4.57), sch("40s", 9.53), sch("STD", 9.53),
			sch("80s", 12.70), sch("XS", 12.70),
		}},
		{DN: 350, NPS: "14", OuterDiameterMm: 355.6, Schedules: []Schedule{
			sch("10", 6.35), sch("20", 7.92), sch("30", 9.53), sch("40", 11.13), sch("60", 15.09),
			sch("80", 19.05), sch("10s", 4.78), sch("STD", 9.53), sch("XS", 12.70),
		}},
		{DN: 400, NPS: "16", OuterDiameterMm: 406.4, Schedules: []Schedule{
			sch("10", 6.35), sch("20", 9.53), sch("30", 12.70), sch("40", 12.70), sch("60", 16.66),
			sch("80", 21.44), sch("10s", 4.78), sch("STD", 9.53), sch("XS", 12.70),
		}},
	}
}
