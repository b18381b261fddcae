package standards

import (
	"errors"
	"fmt"
	"math"
)

// MatchToleranceMm is the largest difference, in millimetres, at which a
// diameter still counts as a catalog size.
const MatchToleranceMm = 0.001

var (
	// ErrUnknownSchedule is returned when a schedule name is not offered for a DN.
	ErrUnknownSchedule = errors.New("unknown schedule")
	// ErrUnknownDN is returned when a nominal diameter is not in the catalog.
	ErrUnknownDN = errors.New("unknown nominal diameter")
)

// Match identifies a catalog size and schedule.
type Match struct {
	DN       int    `json:"dn"`
	Schedule string `json:"sch"`
}

// InternalDiameter returns the internal diameter in metres of a pipe with the
// given outer diameter and wall thickness, both in millimetres.
func InternalDiameter(outerDiameterMm, wallThicknessMm float64) float64 {
	return (outerDiameterMm - 2*wallThicknessMm) / 1000
}

// Resolver answers catalog questions. It holds no mutable state and is safe
// for concurrent use.
type Resolver struct {
	catalog Catalog
}

// NewResolver creates a resolver over the given catalog.
func NewResolver(c Catalog) *Resolver {
	return &Resolver{catalog: c}
}

// Default returns a resolver over the ASME catalog.
func Default() *Resolver {
	return NewResolver(ASME())
}

// Catalog returns the catalog the resolver scans.
func (r *Resolver) Catalog() Catalog {
	return r.catalog
}

// FindClosestMatch returns the first (DN, schedule) pair, in catalog order,
// whose internal diameter lies within MatchToleranceMm of diameterM. It is an
// exact-match lookup: a diameter with no pair in tolerance is custom and the
// second return value is false.
func (r *Resolver) FindClosestMatch(diameterM float64) (Match, bool) {
	targetMm := diameterM * 1000
	for _, e := range r.catalog {
		for _, s := range e.Schedules {
			idMm := e.OuterDiameterMm - 2*s.WallThicknessMm
			if math.Abs(idMm-targetMm) < MatchToleranceMm {
				return Match{DN: e.DN, Schedule: s.Name}, true
			}
		}
	}
	return Match{}, false
}

// Diameter returns the internal diameter in metres for a (DN, schedule) pair.
func (r *Resolver) Diameter(dn int, schedule string) (float64, error) {
	e, ok := r.catalog.Lookup(dn)
	if !ok {
		return 0, fmt.Errorf("DN%d: %w", dn, ErrUnknownDN)
	}
	wt, ok := e.WallThickness(schedule)
	if !ok {
		return 0, fmt.Errorf("DN%d schedule %q: %w", dn, schedule, ErrUnknownSchedule)
	}
	return InternalDiameter(e.OuterDiameterMm, wt), nil
}

// ResolveDNChange returns the internal diameter after switching to newDN. The
// current schedule is kept when newDN offers it, otherwise the first schedule
// listed for newDN is used. The schedule actually applied is returned too.
func (r *Resolver) ResolveDNChange(newDN int, currentSchedule string) (float64, string, error) {
	e, ok := r.catalog.Lookup(newDN)
	if !ok {
		return 0, "", fmt.Errorf("DN%d: %w", newDN, ErrUnknownDN)
	}
	if len(e.Schedules) == 0 {
		return 0, "", fmt.Errorf("DN%d has no schedules: %w", newDN, ErrUnknownSchedule)
	}

	schedule := currentSchedule
	wt, ok := e.WallThickness(schedule)
	if !ok {
		schedule = e.Schedules[0].Name
		wt = e.Schedules[0].WallThicknessMm
	}
	return InternalDiameter(e.OuterDiameterMm, wt), schedule, nil
}

// ResolveScheduleChange returns the internal diameter for a schedule change at
// a fixed DN.
func (r *Resolver) ResolveScheduleChange(dn int, newSchedule string) (float64, error) {
	return r.Diameter(dn, newSchedule)
}
