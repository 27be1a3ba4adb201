package proj4_resolver

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/golang/glog"
	proj4 "github.com/xeonx/proj4"

	"github.com/ecopia-map/pointcloud_updater/internal/converters"
)

// Resolves spatial references through the proj.4 library. Projection handles are
// cached per definition and released by Cleanup
type Proj4Resolver struct {
	projections map[string]*proj4.Proj
	sync.Mutex
}

func NewProj4Resolver() converters.SpatialReferenceResolver {
	return &Proj4Resolver{
		projections: make(map[string]*proj4.Proj),
	}
}

// Fills the linear unit of sr from its proj4 definition. A linear unit already
// present is only normalized
func (r *Proj4Resolver) Resolve(sr converters.SpatialReference) (converters.SpatialReference, error) {
	if sr.LinearUnit != "" {
		unit, err := converters.NormalizeLinearUnit(sr.LinearUnit)
		if err != nil {
			return sr, err
		}
		sr.LinearUnit = unit
		return sr, nil
	}
	if sr.Proj4 == "" {
		return sr, fmt.Errorf("spatial reference %s has neither a proj4 definition nor a linear unit", sr)
	}

	proj, err := r.getProjection(sr.Proj4)
	if err != nil {
		return sr, err
	}

	unit, err := linearUnit(proj, sr.Proj4)
	if err != nil {
		return sr, err
	}
	sr.LinearUnit = unit
	glog.V(1).Infof("resolved linear unit %s for %s", unit, sr)
	return sr, nil
}

func (r *Proj4Resolver) getProjection(def string) (*proj4.Proj, error) {
	r.Lock()
	defer r.Unlock()

	key := converters.NormalizeProj4(def)
	if p, ok := r.projections[key]; ok {
		return p, nil
	}
	p, err := proj4.InitPlus(def)
	if err != nil {
		return nil, fmt.Errorf("invalid proj4 definition %q: %w", def, err)
	}
	r.projections[key] = p
	return p, nil
}

func linearUnit(proj *proj4.Proj, def string) (string, error) {
	if proj.IsLatLong() {
		return converters.UnitDegree, nil
	}
	if units, ok := converters.Proj4Param(def, "units"); ok {
		return converters.NormalizeLinearUnit(units)
	}
	if toMeter, ok := converters.Proj4Param(def, "to_meter"); ok {
		factor, err := strconv.ParseFloat(toMeter, 64)
		if err != nil {
			return "", fmt.Errorf("invalid +to_meter in %q: %w", def, err)
		}
		if factor == 1 {
			return converters.UnitMeter, nil
		}
		if factor > 0.3047 && factor < 0.3049 {
			return converters.UnitFoot, nil
		}
		return "", fmt.Errorf("units not detected: +to_meter=%s", toMeter)
	}
	// proj.4 defaults projected systems to meters
	return converters.UnitMeter, nil
}

// Releases every cached projection
func (r *Proj4Resolver) Cleanup() {
	r.Lock()
	defer r.Unlock()
	for key, p := range r.projections {
		p.Close()
		delete(r.projections, key)
	}
}
