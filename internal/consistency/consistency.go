package consistency

import (
	"github.com/golang/glog"

	"github.com/ecopia-map/pointcloud_updater/internal/catalog"
	"github.com/ecopia-map/pointcloud_updater/internal/converters"
	"github.com/ecopia-map/pointcloud_updater/internal/data"
)

type SpatialReferenceSource interface {
	CoordinateSystemOf(ds *catalog.Dataset) (converters.SpatialReference, error)
}

// Verifies that source and update share coordinate system, linear unit and vertical
// coordinate system, in this order. Returns the shared reference
func Check(engine SpatialReferenceSource, source *catalog.Dataset, update *catalog.Dataset) (converters.SpatialReference, error) {
	sourceSR, err := engine.CoordinateSystemOf(source)
	if err != nil {
		return converters.SpatialReference{}, err
	}
	updateSR, err := engine.CoordinateSystemOf(update)
	if err != nil {
		return converters.SpatialReference{}, err
	}

	if err := Compare(sourceSR, updateSR); err != nil {
		return converters.SpatialReference{}, err
	}

	glog.Infof("Spatial reference: %s", sourceSR.Identifier())
	glog.Infof("Linear unit: %s", sourceSR.LinearUnit)
	if v := sourceSR.VerticalIdentifier(); v != "" {
		glog.Infof("Vertical coordinate system: %s", v)
	}
	return sourceSR, nil
}

// Reports the first property that differs between the two references
func Compare(source, update converters.SpatialReference) error {
	checks := []struct {
		property string
		source   string
		update   string
	}{
		{"coordinate system", source.Identifier(), update.Identifier()},
		{"linear unit", source.LinearUnit, update.LinearUnit},
		{"vertical coordinate system", source.VerticalIdentifier(), update.VerticalIdentifier()},
	}
	for _, c := range checks {
		if c.source != c.update {
			return &data.ReferenceMismatchError{Property: c.property, Source: c.source, Update: c.update}
		}
	}
	return nil
}
