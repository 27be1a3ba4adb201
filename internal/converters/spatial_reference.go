package converters

import (
	"fmt"
	"sort"
	"strings"
)

// Spatial reference of a point-cloud dataset as stored in its catalog
type SpatialReference struct {
	Name         string `json:"name"`
	Proj4        string `json:"proj4,omitempty"`
	WKID         int    `json:"wkid,omitempty"`
	LinearUnit   string `json:"linear_unit"`
	VerticalName string `json:"vertical_name,omitempty"`
	VerticalWKID int    `json:"vertical_wkid,omitempty"`
}

// Resolves the derived properties of a spatial reference, namely its linear unit
type SpatialReferenceResolver interface {
	Resolve(sr SpatialReference) (SpatialReference, error)
	Cleanup()
}

// Identifier of the horizontal coordinate system. The EPSG code when known,
// the normalized proj4 definition otherwise
func (sr SpatialReference) Identifier() string {
	if sr.WKID != 0 {
		return fmt.Sprintf("EPSG:%d", sr.WKID)
	}
	return NormalizeProj4(sr.Proj4)
}

// Identifier of the vertical coordinate system, empty when the dataset has none
func (sr SpatialReference) VerticalIdentifier() string {
	if sr.VerticalWKID != 0 {
		return fmt.Sprintf("EPSG:%d", sr.VerticalWKID)
	}
	return strings.TrimSpace(sr.VerticalName)
}

func (sr SpatialReference) String() string {
	if sr.Name != "" {
		return sr.Name
	}
	return sr.Identifier()
}

// Sorts the +key=value tokens of a proj4 definition so equivalent definitions compare equal
func NormalizeProj4(def string) string {
	tokens := strings.Fields(def)
	kept := tokens[:0]
	for _, t := range tokens {
		if t == "+no_defs" || t == "+wktext" {
			continue
		}
		kept = append(kept, t)
	}
	sort.Strings(kept)
	return strings.Join(kept, " ")
}

// Returns the value of a +key=value proj4 parameter
func Proj4Param(def string, key string) (string, bool) {
	prefix := "+" + key + "="
	for _, t := range strings.Fields(def) {
		if strings.HasPrefix(t, prefix) {
			return strings.TrimPrefix(t, prefix), true
		}
	}
	return "", false
}
