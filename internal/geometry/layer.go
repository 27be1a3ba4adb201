package geometry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/golang/glog"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// A polygon feature of an intermediate layer. Field names follow the attribute
// table of the exported shapefiles
type Feature struct {
	Geometry geom.Polygonal
	ID       int
	Status   string
	Dataset  string
	Path     string
	Zmin     float64
	Zmax     float64
}

type Layer struct {
	Name     string
	Features []Feature
}

// Width of the dbf string fields written by the shapefile encoder
const dbfStringLength = 50

// shapefile row archetype, dbf field names are limited to 10 characters.
// LAS holds the file name only, full paths live in the GeoJSON copy
type layerRow struct {
	geom.Polygon
	Id      int
	STATUS  string
	DATASET string
	LAS     string
	ZMIN    float64
	ZMAX    float64
}

// Merges every ring of p into a single polygon value, the shape a shapefile record holds
func Flatten(p geom.Polygonal) geom.Polygon {
	var out geom.Polygon
	for _, poly := range Polygons(p) {
		out = append(out, poly...)
	}
	return out
}

// Persists the layer according to the storage. OnDisk layers are written as an ESRI
// shapefile at storage.Path plus a GeoJSON copy next to it. InMemory layers are left untouched
func (l *Layer) Save(storage Storage) error {
	if storage.Kind != OnDisk {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(storage.Path), 0777); err != nil {
		return err
	}

	base := strings.TrimSuffix(storage.Path, filepath.Ext(storage.Path))
	if err := l.writeShapefile(base + ".shp"); err != nil {
		return fmt.Errorf("writing %s shapefile: %w", l.Name, err)
	}
	if err := l.WriteGeoJSON(base + ".geojson"); err != nil {
		return fmt.Errorf("writing %s geojson: %w", l.Name, err)
	}
	glog.V(1).Infof("layer %s saved to %s (%d features)", l.Name, storage.Path, len(l.Features))
	return nil
}

func (l *Layer) writeShapefile(path string) error {
	DeleteShapefile(path)

	encoder, err := shp.NewEncoder(path, layerRow{})
	if err != nil {
		return err
	}
	defer encoder.Close()

	for _, f := range l.Features {
		row := layerRow{
			Polygon: Flatten(f.Geometry),
			Id:      f.ID,
			STATUS:  dbfString(f.Status),
			DATASET: dbfString(f.Dataset),
			LAS:     dbfString(baseName(f.Path)),
			ZMIN:    f.Zmin,
			ZMAX:    f.Zmax,
		}
		if err := encoder.Encode(row); err != nil {
			return err
		}
	}
	return nil
}

func baseName(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}

// Cuts s to the dbf field width without splitting a character
func dbfString(s string) string {
	if len(s) <= dbfStringLength {
		return s
	}
	cut := dbfStringLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	glog.V(1).Infof("dbf value %q truncated to %d bytes", s, cut)
	return s[:cut]
}

func (l *Layer) WriteGeoJSON(path string) error {
	fc := geojson.NewFeatureCollection()
	for _, f := range l.Features {
		multi := ToOrbMultiPolygon(f.Geometry)
		var g orb.Geometry = multi
		if len(multi) == 1 {
			g = multi[0]
		}
		feature := geojson.NewFeature(g)
		feature.Properties["Id"] = f.ID
		if f.Status != "" {
			feature.Properties["STATUS"] = f.Status
		}
		if f.Dataset != "" {
			feature.Properties["DATASET"] = f.Dataset
		}
		if f.Path != "" {
			feature.Properties["LAS"] = f.Path
			feature.Properties["ZMIN"] = f.Zmin
			feature.Properties["ZMAX"] = f.Zmax
		}
		fc.Append(feature)
	}

	content, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, 0666)
}

// Removes a shapefile and its sidecar files
func DeleteShapefile(path string) {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	for _, ext := range []string{".shp", ".shx", ".dbf", ".prj", ".cpg", ".geojson"} {
		if err := os.Remove(base + ext); err != nil && !os.IsNotExist(err) {
			glog.Warningf("cannot remove %s: %v", base+ext, err)
		}
	}
}

// Reads every polygon of a shapefile or GeoJSON file and dissolves them into one geometry
func ReadPolygons(path string) (geom.Polygonal, error) {
	var parts []geom.Polygonal

	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		decoder, err := shp.NewDecoder(path)
		if err != nil {
			return nil, err
		}
		for {
			g, _, more := decoder.DecodeRowFields()
			if !more {
				break
			}
			p, ok := g.(geom.Polygonal)
			if !ok {
				decoder.Close()
				return nil, fmt.Errorf("%s: clipping shapes need to be polygons, found %T", path, g)
			}
			parts = append(parts, p)
		}
		if err := decoder.Error(); err != nil {
			decoder.Close()
			return nil, err
		}
		decoder.Close()

	case ".geojson", ".json":
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		fc, err := geojson.UnmarshalFeatureCollection(content)
		if err != nil {
			return nil, err
		}
		for _, f := range fc.Features {
			switch g := f.Geometry.(type) {
			case orb.Polygon:
				parts = append(parts, FromOrbPolygon(g))
			case orb.MultiPolygon:
				for _, p := range g {
					parts = append(parts, FromOrbPolygon(p))
				}
			case orb.Bound:
				parts = append(parts, FromOrbPolygon(g.ToPolygon()))
			default:
				return nil, fmt.Errorf("%s: clipping shapes need to be polygons, found %s", path, f.Geometry.GeoJSONType())
			}
		}

	default:
		return nil, fmt.Errorf("unsupported geometry file %s, expected .shp or .geojson", path)
	}

	result := Apply(Dissolve, parts...)
	if result == nil {
		return nil, fmt.Errorf("%s holds no polygon with a positive area", path)
	}
	return result, nil
}
