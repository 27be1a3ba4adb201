package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ecopia-map/pointcloud_updater/internal/converters"
	"github.com/ecopia-map/pointcloud_updater/internal/geometry"
)

const ManifestExtension = ".lasd.json"

// A point-cloud file registered in a dataset, with the statistics read when it was cataloged.
// Extent is nil for files whose header could not be read
type FileRecord struct {
	Path       string                `json:"path"`
	Extent     *geometry.BoundingBox `json:"extent,omitempty"`
	PointCount int                   `json:"point_count"`
}

// A named collection of point-cloud tiles sharing one spatial reference.
// Persisted as a JSON manifest next to, or away from, the files it lists
type Dataset struct {
	Name             string                      `json:"name"`
	SpatialReference converters.SpatialReference `json:"spatial_reference"`
	Files            []FileRecord                `json:"files"`

	// location of the manifest, empty for datasets never saved
	Path string `json:"-"`
}

func IsManifestPath(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ManifestExtension)
}

// Loads a dataset manifest. Relative file paths are resolved against the manifest folder
func Load(path string) (*Dataset, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ds Dataset
	if err := json.Unmarshal(content, &ds); err != nil {
		return nil, fmt.Errorf("invalid dataset manifest %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i, f := range ds.Files {
		if !filepath.IsAbs(f.Path) {
			ds.Files[i].Path = filepath.Join(base, f.Path)
		}
	}
	ds.Path = path
	if ds.Name == "" {
		ds.Name = strings.TrimSuffix(filepath.Base(path), ManifestExtension)
	}
	return &ds, nil
}

// Writes the manifest to path, file paths are stored as given
func (ds *Dataset) Save(path string) error {
	if !IsManifestPath(path) {
		return fmt.Errorf("dataset manifest %s must end with %s", path, ManifestExtension)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil {
		return err
	}
	content, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, content, 0666); err != nil {
		return err
	}
	ds.Path = path
	return nil
}

func (ds *Dataset) FilePaths() []string {
	paths := make([]string, 0, len(ds.Files))
	for _, f := range ds.Files {
		paths = append(paths, f.Path)
	}
	return paths
}

// Union of the extents of every file of the dataset
func (ds *Dataset) Extent() geometry.BoundingBox {
	extent := geometry.EmptyBoundingBox()
	for _, f := range ds.Files {
		if f.Extent == nil {
			continue
		}
		extent.Extend(*f.Extent)
	}
	return extent
}

func (ds *Dataset) PointCount() int {
	total := 0
	for _, f := range ds.Files {
		total += f.PointCount
	}
	return total
}

func (ds *Dataset) String() string {
	if ds.Path != "" {
		return ds.Path
	}
	return ds.Name
}

// Returns a dataset restricted to the given files, in catalog order
func (ds *Dataset) Subset(paths ...string) *Dataset {
	wanted := make(map[string]bool, len(paths))
	for _, p := range paths {
		wanted[p] = true
	}
	sub := &Dataset{
		Name:             ds.Name,
		SpatialReference: ds.SpatialReference,
		Files:            make([]FileRecord, 0, len(paths)),
		Path:             ds.Path,
	}
	for _, f := range ds.Files {
		if wanted[f.Path] {
			sub.Files = append(sub.Files, f)
		}
	}
	return sub
}
