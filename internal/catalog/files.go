package catalog

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/ecopia-map/pointcloud_updater/internal/data"
)

// Fails with a MixedFormatError when files hold more than one point-cloud extension
func CheckSingleFormat(location string, files []string) error {
	extensions := make(map[string]struct{})
	for _, f := range files {
		extensions[strings.ToLower(filepath.Ext(f))] = struct{}{}
	}
	if len(extensions) <= 1 {
		return nil
	}
	found := make([]string, 0, len(extensions))
	for ext := range extensions {
		found = append(found, ext)
	}
	sort.Strings(found)
	return &data.MixedFormatError{Location: location, Extensions: found}
}
