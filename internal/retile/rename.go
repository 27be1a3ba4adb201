package retile

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/ecopia-map/pointcloud_updater/internal/data"
	"github.com/ecopia-map/pointcloud_updater/internal/lasio"
	"github.com/ecopia-map/pointcloud_updater/tools"
)

const auxiliaryExtension = ".lasx"

var nonLetters = regexp.MustCompile("[^a-zA-Z]+")

type rename struct {
	from, to string
}

// Renames the fragments of a tile folder to <base>_<n><ext>. A fragment belongs to
// the Source or Updated family when its name, stripped of everything but letters,
// ends with the family name. Families are numbered in directory listing order and
// .lasx auxiliary files are deleted
func RenameTiles(folder string, sourceBase string, updatedBase string) error {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return err
	}

	counters := map[string]int{sourceBase: 0, updatedBase: 0}
	var renames []rename
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(folder, e.Name())
		ext := filepath.Ext(e.Name())

		if strings.EqualFold(ext, auxiliaryExtension) {
			if err := os.Remove(path); err != nil {
				return err
			}
			continue
		}
		if !lasio.IsPointCloudFile(path) {
			continue
		}

		letters := nonLetters.ReplaceAllString(tools.GetFilenameWithoutExtension(path), "")
		var base string
		switch {
		case strings.HasSuffix(letters, sourceBase):
			base = sourceBase
		case strings.HasSuffix(letters, updatedBase):
			base = updatedBase
		default:
			continue
		}
		target := filepath.Join(folder, fmt.Sprintf("%s_%d%s", base, counters[base], ext))
		counters[base]++
		renames = append(renames, rename{from: path, to: target})
	}

	// two phases so a target name can be the current name of a later file
	token := uuid.New().String()
	for i := range renames {
		temp := fmt.Sprintf("%s.%s.%d", renames[i].from, token, i)
		if err := os.Rename(renames[i].from, temp); err != nil {
			return err
		}
		renames[i].from = temp
	}
	for _, r := range renames {
		if err := os.Rename(r.from, r.to); err != nil {
			return err
		}
	}
	glog.V(1).Infof("renamed %d fragments in %s (%d %s, %d %s)", len(renames), folder,
		counters[sourceBase], sourceBase, counters[updatedBase], updatedBase)
	return nil
}

// Renames the fragments of every tile folder under tilesFolder
func RenameAll(fileFinder tools.FileFinder, tilesFolder string) error {
	tools.LogOutput("Renaming Resulting Tiles")
	folders, err := fileFinder.GetSubFolders(tilesFolder)
	if err != nil {
		return err
	}
	for _, f := range folders {
		if err := RenameTiles(f, data.ProvenanceSource.String(), data.ProvenanceUpdated.String()); err != nil {
			return fmt.Errorf("renaming tiles of %s: %w", f, err)
		}
	}
	return nil
}

// Renames the files of dir with extension from to extension to
func RenameExtension(dir string, from string, to string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	renamed := 0
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != from {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := os.Rename(path, strings.TrimSuffix(path, from)+to); err != nil {
			return renamed, err
		}
		renamed++
	}
	return renamed, nil
}
