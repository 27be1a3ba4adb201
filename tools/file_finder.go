package tools

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/ecopia-map/pointcloud_updater/internal/lasio"
)

type FileFinder interface {
	GetPointCloudFiles(dir string, recursive bool) ([]string, error)
	GetSubFolders(dir string) ([]string, error)
}

type StandardFileFinder struct{}

func NewStandardFileFinder() FileFinder {
	return &StandardFileFinder{}
}

// Lists the .las, .laz and .zlas files under dir in lexical order, eventually
// excluding nested folders if recursive is disabled
func (f *StandardFileFinder) GetPointCloudFiles(dir string, recursive bool) ([]string, error) {
	var files = make([]string, 0)

	baseInfo, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	err = filepath.Walk(
		dir,
		func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				if !recursive && !os.SameFile(info, baseInfo) {
					return filepath.SkipDir
				}
				return nil
			}
			if lasio.IsPointCloudFile(path) {
				files = append(files, path)
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	return files, nil
}

// Lists the direct sub folders of dir in lexical order
func (f *StandardFileFinder) GetSubFolders(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	folders := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			folders = append(folders, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(folders)
	return folders, nil
}
