package tools

import (
	"fmt"
	"os"
	"path/filepath"
)

// Returns the folder temporary catalogs are written to: the configured one if any,
// the system temporary folder otherwise
func GetScratchFolder(configured string) string {
	if configured != "" {
		return configured
	}
	return os.TempDir()
}

func CreateDirectoryIfDoesNotExist(directory string) error {
	info, err := os.Stat(directory)
	if os.IsNotExist(err) {
		return os.MkdirAll(directory, 0777)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s exists and is not a directory", directory)
	}
	return nil
}

// Returns the file name of path without its extension
func GetFilenameWithoutExtension(path string) string {
	nameWext := filepath.Base(path)
	extension := filepath.Ext(nameWext)
	return nameWext[0 : len(nameWext)-len(extension)]
}

func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
