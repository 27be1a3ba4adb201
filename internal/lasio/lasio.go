package lasio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/jblindsay/lidario"

	"github.com/ecopia-map/pointcloud_updater/internal/data"
	"github.com/ecopia-map/pointcloud_updater/internal/geometry"
)

// Point-cloud file extensions a dataset may hold
var Extensions = []string{".las", ".laz", ".zlas"}

var ErrUnsupportedFormat = errors.New("unsupported point-cloud format, only uncompressed .las can be read")

func IsPointCloudFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func checkReadable(path string) error {
	if strings.ToLower(filepath.Ext(path)) != ".las" {
		return fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	return nil
}

// Header summary of a las file
type Header struct {
	Extent       geometry.BoundingBox
	NumberPoints int
}

// Reads the header of a las file
func Describe(path string) (Header, error) {
	if err := checkReadable(path); err != nil {
		return Header{}, err
	}
	lf, err := lidario.NewLasFile(path, "rh")
	if err != nil {
		return Header{}, err
	}
	defer func() { _ = lf.Close() }()

	h := lf.Header
	return Header{
		Extent:       *geometry.NewBoundingBox(h.MinX, h.MaxX, h.MinY, h.MaxY, h.MinZ, h.MaxZ),
		NumberPoints: h.NumberPoints,
	}, nil
}

// Calls fn for every point of a las file, in file order. Iteration stops at the first error
func ForEachPoint(path string, fn func(p *data.Point) error) error {
	if err := checkReadable(path); err != nil {
		return err
	}
	lf, err := lidario.NewLasFile(path, "r")
	if err != nil {
		return err
	}
	defer func() { _ = lf.Close() }()

	for i := 0; i < lf.Header.NumberPoints; i++ {
		pointLas, err := lf.LasPoint(i)
		if err != nil {
			return err
		}
		pd := pointLas.PointData()
		if err := fn(data.NewPoint(pd.X, pd.Y, pd.Z, pd.Intensity)); err != nil {
			return err
		}
	}
	return nil
}

// Writes the points of inputPath accepted by keep to outputPath, reusing the input header.
// Returns the number of points written. When no point is kept no file is left behind
func Extract(inputPath string, outputPath string, keep func(x, y float64) bool) (int, error) {
	if err := checkReadable(inputPath); err != nil {
		return 0, err
	}
	lf, err := lidario.NewLasFile(inputPath, "r")
	if err != nil {
		return 0, err
	}
	defer func() { _ = lf.Close() }()

	newLf, err := lidario.InitializeUsingFile(outputPath, lf)
	if err != nil {
		return 0, err
	}

	written := 0
	for i := 0; i < lf.Header.NumberPoints; i++ {
		pointLas, err := lf.LasPoint(i)
		if err != nil {
			_ = newLf.Close()
			return written, err
		}
		pd := pointLas.PointData()
		if !keep(pd.X, pd.Y) {
			continue
		}
		if err := newLf.AddLasPoint(pointLas); err != nil {
			_ = newLf.Close()
			return written, err
		}
		written++
	}

	if written == 0 {
		// empty outputs are not kept
		_ = newLf.Close()
		if err := os.Remove(outputPath); err != nil && !os.IsNotExist(err) {
			glog.Warningf("cannot remove empty output %s: %v", outputPath, err)
		}
		return 0, nil
	}
	if err := newLf.Close(); err != nil {
		return written, err
	}
	return written, nil
}

// Copies a point-cloud file byte for byte. Any format is accepted
func Copy(inputPath string, outputPath string) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
