package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ecopia-map/pointcloud_updater/internal/geometry"
)

func TestCellClipOwnsSharedEdgesOnce(t *testing.T) {
	box := geometry.BoundingBox{Xmax: 10, Ymax: 10}
	inner := &CellClip{Box: box}
	last := &CellClip{Box: box, ClosedMaxX: true, ClosedMaxY: true}

	assert.True(t, inner.Contains(0, 0))
	assert.True(t, inner.Contains(5, 5))
	assert.False(t, inner.Contains(10, 5))
	assert.False(t, inner.Contains(5, 10))
	assert.True(t, last.Contains(10, 10))
	assert.False(t, last.Contains(10.001, 10))
	assert.False(t, last.Contains(-0.001, 3))
	assert.Equal(t, box, last.Bounds())
}

func TestRegionClipIncludesEdges(t *testing.T) {
	clip := NewRegionClip(geometry.Rectangle(0, 0, 4, 2))

	assert.True(t, clip.Contains(2, 1))
	assert.True(t, clip.Contains(4, 2))
	assert.False(t, clip.Contains(4.5, 1))
	assert.Equal(t, geometry.BoundingBox{Xmax: 4, Ymax: 2}, clip.Bounds())
}
