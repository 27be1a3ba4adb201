package data

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWarningCollectorListsByDescendingTile(t *testing.T) {
	c := NewWarningCollector()
	var wg sync.WaitGroup
	for id := 0; id < 8; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			c.Add(TileProcessingWarning{TileID: id, Message: "no points"})
		}(id)
	}
	wg.Wait()

	list := c.List()
	assert.Equal(t, 8, c.Len())
	for i, w := range list {
		assert.Equal(t, 7-i, w.TileID)
	}
}

func TestWarningMessages(t *testing.T) {
	assert.Equal(t, "tile 3: empty region", TileProcessingWarning{TileID: 3, Message: "empty region"}.Error())
	assert.Equal(t, "tile 3 (a.las): empty region", TileProcessingWarning{TileID: 3, Path: "a.las", Message: "empty region"}.Error())
}
