package data

import (
	"sort"
	"sync"

	"github.com/golang/glog"
)

// Collects tile warnings raised by concurrent workers
type WarningCollector struct {
	warnings []TileProcessingWarning
	sync.Mutex
}

func NewWarningCollector() *WarningCollector {
	return &WarningCollector{warnings: make([]TileProcessingWarning, 0)}
}

func (c *WarningCollector) Add(w TileProcessingWarning) {
	glog.Warningln(w.Error())
	c.Lock()
	c.warnings = append(c.warnings, w)
	c.Unlock()
}

// Returns the warnings by descending tile id, the order tiles are processed in
func (c *WarningCollector) List() []TileProcessingWarning {
	c.Lock()
	defer c.Unlock()
	out := make([]TileProcessingWarning, len(c.warnings))
	copy(out, c.warnings)
	sort.SliceStable(out, func(i, j int) bool { return out[i].TileID > out[j].TileID })
	return out
}

func (c *WarningCollector) Len() int {
	c.Lock()
	defer c.Unlock()
	return len(c.warnings)
}
