package data

import (
	"fmt"
	"strings"
)

// Raised when two datasets do not share coordinate system, linear unit or vertical datum
type ReferenceMismatchError struct {
	Property string
	Source   string
	Update   string
}

func (e *ReferenceMismatchError) Error() string {
	return fmt.Sprintf("%s is not consistent between datasets: source=%q update=%q; reproject the data so both datasets share the same spatial reference",
		e.Property, e.Source, e.Update)
}

// Raised when a directory or dataset holds more than one point-cloud file format
type MixedFormatError struct {
	Location   string
	Extensions []string
}

func (e *MixedFormatError) Error() string {
	return fmt.Sprintf("detected more than one las format in %s: [%s]", e.Location, strings.Join(e.Extensions, ","))
}

// Raised when the source and update datasets do not intersect
type NoOverlapError struct {
	Source string
	Update string
}

func (e *NoOverlapError) Error() string {
	return fmt.Sprintf("the two las datasets do not intersect (source=%s update=%s), nothing to reconcile", e.Source, e.Update)
}

// Raised when the engine lacks a capability the run requires
type LicenseUnavailableError struct {
	Capability string
}

func (e *LicenseUnavailableError) Error() string {
	return fmt.Sprintf("%s capability is unavailable", e.Capability)
}

// Wraps a failure of an underlying geometry, raster or extraction call
type EngineExecutionError struct {
	Operation string
	Err       error
}

func (e *EngineExecutionError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

func (e *EngineExecutionError) Unwrap() error {
	return e.Err
}

func NewEngineExecutionError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return &EngineExecutionError{Operation: operation, Err: err}
}

// Non fatal issue on a single tile, region or grid cell. Collected and reported at the end of a run
type TileProcessingWarning struct {
	TileID  int
	Path    string
	Message string
}

func (w TileProcessingWarning) Error() string {
	if w.Path != "" {
		return fmt.Sprintf("tile %d (%s): %s", w.TileID, w.Path, w.Message)
	}
	return fmt.Sprintf("tile %d: %s", w.TileID, w.Message)
}
