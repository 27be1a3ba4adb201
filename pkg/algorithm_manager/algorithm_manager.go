package algorithm_manager

import (
	"github.com/ecopia-map/pointcloud_updater/internal/converters"
	"github.com/ecopia-map/pointcloud_updater/internal/engine"
)

type AlgorithmManager interface {
	GetEngine() engine.Engine
	GetSpatialReferenceResolver() converters.SpatialReferenceResolver
}
