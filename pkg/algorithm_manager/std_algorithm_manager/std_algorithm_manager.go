package std_algorithm_manager

import (
	"github.com/ecopia-map/pointcloud_updater/internal/converters"
	"github.com/ecopia-map/pointcloud_updater/internal/converters/proj4_resolver"
	"github.com/ecopia-map/pointcloud_updater/internal/engine"
	"github.com/ecopia-map/pointcloud_updater/internal/updater"
	"github.com/ecopia-map/pointcloud_updater/pkg/algorithm_manager"
)

type StandardAlgorithmManager struct {
	options  *updater.UpdaterOptions
	resolver converters.SpatialReferenceResolver
	engine   engine.Engine
}

func NewAlgorithmManager(opts *updater.UpdaterOptions) algorithm_manager.AlgorithmManager {
	resolver := proj4_resolver.NewProj4Resolver()
	return &StandardAlgorithmManager{
		options:  opts,
		resolver: resolver,
		engine:   engine.NewStandardEngine(resolver, opts.Config.SimplifyTolerance),
	}
}

func (m *StandardAlgorithmManager) GetEngine() engine.Engine {
	return m.engine
}

func (m *StandardAlgorithmManager) GetSpatialReferenceResolver() converters.SpatialReferenceResolver {
	return m.resolver
}
