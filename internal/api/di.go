package api

import (
	"github.com/foxseedlab/chanharvest/internal/config"
	"github.com/foxseedlab/chanharvest/internal/harvest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		h := do.MustInvoke[*harvest.Harvester](i)
		gatherer := do.MustInvoke[prometheus.Gatherer](i)
		return NewServer(cfg.HTTPAddr, h, gatherer, cfg.HTTPArtifactRetention), nil
	})
}
