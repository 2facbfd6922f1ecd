package harvest

import (
	"github.com/foxseedlab/chanharvest/internal/config"
	"github.com/foxseedlab/chanharvest/internal/metrics"
	"github.com/foxseedlab/chanharvest/internal/repository"
	"github.com/foxseedlab/chanharvest/internal/spreadsheet"
	"github.com/foxseedlab/chanharvest/internal/telegram"
	"github.com/foxseedlab/chanharvest/internal/webhook"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Harvester, error) {
		cfg := do.MustInvoke[*config.Config](i)
		newClient := do.MustInvoke[telegram.ClientFactory](i)
		writer := do.MustInvoke[spreadsheet.Writer](i)
		repo := do.MustInvoke[repository.Repository](i)
		wh := do.MustInvoke[webhook.Sender](i)
		m := do.MustInvoke[*metrics.Metrics](i)

		var opts []Option
		// Only interactive front ends register an authenticator.
		if auth, err := do.Invoke[telegram.Authenticator](i); err == nil {
			opts = append(opts, WithAuthenticator(auth))
		}
		return NewHarvester(cfg, newClient, writer, repo, wh, m, opts...), nil
	})
}
