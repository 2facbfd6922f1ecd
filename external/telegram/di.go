package telegram

import (
	"github.com/foxseedlab/chanharvest/internal/config"
	telegrampkg "github.com/foxseedlab/chanharvest/internal/telegram"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (telegrampkg.ClientFactory, error) {
		c := do.MustInvoke[*config.Config](i)
		storage, err := newSessionStorage(c.TelegramSessionDir, c.TelegramSessionName)
		if err != nil {
			return nil, err
		}
		return func() telegrampkg.Client {
			return NewClient(c.TelegramAPIID, c.TelegramAPIHash, storage)
		}, nil
	})
}
