package prompt

import (
	"github.com/foxseedlab/chanharvest/internal/config"
	"github.com/foxseedlab/chanharvest/internal/telegram"
	"github.com/samber/do/v2"
)

// RegisterDI registers the terminal prompter as the sign-in authenticator.
// Only front ends attached to a terminal call it.
func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (telegram.Authenticator, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewTerminalPrompter(c.TelegramPhone), nil
	})
}
