package telegram

import (
	"context"
	"errors"

	telegrampkg "github.com/foxseedlab/chanharvest/internal/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
)

var errSignUpUnsupported = errors.New("telegram: account does not exist; sign up in an official client first")

// userAuthenticator adapts telegrampkg.Authenticator to the gotd auth flow.
type userAuthenticator struct {
	auth telegrampkg.Authenticator
}

var _ auth.UserAuthenticator = userAuthenticator{}

func (a userAuthenticator) Phone(ctx context.Context) (string, error) {
	return a.auth.Phone(ctx)
}

func (a userAuthenticator) Password(ctx context.Context) (string, error) {
	return a.auth.Password(ctx)
}

func (a userAuthenticator) Code(ctx context.Context, _ *tg.AuthSentCode) (string, error) {
	return a.auth.Code(ctx)
}

func (userAuthenticator) AcceptTermsOfService(context.Context, tg.HelpTermsOfService) error {
	return errSignUpUnsupported
}

func (userAuthenticator) SignUp(context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, errSignUpUnsupported
}
