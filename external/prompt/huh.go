package prompt

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/charmbracelet/huh"
)

var (
	phonePattern = regexp.MustCompile(`^\+\d{7,15}$`)
	codePattern  = regexp.MustCompile(`^\d{5,6}$`)
)

// TerminalPrompter asks for sign-in credentials on the terminal. A phone
// number given up front is used without asking.
type TerminalPrompter struct {
	phone string
}

func NewTerminalPrompter(phone string) *TerminalPrompter {
	return &TerminalPrompter{phone: strings.TrimSpace(phone)}
}

func (p *TerminalPrompter) Phone(ctx context.Context) (string, error) {
	if p.phone != "" {
		return p.phone, nil
	}
	var phone string
	input := huh.NewInput().
		Title("Phone number").
		Description("International format, e.g. +79991234567").
		Value(&phone).
		Validate(validatePhone)
	if err := run(ctx, input); err != nil {
		return "", err
	}
	p.phone = strings.TrimSpace(phone)
	return p.phone, nil
}

func (p *TerminalPrompter) Code(ctx context.Context) (string, error) {
	var code string
	input := huh.NewInput().
		Title("Login code").
		Description("Sent to your Telegram app").
		Value(&code).
		Validate(validateCode)
	if err := run(ctx, input); err != nil {
		return "", err
	}
	return strings.TrimSpace(code), nil
}

func (p *TerminalPrompter) Password(ctx context.Context) (string, error) {
	var password string
	input := huh.NewInput().
		Title("Two-step verification password").
		EchoMode(huh.EchoModePassword).
		Value(&password)
	if err := run(ctx, input); err != nil {
		return "", err
	}
	return password, nil
}

func run(ctx context.Context, field huh.Field) error {
	err := huh.NewForm(huh.NewGroup(field)).RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return errors.New("sign-in aborted")
	}
	return err
}

func validatePhone(s string) error {
	if !phonePattern.MatchString(strings.TrimSpace(s)) {
		return errors.New("enter the number with country code, e.g. +79991234567")
	}
	return nil
}

func validateCode(s string) error {
	if !codePattern.MatchString(strings.TrimSpace(s)) {
		return errors.New("the code is 5 or 6 digits")
	}
	return nil
}
