package prompt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidatePhone(t *testing.T) {
	require.NoError(t, validatePhone("+79991234567"))
	require.NoError(t, validatePhone(" +14155550100 "))
	require.Error(t, validatePhone("89991234567"))
	require.Error(t, validatePhone("+7 999 123"))
	require.Error(t, validatePhone(""))
}

func TestValidateCode(t *testing.T) {
	require.NoError(t, validateCode("12345"))
	require.NoError(t, validateCode("123456"))
	require.Error(t, validateCode("1234"))
	require.Error(t, validateCode("abcde"))
}

func TestTerminalPrompter_PresetPhoneSkipsPrompt(t *testing.T) {
	phone, err := NewTerminalPrompter(" +79991234567 ").Phone(context.Background())
	require.NoError(t, err)
	require.Equal(t, "+79991234567", phone)
}
