package translate

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/smsrelay/internal/cmd/application"
	"github.com/agentstation/smsrelay/internal/translate"
)

type failing struct{}

func (failing) Translate(context.Context, translate.Request) (string, error) {
	return "", errors.New("backend down")
}
func (failing) Name() string  { return "failing" }
func (failing) Model() string { return "" }

func run(t *testing.T, mock *application.Mock, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand(mock)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func failingMock() *application.Mock {
	return &application.Mock{
		TranslatorFunc: func(context.Context) (*translate.Router, error) {
			return translate.NewRouter(failing{}, nil, nil), nil
		},
	}
}

func TestTranslate_Identity(t *testing.T) {
	out, err := run(t, &application.Mock{}, "--to", "es", "see", "you")
	require.NoError(t, err)
	assert.Equal(t, "see you\n", out)
}

func TestTranslate_FallsBackToOriginal(t *testing.T) {
	out, err := run(t, failingMock(), "--to", "es", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
}

func TestTranslate_StrictFails(t *testing.T) {
	_, err := run(t, failingMock(), "--to", "es", "--strict", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend down")
}

func TestTranslate_RequiresTarget(t *testing.T) {
	_, err := run(t, &application.Mock{}, "hello")
	require.Error(t, err)
}
