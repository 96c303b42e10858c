package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedGen string

func (n namedGen) Name() string { return string(n) }

func (n namedGen) Generate(context.Context, string) (string, error) { return "{}", nil }

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(namedGen("gemini"))
	reg.Register(namedGen("chatgpt"))

	gen, err := reg.Resolve("gemini")
	require.NoError(t, err)
	assert.Equal(t, "gemini", gen.Name())

	_, err = reg.Resolve("claude")
	assert.Error(t, err)
	assert.Equal(t, []string{"chatgpt", "gemini"}, reg.Names())
}

func TestRegistrySelect(t *testing.T) {
	t.Parallel()

	gen, err := NewRegistry().Select("")
	require.NoError(t, err)
	assert.Nil(t, gen)

	single := NewRegistry()
	single.Register(namedGen("gemini"))
	gen, err = single.Select("")
	require.NoError(t, err)
	assert.Equal(t, "gemini", gen.Name())

	multi := NewRegistry()
	multi.Register(namedGen("gemini"))
	multi.Register(namedGen("chatgpt"))
	_, err = multi.Select("")
	assert.Error(t, err)

	gen, err = multi.Select("chatgpt")
	require.NoError(t, err)
	assert.Equal(t, "chatgpt", gen.Name())
}
