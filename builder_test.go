package llmchain

import (
	"errors"
	"testing"
	"time"

	"github.com/casualjim/llmchain/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnknownBackend(t *testing.T) {
	p, err := New(Backend("carrier-pigeon"))
	require.Error(t, err)
	assert.Nil(t, p)

	var cerr *provider.ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Message, "carrier-pigeon")
}

func TestNewRequiresAPIKey(t *testing.T) {
	for _, backend := range []Backend{OpenAI, Anthropic, XAI} {
		t.Run(string(backend), func(t *testing.T) {
			p, err := New(backend, WithModel("some-model"))
			require.Error(t, err)
			assert.Nil(t, p)

			var cerr *provider.ConfigError
			require.ErrorAs(t, err, &cerr)
			assert.Contains(t, cerr.Message, "API key")
		})
	}
}

func TestNewOllamaNeedsNoKey(t *testing.T) {
	p, err := New(Ollama, WithModel("mistral"), WithTimeout(30*time.Second))
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "ollama", p.Name())
}

func TestNewEveryBackendRegistered(t *testing.T) {
	for _, backend := range []Backend{OpenAI, Anthropic, Ollama, XAI} {
		_, ok := backends[backend]
		assert.True(t, ok, "backend %q missing from table", backend)
	}
}

func TestNewWithValidatorWrapsProvider(t *testing.T) {
	p, err := New(Ollama, WithValidator(func(string) error { return nil }, 3))
	require.NoError(t, err)
	require.NotNil(t, p)
	// The decorator preserves the backend identity of what it wraps.
	assert.Equal(t, "ollama", p.Name())
}

func TestNewWithValidatorRejectsBadAttempts(t *testing.T) {
	p, err := New(Ollama, WithValidator(func(string) error { return errors.New("no") }, 0))
	require.Error(t, err)
	assert.Nil(t, p)

	var cerr *provider.ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Message, "attempts")
}
