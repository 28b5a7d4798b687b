package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	text   string
	err    error
	prompt string
	closed bool
}

func (c *fakeClient) GenerateContent(_ context.Context, prompt string) (string, error) {
	c.prompt = prompt
	return c.text, c.err
}

func (c *fakeClient) Close() error {
	c.closed = true
	return nil
}

func newTestGenerator(keys []string, client *fakeClient, factoryErr error) (*Generator, *[]string) {
	var usedKeys []string
	g := NewGenerator(DefaultConfig(), NewKeyPool(keys), WithClientFactory(
		func(_ context.Context, apiKey string) (Client, error) {
			usedKeys = append(usedKeys, apiKey)
			if factoryErr != nil {
				return nil, factoryErr
			}
			return client, nil
		},
	))
	return g, &usedKeys
}

func TestGenerator_Success(t *testing.T) {
	client := &fakeClient{text: "  Your feed is beige.\n"}
	g, used := newTestGenerator([]string{"pool-key"}, client, nil)

	text, err := g.Generate(context.Background(), "roast me", "")
	require.NoError(t, err)

	assert.Equal(t, "Your feed is beige.", text)
	assert.Equal(t, "roast me", client.prompt)
	assert.Equal(t, []string{"pool-key"}, *used)
	assert.True(t, client.closed)
}

func TestGenerator_OverrideKey(t *testing.T) {
	g, used := newTestGenerator([]string{"pool-key"}, &fakeClient{text: "ok"}, nil)

	_, err := g.Generate(context.Background(), "p", "caller-key")
	require.NoError(t, err)
	assert.Equal(t, []string{"caller-key"}, *used)
}

func TestGenerator_NoCredentials(t *testing.T) {
	g, used := newTestGenerator(nil, &fakeClient{}, nil)

	_, err := g.Generate(context.Background(), "p", "")
	assert.ErrorIs(t, err, ErrNoCredentials)

	var genErr *GenerationError
	assert.False(t, errors.As(err, &genErr))
	assert.Empty(t, *used)
}

func TestGenerator_UpstreamError(t *testing.T) {
	upstream := errors.New("googleapi: Error 400: API key not valid")
	client := &fakeClient{err: upstream}
	g, _ := newTestGenerator([]string{"k"}, client, nil)

	_, err := g.Generate(context.Background(), "p", "")
	require.Error(t, err)

	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, upstream.Error(), genErr.Error())
	assert.ErrorIs(t, err, upstream)
	assert.True(t, client.closed)
}

func TestGenerator_FactoryError(t *testing.T) {
	g, _ := newTestGenerator([]string{"k"}, nil, errors.New("dial failed"))

	_, err := g.Generate(context.Background(), "p", "")

	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, "dial failed", genErr.Message)
}
