package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/go-domainprompts/pkg/llm"
)

func newTestStore(t *testing.T, path string) *BadgerCache {
	t.Helper()
	store, err := NewBadgerCache(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBadgerCache(t *testing.T) {
	for name, path := range map[string]string{"in memory": "", "on disk": t.TempDir()} {
		t.Run(name, func(t *testing.T) {
			store := newTestStore(t, path)

			_, err := store.Get("missing")
			assert.ErrorIs(t, err, ErrKeyNotFound)

			require.NoError(t, store.Set("k", []byte("v"), time.Minute))
			got, err := store.Get("k")
			require.NoError(t, err)
			assert.Equal(t, []byte("v"), got)

			require.NoError(t, store.Delete("k"))
			_, err = store.Get("k")
			assert.ErrorIs(t, err, ErrKeyNotFound)
		})
	}
}

func TestRenderKey(t *testing.T) {
	ctx := map[string]interface{}{
		"source_description": "aws_resources",
		"episode_content":    "ec2 instance i-0a1b2c3d",
	}
	same := map[string]interface{}{
		"episode_content":    "ec2 instance i-0a1b2c3d",
		"source_description": "aws_resources",
	}

	k1, err := RenderKey(1, "extract_nodes", "extract_message", ctx)
	require.NoError(t, err)
	k2, err := RenderKey(1, "extract_nodes", "extract_message", same)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)

	other, err := RenderKey(2, "extract_nodes", "extract_message", ctx)
	require.NoError(t, err)
	assert.NotEqual(t, k1, other)

	other, err = RenderKey(1, "extract_nodes", "extract_text", ctx)
	require.NoError(t, err)
	assert.NotEqual(t, k1, other)

	_, err = RenderKey(1, "extract_nodes", "extract_message", map[string]interface{}{"bad": make(chan int)})
	assert.Error(t, err)
}

func TestRenderCacheRoundTrip(t *testing.T) {
	store := newTestStore(t, "")
	rc := NewRenderCache(store, time.Minute, nil)

	_, ok := rc.Get("render:missing")
	assert.False(t, ok)

	entry := &RenderEntry{
		TemplateSet: "aws",
		Source:      "templates/aws/nodes.yaml",
		Domain:      "aws_resources",
		Messages: []llm.Message{
			llm.NewSystemMessage("sys"),
			llm.NewUserMessage("user"),
		},
	}
	require.NoError(t, rc.Put("render:k", entry))

	got, ok := rc.Get("render:k")
	require.True(t, ok)
	assert.Equal(t, entry, got)
}

func TestRenderCacheDropsCorruptEntries(t *testing.T) {
	store := newTestStore(t, "")
	rc := NewRenderCache(store, 0, nil)

	require.NoError(t, store.Set("render:bad", []byte("{not json"), 0))
	_, ok := rc.Get("render:bad")
	assert.False(t, ok)

	_, err := store.Get("render:bad")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}
