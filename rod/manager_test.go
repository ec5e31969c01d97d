//go:build integration

package rod_test

import (
	"testing"

	"github.com/fwojciec/serp"
	"github.com/fwojciec/serp/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowserManager_RecyclesBrowserAfterMaxPages(t *testing.T) {
	t.Parallel()

	manager, err := rod.NewBrowserManager(rod.WithMaxPages(3))
	require.NoError(t, err)
	defer manager.Close()

	first, err := manager.Acquire()
	require.NoError(t, err)
	manager.Release()
	for range 2 {
		_, err := manager.Acquire()
		require.NoError(t, err)
		manager.Release()
	}
	assert.Equal(t, int64(3), manager.PageCount())

	second, err := manager.Acquire()
	require.NoError(t, err)
	defer manager.Release()

	assert.NotSame(t, first, second)
	assert.Equal(t, int64(1), manager.PageCount())
}

func TestBrowserManager_DoesNotRecycleBeforeMaxPages(t *testing.T) {
	t.Parallel()

	manager, err := rod.NewBrowserManager(rod.WithMaxPages(5))
	require.NoError(t, err)
	defer manager.Close()

	first, err := manager.Acquire()
	require.NoError(t, err)
	manager.Release()

	same, err := manager.Acquire()
	require.NoError(t, err)
	manager.Release()

	assert.Same(t, first, same)
}

func TestBrowserManager_DoesNotRecycleWhileLeased(t *testing.T) {
	t.Parallel()

	manager, err := rod.NewBrowserManager(rod.WithMaxPages(1))
	require.NoError(t, err)
	defer manager.Close()

	first, err := manager.Acquire()
	require.NoError(t, err)

	// Limit reached, but the first lease is still held.
	second, err := manager.Acquire()
	require.NoError(t, err)
	assert.Same(t, first, second)

	manager.Release()
	manager.Release()

	third, err := manager.Acquire()
	require.NoError(t, err)
	defer manager.Release()
	assert.NotSame(t, first, third)
}

func TestBrowserManager_AcquireAfterClose_ReturnsError(t *testing.T) {
	t.Parallel()

	manager, err := rod.NewBrowserManager()
	require.NoError(t, err)
	require.NoError(t, manager.Close())
	require.NoError(t, manager.Close())

	_, err = manager.Acquire()

	require.Error(t, err)
	assert.Equal(t, serp.EINVALID, serp.ErrorCode(err))
	assert.Contains(t, serp.ErrorMessage(err), "closed")
}
