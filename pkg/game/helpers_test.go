package game

import (
	"fmt"
	"testing"
	"time"

	"github.com/quasilyte/gdata/v2"
	"github.com/stretchr/testify/require"
)

// openTestStorage 在临时 HOME 下打开一个独立的 gdata 存储
func openTestStorage(t *testing.T, name string) *gdata.Manager {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", "")

	manager, err := gdata.Open(gdata.Config{
		AppName: fmt.Sprintf("arena_test_%s_%d", name, time.Now().UnixNano()),
	})
	require.NoError(t, err)
	return manager
}
