package embedded

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"data/arena.yaml":          {Data: []byte("tickRate: 60\n")},
		"data/levels/level-1.yaml": {Data: []byte("id: \"1\"\n")},
		"data/levels/level-2.yaml": {Data: []byte("id: \"2\"\n")},
		"other/secret.txt":         {Data: []byte("x")},
	}
}

// withFS 初始化测试文件系统，测试结束后恢复未初始化状态
func withFS(t *testing.T, fsys fs.FS) {
	t.Helper()
	Init(fsys)
	t.Cleanup(func() {
		dataFS = nil
		initialized = false
	})
}

func TestNotInitialized(t *testing.T) {
	dataFS, initialized = nil, false
	assert.False(t, IsInitialized())

	_, err := ReadFile("data/arena.yaml")
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = Open("data/arena.yaml")
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = Sub("data")
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.False(t, Exists("data/arena.yaml"))

	Init(nil)
	assert.False(t, IsInitialized(), "nil 文件系统不算初始化")
}

func TestReadFile(t *testing.T) {
	withFS(t, testFS())
	require.True(t, IsInitialized())

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{"普通路径", "data/arena.yaml", "tickRate: 60\n", false},
		{"./ 前缀", "./data/arena.yaml", "tickRate: 60\n", false},
		{"子目录", "data/levels/level-1.yaml", "id: \"1\"\n", false},
		{"不存在", "data/missing.yaml", "", true},
		{"未知前缀", "other/secret.txt", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadFile(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestDirectoryHelpers(t *testing.T) {
	withFS(t, testFS())

	t.Run("Glob", func(t *testing.T) {
		matches, err := Glob("data/levels/level-*.yaml")
		require.NoError(t, err)
		assert.Equal(t, []string{"data/levels/level-1.yaml", "data/levels/level-2.yaml"}, matches)
	})

	t.Run("ReadDir", func(t *testing.T) {
		entries, err := ReadDir("data/levels")
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("Sub", func(t *testing.T) {
		sub, err := Sub("data")
		require.NoError(t, err)
		data, err := fs.ReadFile(sub, "levels/level-2.yaml")
		require.NoError(t, err)
		assert.Equal(t, "id: \"2\"\n", string(data))
	})

	t.Run("Exists 和 Stat", func(t *testing.T) {
		assert.True(t, Exists("data/arena.yaml"))
		assert.False(t, Exists("data/none.yaml"))

		info, err := Stat("data/arena.yaml")
		require.NoError(t, err)
		assert.Equal(t, "arena.yaml", info.Name())
	})
}
