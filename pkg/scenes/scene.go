package scenes

import (
	"github.com/decker502/arena/pkg/game"
)

// Scene 场景接口的别名，所有场景都实现 game.Scene
type Scene = game.Scene

var _ Scene = (*ArenaScene)(nil)
