package components

import "github.com/decker502/arena/pkg/types"

// EntityComponent 所有模拟实体的基础记录
// Active=false 的实体不再参与任何模拟，只等待帧末清理
type EntityComponent struct {
	Kind   types.EntityKind
	Active bool
}
