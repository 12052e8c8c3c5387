package systems

import (
	"container/heap"
	"log"

	"github.com/decker502/arena/pkg/components"
	"github.com/decker502/arena/pkg/ecs"
)

// scheduledEvent 一个按模拟时间到期的延迟回调
type scheduledEvent struct {
	deadline float64
	seq      uint64 // 同一截止时间按登记顺序触发
	target   ecs.EntityID
	label    string
	fn       func()
}

// eventQueue 按 (deadline, seq) 排序的最小堆
type eventQueue []*scheduledEvent

func (q eventQueue) Len() int { return len(q) }
func (q eventQueue) Less(i, j int) bool {
	if q[i].deadline != q[j].deadline {
		return q[i].deadline < q[j].deadline
	}
	return q[i].seq < q[j].seq
}
func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *eventQueue) Push(x any)   { *q = append(*q, x.(*scheduledEvent)) }
func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	ev := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return ev
}

// Scheduler 模拟时间上的延迟事件队列
//
// 刷怪错开、Boss 击败后的清理等延迟逻辑都登记在这里，
// 每个 tick 检查一次到期事件，和其他系统处在同一条时间线上。
// 目标实体在到期前已被删除或失活时，事件被静默丢弃（隐式取消）。
type Scheduler struct {
	em    *ecs.EntityManager
	clock func() float64
	queue eventQueue
	seq   uint64
}

// NewScheduler 创建调度器
//
// 参数:
//   - em: 实体管理器（用于到期时检查目标实体是否仍然有效）
//   - clock: 返回当前模拟时间
func NewScheduler(em *ecs.EntityManager, clock func() float64) *Scheduler {
	return &Scheduler{em: em, clock: clock}
}

// Schedule 登记一个 delay 秒后触发的回调
//
// 参数:
//   - delay: 延迟（秒），负数视为 0
//   - target: 事件依附的实体，0 表示不依附任何实体
//   - label: 日志用标签
//   - fn: 回调
func (s *Scheduler) Schedule(delay float64, target ecs.EntityID, label string, fn func()) {
	if fn == nil {
		return
	}
	if delay < 0 {
		delay = 0
	}
	s.seq++
	heap.Push(&s.queue, &scheduledEvent{
		deadline: s.clock() + delay,
		seq:      s.seq,
		target:   target,
		label:    label,
		fn:       fn,
	})
}

// Update 触发所有已到期的事件
// 回调中新登记且已经到期的事件在同一次 Update 中触发
func (s *Scheduler) Update() {
	now := s.clock()
	for s.queue.Len() > 0 && s.queue[0].deadline <= now {
		ev := heap.Pop(&s.queue).(*scheduledEvent)
		if ev.target != 0 && !s.targetAlive(ev.target) {
			log.Printf("[Scheduler] Dropped event %q: target %d is gone", ev.label, ev.target)
			continue
		}
		ev.fn()
	}
}

// targetAlive 目标实体存在、未标记删除且处于激活状态
func (s *Scheduler) targetAlive(id ecs.EntityID) bool {
	if !s.em.Exists(id) || s.em.IsMarkedForDestroy(id) {
		return false
	}
	if ec, ok := ecs.GetComponent[*components.EntityComponent](s.em, id); ok && !ec.Active {
		return false
	}
	return true
}

// Pending 尚未触发的事件数量
func (s *Scheduler) Pending() int {
	return s.queue.Len()
}

// PendingWithLabel 尚未触发的指定标签事件数量
func (s *Scheduler) PendingWithLabel(label string) int {
	n := 0
	for _, ev := range s.queue {
		if ev.label == label {
			n++
		}
	}
	return n
}

// Clear 丢弃所有尚未触发的事件（关卡切换时使用）
func (s *Scheduler) Clear() {
	s.queue = s.queue[:0]
}
