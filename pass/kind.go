// Package pass provides the fluent pass-declaration builder: a pass
// states its category buckets of (handle, range) reads/writes, and
// Finalize turns those into a per-resource ResourceRequirement list
// by folding every bucket through a fresh, resource-local tracker.
package pass

// QueueKind names one of the three asynchronous queues the compiler
// schedules across.
type QueueKind uint8

const (
	QueueGraphics QueueKind = iota
	QueueCompute
	QueueCopy
)

func (q QueueKind) String() string {
	switch q {
	case QueueGraphics:
		return "graphics"
	case QueueCompute:
		return "compute"
	case QueueCopy:
		return "copy"
	default:
		return "unknown"
	}
}

// Kind is the closed sum of pass kinds. The compiler switches on Kind
// for queue mapping and requirement derivation; there is no open
// class hierarchy (§9 design notes).
type Kind uint8

const (
	KindRender Kind = iota
	KindCompute
	KindCopy
)

func (k Kind) String() string {
	switch k {
	case KindRender:
		return "render"
	case KindCompute:
		return "compute"
	case KindCopy:
		return "copy"
	default:
		return "unknown"
	}
}

// DefaultQueue returns the queue a pass of this kind prefers absent an
// explicit override.
func (k Kind) DefaultQueue() QueueKind {
	switch k {
	case KindCompute:
		return QueueCompute
	case KindCopy:
		return QueueCopy
	default:
		return QueueGraphics
	}
}
