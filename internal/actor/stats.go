package actor

import "time"

// RecordKind says which stage of an action produced a record.
type RecordKind int

const (
	RecordExecute RecordKind = iota
	RecordImpact
	RecordTick
)

// Result is the outcome of a resolution roll.
type Result int

const (
	ResultNone Result = iota
	ResultMiss
	ResultHit
	ResultCrit
)

func (r Result) String() string {
	switch r {
	case ResultMiss:
		return "MISS"
	case ResultHit:
		return "HIT"
	case ResultCrit:
		return "CRIT"
	default:
		return "NONE"
	}
}

// Record is one accounting entry emitted by an action.
type Record struct {
	Time   time.Duration
	Actor  string
	Action string
	Target string
	Kind   RecordKind
	Result Result
	Amount float64
}

// StatsSink receives accounting records. Implementations must not touch
// simulation state.
type StatsSink interface {
	Record(r Record)
}

type discardSink struct{}

func (discardSink) Record(Record) {}
