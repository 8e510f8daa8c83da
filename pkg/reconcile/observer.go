package reconcile

import "github.com/vango-dev/dilithium/pkg/host"

// PassKind is what started a pass.
type PassKind uint8

const (
	PassRender   PassKind = iota + 1 // Engine.Render
	PassUpdate                       // Instance.ForceUpdate
	PassSetState                     // Instance.SetState
	PassRelease                      // Engine.Release
)

// String returns the string representation of the PassKind.
func (k PassKind) String() string {
	switch k {
	case PassRender:
		return "render"
	case PassUpdate:
		return "update"
	case PassSetState:
		return "setState"
	case PassRelease:
		return "release"
	default:
		return "unknown"
	}
}

// Pass identifies one synchronous run through the engine.
type Pass struct {
	ID     uint64
	Parent uint64 // ID of the enclosing pass, 0 at top level
	Kind   PassKind
	Root   uint64
}

// Observer is notified as passes run. Calls happen synchronously on the
// goroutine running the pass.
type Observer interface {
	PassStart(p Pass)
	PassEnd(p Pass, err error)

	// Mounted is called after inst and its subtree are mounted.
	Mounted(p Pass, inst *Instance)

	// Unmounted is called after inst and its subtree are unmounted.
	Unmounted(p Pass, inst *Instance)

	// Operations is called after ops were applied to parent.
	Operations(p Pass, parent host.Node, ops []host.Operation)
}

// BaseObserver implements Observer with no-ops. Embed it to override
// only some methods.
type BaseObserver struct{}

func (BaseObserver) PassStart(Pass) {}
func (BaseObserver) PassEnd(Pass, error) {}
func (BaseObserver) Mounted(Pass, *Instance) {}
func (BaseObserver) Unmounted(Pass, *Instance) {}
func (BaseObserver) Operations(Pass, host.Node, []host.Operation) {}

// MultiObserver fans out to each observer in order.
type MultiObserver []Observer

func (m MultiObserver) PassStart(p Pass) {
	for _, o := range m {
		o.PassStart(p)
	}
}

func (m MultiObserver) PassEnd(p Pass, err error) {
	for _, o := range m {
		o.PassEnd(p, err)
	}
}

func (m MultiObserver) Mounted(p Pass, inst *Instance) {
	for _, o := range m {
		o.Mounted(p, inst)
	}
}

func (m MultiObserver) Unmounted(p Pass, inst *Instance) {
	for _, o := range m {
		o.Unmounted(p, inst)
	}
}

func (m MultiObserver) Operations(p Pass, parent host.Node, ops []host.Operation) {
	for _, o := range m {
		o.Operations(p, parent, ops)
	}
}

// Batch is one sibling group's operations.
type Batch struct {
	Pass   Pass
	Parent host.Node
	Ops    []host.Operation
}

// PassResult is a finished pass and its error.
type PassResult struct {
	Pass Pass
	Err  error
}

// Recorder is an Observer that keeps everything it sees.
type Recorder struct {
	Passes   []PassResult
	Batches  []Batch
	Mounts   []*Instance
	Unmounts []*Instance
}

func (r *Recorder) PassStart(Pass) {}

func (r *Recorder) PassEnd(p Pass, err error) {
	r.Passes = append(r.Passes, PassResult{Pass: p, Err: err})
}

func (r *Recorder) Mounted(_ Pass, inst *Instance) {
	r.Mounts = append(r.Mounts, inst)
}

func (r *Recorder) Unmounted(_ Pass, inst *Instance) {
	r.Unmounts = append(r.Unmounts, inst)
}

func (r *Recorder) Operations(p Pass, parent host.Node, ops []host.Operation) {
	r.Batches = append(r.Batches, Batch{
		Pass:   p,
		Parent: parent,
		Ops:    append([]host.Operation(nil), ops...),
	})
}

// Ops returns every recorded operation in emission order.
func (r *Recorder) Ops() []host.Operation {
	var out []host.Operation
	for _, b := range r.Batches {
		out = append(out, b.Ops...)
	}
	return out
}

// Reset clears everything recorded.
func (r *Recorder) Reset() {
	*r = Recorder{}
}

var (
	_ Observer = BaseObserver{}
	_ Observer = MultiObserver(nil)
	_ Observer = (*Recorder)(nil)
)
