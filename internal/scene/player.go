package scene

import (
	"fmt"

	"github.com/vango-dev/dilithium/pkg/element"
	"github.com/vango-dev/dilithium/pkg/host"
	"github.com/vango-dev/dilithium/pkg/reconcile"
)

// Player replays a scene against an engine, one pass at a time.
type Player struct {
	scene    *Scene
	registry *Registry
	engine   *reconcile.Engine
	target   host.Node
	next     int
	started  bool
}

// NewPlayer creates a player rendering s into target.
func NewPlayer(s *Scene, registry *Registry, engine *reconcile.Engine, target host.Node) *Player {
	return &Player{scene: s, registry: registry, engine: engine, target: target}
}

// Start renders the initial tree.
func (p *Player) Start() error {
	if err := p.render(p.scene.Initial); err != nil {
		return fmt.Errorf("initial: %w", err)
	}
	p.started = true
	p.next = 0
	return nil
}

// Step applies the next step. It reports false once every step has run.
func (p *Player) Step() (bool, error) {
	if !p.started {
		return false, fmt.Errorf("scene %s: not started", p.scene.Name)
	}
	if p.next >= len(p.scene.Steps) {
		return false, nil
	}
	i := p.next
	p.next++

	step := p.scene.Steps[i]
	var err error
	if step.Render != nil {
		err = p.render(step.Render)
	} else {
		err = p.setState(step.SetState)
	}
	if err != nil {
		return true, fmt.Errorf("step %d: %w", i, err)
	}
	return true, nil
}

// Remaining returns the number of steps not yet applied.
func (p *Player) Remaining() int {
	return len(p.scene.Steps) - p.next
}

// Run starts the scene and applies every step.
func (p *Player) Run() error {
	if err := p.Start(); err != nil {
		return err
	}
	for {
		more, err := p.Step()
		if err != nil || !more {
			return err
		}
	}
}

func (p *Player) render(n *Node) error {
	el, err := p.registry.Element(n)
	if err != nil {
		return err
	}
	return p.engine.Render(el, p.target)
}

func (p *Player) setState(u *StateUpdate) error {
	root := p.engine.RootInstance(p.target)
	if root == nil {
		return reconcile.ErrUnknownRoot
	}
	inst := root.Find(u.Path...)
	if inst == nil {
		return fmt.Errorf("no instance at path %v", u.Path)
	}
	return inst.SetState(element.State(u.State))
}
