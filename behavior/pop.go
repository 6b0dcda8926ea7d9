package behavior

import (
	"forge/block"
	"forge/types"
)

// PopOnNext marks the block complete with user-advance the first time
// onNext runs — the terminal behavior for a plain effort block driven
// entirely by the user pressing Next.
type PopOnNext struct{ block.Base }

func NewPopOnNext() PopOnNext {
	return PopOnNext{Base: block.Base{BehaviorName: "PopOnNext"}}
}

func (PopOnNext) OnNext(ctx *block.Context) ([]types.Action, error) {
	// On a container, ChildRunner owns completion: it marks the block
	// complete once its children are exhausted.
	if _, isContainer := ctx.Memory().Get(types.TagChildIndex); isContainer {
		return nil, nil
	}
	ctx.Block.MarkComplete(types.ReasonUserAdvance)
	return nil, nil
}

// PopOnEvent subscribes to a configured set of event names and marks
// the block complete with reason "external" the first time any of them
// fires — e.g. a "stop" event unwinding the whole stack.
type PopOnEvent struct {
	block.Base
	Events      []string
	Scope       types.HandlerScope
	unregisters []func()
}

func NewPopOnEvent(scope types.HandlerScope, events ...string) *PopOnEvent {
	return &PopOnEvent{Base: block.Base{BehaviorName: "PopOnEvent"}, Events: events, Scope: scope}
}

func (p *PopOnEvent) OnMount(ctx *block.Context) ([]types.Action, error) {
	for _, name := range p.Events {
		_, unregister := ctx.Bus.Register(name, func(types.Event) []types.Action {
			ctx.Block.MarkComplete(types.ReasonExternal)
			return nil
		}, ctx.Block.Key, p.Scope)
		p.unregisters = append(p.unregisters, unregister)
	}
	return nil, nil
}

func (p *PopOnEvent) OnUnmount(ctx *block.Context) ([]types.Action, error) {
	for _, unregister := range p.unregisters {
		unregister()
	}
	p.unregisters = nil
	return nil, nil
}
