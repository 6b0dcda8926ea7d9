package behavior

import (
	"forge/block"
	"forge/types"
)

// ControlsInit allocates `controls` memory with the button list a
// block's compiled shape calls for (e.g. a pause/resume pair on a
// timer, a skip button on an effort block). On unmount it clears the
// button list so a disposed block's UI controls disappear with it.
type ControlsInit struct {
	block.Base
	Buttons []types.ControlButton
}

func NewControlsInit(buttons []types.ControlButton) ControlsInit {
	return ControlsInit{Base: block.Base{BehaviorName: "ControlsInit"}, Buttons: buttons}
}

func (c ControlsInit) OnMount(ctx *block.Context) ([]types.Action, error) {
	ctx.Memory().Allocate(types.TagControls, types.ControlsState{Buttons: c.Buttons}, types.VisibilityPrivate)
	return nil, nil
}

func (c ControlsInit) OnUnmount(ctx *block.Context) ([]types.Action, error) {
	ctx.Memory().Set(types.TagControls, types.ControlsState{})
	return nil, nil
}

// ButtonEvent binds each control button's event name to a handler that
// invokes the caller-supplied action for that button id, so pressing a
// button (an external Dispatch of the button's event name) produces
// real Actions rather than only being a UI affordance.
type ButtonEvent struct {
	block.Base
	OnPress      map[string]func(ctx *block.Context) []types.Action
	unregisters  []func()
}

func NewButtonEvent(onPress map[string]func(ctx *block.Context) []types.Action) *ButtonEvent {
	return &ButtonEvent{Base: block.Base{BehaviorName: "ButtonEvent"}, OnPress: onPress}
}

func (b *ButtonEvent) OnMount(ctx *block.Context) ([]types.Action, error) {
	cs, ok := ctx.Memory().GetControls()
	if !ok {
		return nil, nil
	}
	for _, button := range cs.Buttons {
		fn, bound := b.OnPress[button.ID]
		if !bound {
			continue
		}
		capturedCtx, capturedFn := ctx, fn
		_, unregister := ctx.Bus.Register(button.Event, func(types.Event) []types.Action {
			return capturedFn(capturedCtx)
		}, ctx.Block.Key, types.ScopeActive)
		b.unregisters = append(b.unregisters, unregister)
	}
	return nil, nil
}

func (b *ButtonEvent) OnUnmount(ctx *block.Context) ([]types.Action, error) {
	for _, unregister := range b.unregisters {
		unregister()
	}
	b.unregisters = nil
	return nil, nil
}
