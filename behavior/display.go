package behavior

import (
	"forge/block"
	"forge/types"
)

// DisplayInit allocates `display` memory with a static mode/label pair
// computed at compile time (e.g. an effort block's label).
type DisplayInit struct {
	block.Base
	Mode  string
	Label string
}

func NewDisplayInit(mode, label string) DisplayInit {
	return DisplayInit{Base: block.Base{BehaviorName: "DisplayInit"}, Mode: mode, Label: label}
}

func (d DisplayInit) OnMount(ctx *block.Context) ([]types.Action, error) {
	ctx.Memory().Allocate(types.TagDisplay, types.DisplayState{Mode: d.Mode, Label: d.Label}, types.VisibilityPrivate)
	return nil, nil
}
