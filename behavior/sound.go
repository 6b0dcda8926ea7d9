package behavior

import (
	"forge/block"
	"forge/types"
)

// SoundCue emits sound-fragment milestones at three points: once on
// mount if a start cue is configured, once per second during a
// countdown window while the block's timer runs (deduplicated so a
// tick storm within the same second never double-fires), and once on
// unmount for a completion cue.
type SoundCue struct {
	block.Base
	MountCue        *types.Fragment
	CountdownAt     []int // seconds remaining at which to cue, e.g. [3, 2, 1]
	UnmountCue      *types.Fragment
	unregister      func()
	lastFiredSecond int
}

func NewSoundCue(mountCue, unmountCue *types.Fragment, countdownAt []int) *SoundCue {
	return &SoundCue{
		Base:            block.Base{BehaviorName: "SoundCue"},
		MountCue:        mountCue,
		CountdownAt:     countdownAt,
		UnmountCue:      unmountCue,
		lastFiredSecond: -1,
	}
}

func (s *SoundCue) OnMount(ctx *block.Context) ([]types.Action, error) {
	var actions []types.Action
	if s.MountCue != nil {
		actions = append(actions, ctx.EmitOutput(types.OutputMilestone, []types.Fragment{*s.MountCue}, nil))
	}

	if len(s.CountdownAt) > 0 {
		_, unregister := ctx.Bus.Register(types.EventTick, func(ev types.Event) []types.Action {
			h := ctx.Memory()
			ts, ok := h.GetTimer()
			if !ok || ts.DurationMs == nil {
				return nil
			}
			remainingSec := int(ts.Remaining(ev.Timestamp) / 1000)
			if remainingSec == s.lastFiredSecond {
				return nil
			}
			for _, cue := range s.CountdownAt {
				if cue == remainingSec {
					s.lastFiredSecond = remainingSec
					fragment := types.Fragment{Kind: types.FragmentSound, Label: "countdown", Count: cue}
					return []types.Action{ctx.EmitOutput(types.OutputMilestone, []types.Fragment{fragment}, nil)}
				}
			}
			return nil
		}, ctx.Block.Key, types.ScopeActive)
		s.unregister = unregister
	}

	return actions, nil
}

func (s *SoundCue) OnUnmount(ctx *block.Context) ([]types.Action, error) {
	if s.unregister != nil {
		s.unregister()
	}
	if s.UnmountCue == nil {
		return nil, nil
	}
	return []types.Action{ctx.EmitOutput(types.OutputMilestone, []types.Fragment{*s.UnmountCue}, nil)}, nil
}
