package tracker

import "github.com/ogulcanaydogan/slotwatch/pkg/model"

// Detect classifies the change from prev to cur. Only the slot count is
// compared: a new earliest date with the same count is still Unchanged.
func Detect(prev *model.Observation, cur model.Observation) model.Transition {
	switch {
	case prev == nil:
		return model.TransitionBaseline
	case prev.Slots == 0 && cur.Slots > 0:
		return model.TransitionOpened
	case cur.Slots > prev.Slots && cur.Slots > 0:
		return model.TransitionIncreased
	default:
		return model.TransitionUnchanged
	}
}
