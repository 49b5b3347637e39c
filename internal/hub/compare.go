package hub

import (
	"maps"
	"slices"
)

// RouteComparison is one output's preset route next to the hub's
type RouteComparison struct {
	Output           int
	OutputLabel      string
	PresetInput      int // NoInput when the preset does not route this output
	PresetInputLabel string
	HubInput         int // NoInput when the hub does not route this output
	HubInputLabel    string
	IsDifferent      bool
}

// Compare lines up a preset's routing against the hub's, one entry per
// output present in either table, in ascending output order.
//
// Output labels come from the hub when it knows the output, otherwise from
// the preset. Input labels come from the state that holds the route.
func Compare(preset, hub *State) ([]RouteComparison, error) {
	if preset == nil {
		return nil, NewPreconditionError("no preset loaded")
	}
	if len(preset.Routing) == 0 {
		return nil, NewPreconditionError("loaded preset has no routes")
	}
	if hub == nil {
		return nil, NewPreconditionError("hub not read")
	}

	outputs := make(map[int]struct{}, len(preset.Routing)+len(hub.Routing))
	for out := range preset.Routing {
		outputs[out] = struct{}{}
	}
	for out := range hub.Routing {
		outputs[out] = struct{}{}
	}

	rows := make([]RouteComparison, 0, len(outputs))
	for _, out := range slices.Sorted(maps.Keys(outputs)) {
		pIn, hIn := preset.Route(out), hub.Route(out)
		_, pOk := preset.Routing[out]
		_, hOk := hub.Routing[out]

		outLabel := hub.OutputLabel(out)
		if outLabel == UnknownLabel {
			outLabel = preset.OutputLabel(out)
		}

		rows = append(rows, RouteComparison{
			Output:           out,
			OutputLabel:      outLabel,
			PresetInput:      pIn,
			PresetInputLabel: preset.InputLabel(pIn),
			HubInput:         hIn,
			HubInputLabel:    hub.InputLabel(hIn),
			IsDifferent:      pOk != hOk || pIn != hIn,
		})
	}
	return rows, nil
}

// CountDifferences returns how many comparisons differ
func CountDifferences(rows []RouteComparison) int {
	n := 0
	for _, r := range rows {
		if r.IsDifferent {
			n++
		}
	}
	return n
}
