package blockpath

import "blockpath/block"

// NopFlowCostOverlay is a FlowCostOverlay that contributes no crowd-bias
// or scripted cost, for callers that don't need either.
type NopFlowCostOverlay struct{}

func (NopFlowCostOverlay) FlowCost(x, z int32, moveClass int, dir block.Dir) float32 { return 0 }
func (NopFlowCostOverlay) ExtraCost(x, z int32, synced bool) float32                 { return 0 }
