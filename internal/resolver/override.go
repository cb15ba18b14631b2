package resolver

import (
	"sync"

	"github.com/yukia3e/gas-fee-resolver/internal/domain/model"
)

// OverrideState holds a user's manual gas entry for one confirmation session.
// Resolutions read it through Snapshot so they never see a half-written value.
type OverrideState struct {
	mu    sync.RWMutex
	state model.OverrideState
}

func NewOverrideState() *OverrideState {
	return &OverrideState{}
}

// SetManualValue stores a gas price (legacy) or max fee per gas (fee market) in decimal GWEI.
func (o *OverrideState) SetManualValue(value string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.state = model.OverrideState{ManuallySet: true, Value: value}
}

func (o *OverrideState) SetManualFeeMarketValues(maxFeePerGas, maxPriorityFeePerGas string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.state = model.OverrideState{ManuallySet: true, Value: maxFeePerGas, PriorityValue: maxPriorityFeePerGas}
}

func (o *OverrideState) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.state = model.OverrideState{}
}

func (o *OverrideState) Snapshot() model.OverrideState {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return o.state
}
