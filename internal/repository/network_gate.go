package repository

import (
	"TreasureEngine/internal/domain/models"
)

// NetworkGate fails closed for every networked adapter while the network capability is off.
type NetworkGate struct {
	caps models.RunCapabilities
}

func NewNetworkGate(caps models.RunCapabilities) NetworkGate {
	return NetworkGate{caps: caps}
}

// Allow returns NETWORK_DISABLED naming the adapter when the network is off.
func (g NetworkGate) Allow(adapter string) error {
	if !g.caps.NetworkEnabled {
		return models.NewError(models.ErrCodeNetworkDisabled, "%s requires network access", adapter)
	}
	return nil
}

// Enabled reports whether networked adapters may be built.
func (g NetworkGate) Enabled() bool { return g.caps.NetworkEnabled }
