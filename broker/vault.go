package broker

import (
	"time"

	"github.com/rustyeddy/stratlab/market"
)

// VaultBuffer is the deadband around the target vault weight; deviations
// inside it are ignored to avoid churn.
const VaultBuffer = 0.05

// RebalanceVault tops up the safe-haven instrument toward targetFraction
// of total equity. Only underweight positions are corrected: the vault is
// never sold down, an intentional asymmetry that avoids realizing losses
// on the safe allocation. Skips silently when the snapshot has no price
// for the vault instrument.
func (b *Broker) RebalanceVault(snap market.Snapshot, vaultInstr string, targetFraction float64, ts time.Time) {
	price, ok := snap[vaultInstr]
	if !ok || price <= 0 {
		b.log.Warn("vault: no price, skipping rebalance", "instrument", vaultInstr)
		return
	}

	equity := b.PortfolioValue(snap)
	if equity <= 0 {
		return
	}

	current := b.PositionQuantity(vaultInstr) * price
	target := equity * targetFraction
	diff := target - current
	diffPct := diff / equity

	if diffPct < VaultBuffer {
		// Inside the deadband, or overweight; either way, hold.
		return
	}

	toBuy := diff
	if toBuy > b.cash {
		toBuy = b.cash
	}
	if toBuy <= price {
		// Not enough for a single share.
		return
	}

	b.log.Info("vault: rebalancing", "instrument", vaultInstr, "amount", toBuy, "target", targetFraction)
	b.BuyAmount(vaultInstr, price, ts, toBuy, map[string]float64{"vault_target": targetFraction})
}
