package health

import (
	"context"
	"fmt"

	"github.com/mbd888/zkroulette/internal/chain"
	"github.com/mbd888/zkroulette/internal/commitment"
	"github.com/mbd888/zkroulette/internal/risk"
	"github.com/mbd888/zkroulette/internal/session"
)

// CommitmentStore reports the live commitment count. The in-memory store
// cannot fail, so the probe is informational.
func CommitmentStore(store *commitment.Store) Checker {
	return func(_ context.Context) Status {
		stats := store.Stats()
		return Status{
			Name:    "commitments",
			Healthy: true,
			Detail:  fmt.Sprintf("%d active", stats.TotalCommitments),
		}
	}
}

// RiskModel reports the number of spins the Bayesian model has absorbed.
func RiskModel(model *risk.Model) Checker {
	return func(_ context.Context) Status {
		report := model.Export()
		return Status{
			Name:    "risk_model",
			Healthy: true,
			Detail:  fmt.Sprintf("%d spins, %d players", report.TotalSpins, report.TotalPlayers),
		}
	}
}

// Sessions reports the active session count.
func Sessions(mgr *session.Manager) Checker {
	return func(_ context.Context) Status {
		return Status{
			Name:    "sessions",
			Healthy: true,
			Detail:  fmt.Sprintf("%d active", mgr.Count()),
		}
	}
}

// ChainRPC probes the Ethereum RPC endpoint. An offline builder is healthy:
// stub transactions need no endpoint.
func ChainRPC(builder *chain.Builder) Checker {
	return func(ctx context.Context) Status {
		if builder.Offline() {
			return Status{Name: "chain_rpc", Healthy: true, Detail: "offline mode"}
		}
		if err := builder.Ping(ctx); err != nil {
			return Status{Name: "chain_rpc", Healthy: false, Detail: err.Error()}
		}
		return Status{Name: "chain_rpc", Healthy: true}
	}
}
