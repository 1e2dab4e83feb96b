package metrics

// Prometheus namespaces
const (
	namespaceDWallet = "dwallet"
)

// Prometheus subsystems
const (
	subsystemMPC     = "mpc"
	subsystemMempool = "mempool"
)
