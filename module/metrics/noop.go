package metrics

import (
	"time"

	"github.com/dwallet-labs/dwallet-network-sub004/module"
)

type NoopCollector struct{}

func NewNoopCollector() *NoopCollector {
	return &NoopCollector{}
}

var _ module.MPCMetrics = (*NoopCollector)(nil)
var _ module.MempoolMetrics = (*NoopCollector)(nil)

func (nc *NoopCollector) EventReceived(string, bool) {}
func (nc *NoopCollector) EventDropped(string) {}
func (nc *NoopCollector) SessionAdmitted(string) {}
func (nc *NoopCollector) SessionCompleted(string, bool) {}
func (nc *NoopCollector) PendingQueues(uint, uint, uint) {}
func (nc *NoopCollector) OutputSubmitted(string) {}
func (nc *NoopCollector) MaliciousAuthorities(int) {}
func (nc *NoopCollector) RoundComputed(string, time.Duration) {}
func (nc *NoopCollector) MempoolEntries(string, uint) {}
