package metrics

const (
	LabelProtocol = "protocol"
	LabelPulled   = "pulled"
	LabelReason   = "reason"
	LabelRejected = "rejected"
	LabelOutcome  = "outcome"
	LabelResource = "resource"
	LabelQueue    = "queue"
)

const (
	QueuePendingForKey       = "pending_for_key"
	QueuePendingForCommittee = "pending_for_committee"
	QueueReady               = "ready"
)

const (
	ResourceRawEvent       = "raw_event"
	ResourceInboundEvent   = "inbound_event"
	ResourceSessionOutput  = "session_output"
	ResourceRoundMessage   = "round_message"
	ResourceNetworkKey     = "network_key"
	ResourceRoundResult    = "round_result"
)
