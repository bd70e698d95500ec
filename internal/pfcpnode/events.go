package pfcpnode

import "time"

// LocalNodeStateChange is surfaced to the application whenever a
// LocalNode's lifecycle state changes (spec.md §4.1).
type LocalNodeStateChange struct {
	Local    *LocalNode
	Previous LocalState
	Current  LocalState
}

// RemoteNodeStateChange is surfaced on RemoteNode lifecycle transitions,
// in particular Started→Failed after exhausting heartbeat retries
// (spec.md §4.2 "Send-with-retry").
type RemoteNodeStateChange struct {
	Remote   *RemoteNode
	Previous RemoteState
	Current  RemoteState
}

// RemoteNodeRestart is surfaced when a peer's Recovery Time Stamp is
// observed to have advanced past the value on record (spec.md §3, §4.2
// "Heartbeat semantics").
type RemoteNodeRestart struct {
	Remote      *RemoteNode
	NewStartAt  time.Time
	PriorStartAt time.Time
}
