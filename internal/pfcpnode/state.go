// Package pfcpnode holds the in-memory topology and per-peer state of
// spec.md §3: local nodes, remote nodes, sessions, the outbound- and
// received-request tables, activity windows, and response-window tags.
// It is owned by the Communication stage and is never read directly by
// Translation or Application (spec.md §5 "no stage reads another stage's
// state") — those stages act on it only through the methods here.
//
// Grounded on original_source/include/epc/epfcp.h's Node/LocalNode/
// RemoteNode/SessionBase hierarchy, recast per spec.md §9 ("Shared-pointer
// cycles ... recast as: the local node uniquely owns its socket ...
// Sessions are owned jointly by their two nodes' SEID maps").
package pfcpnode

// LocalState is the lifecycle of a LocalNode (spec.md §4.1).
type LocalState uint8

const (
	LocalInitialized LocalState = iota
	LocalStarted
	LocalStopping
	LocalStopped
)

func (s LocalState) String() string {
	switch s {
	case LocalInitialized:
		return "Initialized"
	case LocalStarted:
		return "Started"
	case LocalStopping:
		return "Stopping"
	case LocalStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// RemoteState is the lifecycle of a RemoteNode (spec.md §3).
type RemoteState uint8

const (
	RemoteInitialized RemoteState = iota
	RemoteStarted
	RemoteStopping
	RemoteStopped
	RemoteFailed
	RemoteRestarted
)

func (s RemoteState) String() string {
	switch s {
	case RemoteInitialized:
		return "Initialized"
	case RemoteStarted:
		return "Started"
	case RemoteStopping:
		return "Stopping"
	case RemoteStopped:
		return "Stopped"
	case RemoteFailed:
		return "Failed"
	case RemoteRestarted:
		return "Restarted"
	default:
		return "Unknown"
	}
}
