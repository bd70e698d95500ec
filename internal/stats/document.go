// Package stats renders the runtime's per-remote message counters into
// the JSON document shape of spec.md §6 and exposes them as Prometheus
// metrics, grounded on the teacher's internal/stats/{collector,reporter}.go
// pair (generalized from its ad-hoc map[string]*MessageTypeStats to the
// spec's fixed local_nodes[].remote_nodes[].messages{} shape).
package stats

import (
	"sort"
	"time"

	"github.com/omec-project/pfcpstack/internal/pfcpnode"
	"github.com/omec-project/pfcpstack/internal/wire"
)

// MessageDoc is one entry of the messages{} object, keyed by message
// type name in the rendered document.
type MessageDoc struct {
	ID       wire.MsgType `json:"id"`
	Received uint64       `json:"received"`
	Timeout  uint64       `json:"timeout"`
	Sent     []uint64     `json:"sent"`
}

// RemoteDoc is one entry of a local node's remote_nodes array.
type RemoteDoc struct {
	RemoteAddress string                `json:"remote_address"`
	LastActivity  time.Time             `json:"last_activity"`
	Messages      map[string]MessageDoc `json:"messages"`
}

// LocalDoc is one entry of the top-level local_nodes array.
type LocalDoc struct {
	LocalAddress string      `json:"local_address"`
	RemoteNodes  []RemoteDoc `json:"remote_nodes"`
}

// Document is the full JSON document of spec.md §6.
type Document struct {
	LocalNodes []LocalDoc `json:"local_nodes"`
}

// Build renders locals into the §6 document shape: remote_nodes sorted
// by address string, messages keyed by name.
func Build(locals []*pfcpnode.LocalNode) Document {
	doc := Document{LocalNodes: make([]LocalDoc, 0, len(locals))}
	for _, local := range locals {
		remotes := local.RemoteNodes()
		sort.Slice(remotes, func(i, j int) bool {
			return remotes[i].Address.String() < remotes[j].Address.String()
		})

		ld := LocalDoc{LocalAddress: local.Address.String(), RemoteNodes: make([]RemoteDoc, 0, len(remotes))}
		for _, remote := range remotes {
			messages := make(map[string]MessageDoc)
			for _, m := range remote.Stats.Snapshot() {
				sent := make([]uint64, len(m.Sent))
				copy(sent, m.Sent)
				messages[wire.MessageTypeName(m.ID)] = MessageDoc{ID: m.ID, Received: m.Received, Timeout: m.Timeout, Sent: sent}
			}
			ld.RemoteNodes = append(ld.RemoteNodes, RemoteDoc{
				RemoteAddress: remote.Address.String(),
				LastActivity:  remote.Activity.LastTouch(),
				Messages:      messages,
			})
		}
		doc.LocalNodes = append(doc.LocalNodes, ld)
	}
	return doc
}
