package application

import (
	"github.com/omec-project/pfcpstack/internal/pfcpnode"
	"github.com/omec-project/pfcpstack/internal/wire"
)

// TranslationSink is the slice of translation.Stage the application
// needs to send a message it has constructed (spec.md §4.4 "SndMsg").
type TranslationSink interface {
	PostSndMsg(local *pfcpnode.LocalNode, remote *pfcpnode.RemoteNode, msg wire.AppMsg, attempts int, retransmitMillis int64)
}
