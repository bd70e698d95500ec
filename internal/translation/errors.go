package translation

import "errors"

// errMissingPeerFSEID is surfaced when a Session Establishment Request
// carries no F-SEID IE, which the peer is required to set (spec.md §4.3
// "Session Establishment Request").
var errMissingPeerFSEID = errors.New("translation: session establishment request missing peer f-seid")
