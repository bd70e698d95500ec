package pfcpnode

import "github.com/omec-project/pfcpstack/internal/pfcpaddr"

// FqSeid is a fully-qualified SEID: the 64-bit session handle plus the
// IP endpoint of the node that owns it (GLOSSARY "FSEID"). Carried in
// Session Establishment exchanges to tell the peer which address pairs
// with which SEID.
type FqSeid struct {
	Seid     uint64
	Endpoint pfcpaddr.Endpoint
}

func (f FqSeid) Valid() bool {
	return f.Seid != 0 && f.Endpoint.Valid()
}
