package communication

import "fmt"

func errSeqNumReused(seqNum uint32) error {
	return fmt.Errorf("communication: sequence number %d already has an in-flight request", seqNum)
}

func errReceivedEntryGone(seqNum uint32) error {
	return fmt.Errorf("communication: received-request entry for sequence number %d no longer tracked", seqNum)
}
