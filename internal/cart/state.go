package cart

// SyncState is where a cart view stands relative to the server.
//
//	Clean -> Pending (optimistic change sent) -> Clean (server accepted)
//	                                          -> Reconciling (server rejected, resync)
//	Reconciling -> Clean on the next successful fetch
type SyncState int

const (
	StateClean SyncState = iota
	StatePending
	StateReconciling
)

func (s SyncState) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StatePending:
		return "pending"
	case StateReconciling:
		return "reconciling"
	default:
		return "unknown"
	}
}

func (s SyncState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
