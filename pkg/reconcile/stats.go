package reconcile

import "github.com/vango-dev/livetree/pkg/telemetry"

// Stats counts the decisions made by one reconcile call.
type Stats struct {
	Added           int
	Preserved       int
	Moved           int
	Discarded       int
	Vetoed          int
	AttributeWrites int
}

// Mutations returns the number of structural and attribute changes.
func (s Stats) Mutations() int {
	return s.Added + s.Moved + s.Discarded + s.AttributeWrites
}

func (s Stats) record(m *telemetry.Metrics) {
	m.RecordNodes(telemetry.OpAdded, s.Added)
	m.RecordNodes(telemetry.OpPreserved, s.Preserved)
	m.RecordNodes(telemetry.OpMoved, s.Moved)
	m.RecordNodes(telemetry.OpDiscarded, s.Discarded)
	m.RecordNodes(telemetry.OpVetoed, s.Vetoed)
	m.RecordAttributeWrites(s.AttributeWrites)
}
