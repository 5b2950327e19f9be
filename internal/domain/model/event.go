package model

// EventMeta carries the log-order context of one inbound advance event.
// Everything deterministic derives from these fields: timeouts from
// Timestamp, species-assignment seeding from BlockNumber.
type EventMeta struct {
	Sender      Account
	EpochIndex  uint64
	InputIndex  uint64
	BlockNumber int64
	Timestamp   int64
}
