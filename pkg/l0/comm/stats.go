package comm

import "sync/atomic"

// Stats counts the outcome of received frames. It's updated by the
// consumer and can be read concurrently (e.g. by telemetry).
type Stats struct {
	Frames         atomic.Uint64 // completed frames, valid or not
	ChecksumErrors atomic.Uint64
	InvalidOpcodes atomic.Uint64
	SkippedBytes   atomic.Uint64 // bytes outside of a frame
	Overruns       atomic.Uint64 // bytes dropped by the full ring
	Resyncs        atomic.Uint64 // buffer cleared after overruns
}

// StatsSnapshot is a copy of Stats at some point.
type StatsSnapshot struct {
	Frames         uint64
	ChecksumErrors uint64
	InvalidOpcodes uint64
	SkippedBytes   uint64
	Overruns       uint64
	Resyncs        uint64
}

// Snapshot copies the counters.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Frames:         s.Frames.Load(),
		ChecksumErrors: s.ChecksumErrors.Load(),
		InvalidOpcodes: s.InvalidOpcodes.Load(),
		SkippedBytes:   s.SkippedBytes.Load(),
		Overruns:       s.Overruns.Load(),
		Resyncs:        s.Resyncs.Load(),
	}
}

// Accepted returns frames passed the checksum.
func (s StatsSnapshot) Accepted() uint64 {
	return s.Frames - s.ChecksumErrors
}
