// SPDX-License-Identifier: EPL-2.0

package stream

// Status identifies a notable event in the life of a stream.
type Status int

const (
	StatusHTTPFail Status = iota + 2
	StatusDisconnected
	StatusReconnecting
	StatusReconnected
	StatusNoData
)

func (s Status) String() string {
	switch s {
	case StatusHTTPFail:
		return "http failure"
	case StatusDisconnected:
		return "disconnected"
	case StatusReconnecting:
		return "reconnecting"
	case StatusReconnected:
		return "reconnected"
	case StatusNoData:
		return "no data"
	default:
		return "unknown"
	}
}

// StatusFunc receives status notifications. It runs on the goroutine that
// called Open or Read and must not call back into the Source.
type StatusFunc func(code Status, msg string)

func (s *Source) emit(code Status, msg string) {
	if s.notify != nil {
		s.notify(code, msg)
	}
}
