// Package sysquery queries and mutates native OS state: processes, services,
// network endpoints, and per-file lock ownership. Collectors are synchronous
// and stateless between calls except for the bookkeeping CPU sampling needs.
package sysquery

import (
	"fmt"
	"strconv"
)

// Kind identifies one periodically collected resource class.
type Kind int

const (
	KindProcess Kind = iota
	KindService
	KindConnection
)

func (k Kind) String() string {
	switch k {
	case KindProcess:
		return "process"
	case KindService:
		return "service"
	case KindConnection:
		return "connection"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ProcessRecord describes one running process. Path and the metric fields are
// best-effort: access restrictions degrade a record to identity-only rather
// than failing the whole collection.
type ProcessRecord struct {
	PID         int32
	Name        string
	Path        string // empty when the handle cannot be opened
	CPUPercent  float64
	MemoryBytes uint64
	Elevated    bool

	// CPUMissed and MemoryMissed flag individual metric fields that could
	// not be sampled this pass, so the cache can substitute the last good
	// value per field. Degraded marks an identity-only record with neither
	// metric available; Stale marks metrics carried over from the last good
	// sample instead of being reported as zero.
	CPUMissed    bool
	MemoryMissed bool
	Degraded     bool
	Stale        bool
}

// Key returns the stable identity used for selection tracking.
func (r ProcessRecord) Key() string { return strconv.Itoa(int(r.PID)) }

// ServiceStatus is the service-control-manager reported state.
type ServiceStatus string

const (
	StatusRunning      ServiceStatus = "Running"
	StatusStopped      ServiceStatus = "Stopped"
	StatusStartPending ServiceStatus = "StartPending"
	StatusStopPending  ServiceStatus = "StopPending"
	StatusPaused       ServiceStatus = "Paused"
	StatusUnknown      ServiceStatus = "Unknown"
)

// Priority orders statuses for the Status sort key: active states sort ahead
// of stopped ones instead of lexically.
func (s ServiceStatus) Priority() int {
	switch s {
	case StatusRunning:
		return 0
	case StatusStartPending:
		return 1
	case StatusStopPending:
		return 2
	case StatusPaused:
		return 3
	case StatusStopped:
		return 4
	default:
		return 5
	}
}

// StartType is how a service is launched.
type StartType string

const (
	StartAutomatic StartType = "Automatic"
	StartManual    StartType = "Manual"
	StartDisabled  StartType = "Disabled"
	StartUnknown   StartType = "Unknown"
)

// ServiceRecord describes one installed service. Name is the stable key;
// PID is zero unless the service is running.
type ServiceRecord struct {
	Name        string
	DisplayName string
	Status      ServiceStatus
	StartType   StartType
	PID         int32
}

func (r ServiceRecord) Key() string { return r.Name }

// Protocol is the transport of a ConnectionRecord.
type Protocol string

const (
	ProtoTCP Protocol = "TCP"
	ProtoUDP Protocol = "UDP"
)

// TCPState is the TCP connection state; empty for UDP endpoints.
type TCPState string

const (
	StateListening   TCPState = "LISTEN"
	StateEstablished TCPState = "ESTABLISHED"
	StateSynSent     TCPState = "SYN_SENT"
	StateSynRecv     TCPState = "SYN_RECV"
	StateFinWait1    TCPState = "FIN_WAIT1"
	StateFinWait2    TCPState = "FIN_WAIT2"
	StateTimeWait    TCPState = "TIME_WAIT"
	StateCloseWait   TCPState = "CLOSE_WAIT"
	StateClosing     TCPState = "CLOSING"
	StateLastAck     TCPState = "LAST_ACK"
	StateClosed      TCPState = "CLOSE"
)

// ConnectionRecord describes one IPv4 TCP or UDP endpoint joined against the
// current process set. ProcessName is "unknown" when the owning pid cannot be
// resolved; the row is kept either way.
type ConnectionRecord struct {
	Protocol    Protocol
	LocalAddr   string
	LocalPort   uint32
	RemoteAddr  string // empty for UDP and listening sockets
	RemotePort  uint32
	State       TCPState // empty for UDP
	PID         int32
	ProcessName string
}

// Key identifies an endpoint across refreshes. PIDs alone are not unique here
// since one process owns many sockets.
func (r ConnectionRecord) Key() string {
	return fmt.Sprintf("%s/%s:%d-%s:%d", r.Protocol, r.LocalAddr, r.LocalPort, r.RemoteAddr, r.RemotePort)
}

// Local formats the local endpoint for display and filtering.
func (r ConnectionRecord) Local() string {
	return r.LocalAddr + ":" + strconv.Itoa(int(r.LocalPort))
}

// Remote formats the remote endpoint, or "-" when there is none.
func (r ConnectionRecord) Remote() string {
	if r.RemoteAddr == "" {
		return "-"
	}
	return r.RemoteAddr + ":" + strconv.Itoa(int(r.RemotePort))
}

// LockRecord is one process holding an open handle on a searched path.
// Produced transiently by lock searches, never by the periodic cycle.
type LockRecord struct {
	Path string
	PID  int32
	Name string
}

// ScanResult carries the outcome of a lock search. For directory scans
// FilesScanned counts every file visited, including inaccessible ones that
// had to be skipped.
type ScanResult struct {
	Holders      []LockRecord
	FilesScanned int
	LocksFound   int
}
