package snapshot

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
	"math"

	"sysconsole/internal/sysquery"
)

// Fingerprints cover every field a refresh can visibly change, in slice
// order. Collection timestamps stay out so that two passes observing
// identical system state hash identically.

func FingerprintProcesses(records []sysquery.ProcessRecord) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, r := range records {
		writeUint(h, buf[:], uint64(r.PID))
		writeString(h, r.Name)
		writeString(h, r.Path)
		writeUint(h, buf[:], math.Float64bits(r.CPUPercent))
		writeUint(h, buf[:], r.MemoryBytes)
		writeBool(h, r.Elevated)
		writeBool(h, r.Degraded)
		writeBool(h, r.Stale)
	}
	return h.Sum64()
}

func FingerprintServices(records []sysquery.ServiceRecord) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, r := range records {
		writeString(h, r.Name)
		writeString(h, r.DisplayName)
		writeString(h, string(r.Status))
		writeString(h, string(r.StartType))
		writeUint(h, buf[:], uint64(r.PID))
	}
	return h.Sum64()
}

func FingerprintConnections(records []sysquery.ConnectionRecord) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, r := range records {
		writeString(h, string(r.Protocol))
		writeString(h, r.LocalAddr)
		writeUint(h, buf[:], uint64(r.LocalPort))
		writeString(h, r.RemoteAddr)
		writeUint(h, buf[:], uint64(r.RemotePort))
		writeString(h, string(r.State))
		writeUint(h, buf[:], uint64(r.PID))
		writeString(h, r.ProcessName)
	}
	return h.Sum64()
}

func writeString(h hash.Hash64, s string) {
	h.Write([]byte(s))
	// Separator so adjacent fields cannot shift content into each other.
	h.Write([]byte{0})
}

func writeUint(h hash.Hash64, buf []byte, v uint64) {
	binary.LittleEndian.PutUint64(buf, v)
	h.Write(buf)
}

func writeBool(h hash.Hash64, v bool) {
	if v {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
}
