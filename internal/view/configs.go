package view

import (
	"cmp"
	"strconv"
	"strings"

	"sysconsole/internal/sysquery"
)

// Sort key cycles, fixed per kind.
const (
	SortByName    SortKey = "Name"
	SortByPid     SortKey = "Pid"
	SortByCpu     SortKey = "Cpu"
	SortByMemory  SortKey = "Memory"
	SortByStatus  SortKey = "Status"
	SortByType    SortKey = "Type"
	SortByState   SortKey = "State"
	SortByProto   SortKey = "Protocol"
	SortByProcess SortKey = "Process"
)

// ProcessTable builds the view state for the process tab. The filter matches
// name, path, and pid.
func ProcessTable() *Table[sysquery.ProcessRecord] {
	return NewTable(Config[sysquery.ProcessRecord]{
		SortKeys: []SortKey{SortByName, SortByPid, SortByCpu, SortByMemory},
		Identity: sysquery.ProcessRecord.Key,
		Match: func(r sysquery.ProcessRecord, needle string) bool {
			return strings.Contains(strings.ToLower(r.Name), needle) ||
				strings.Contains(strings.ToLower(r.Path), needle) ||
				strings.Contains(strconv.Itoa(int(r.PID)), needle)
		},
		Compare: func(a, b sysquery.ProcessRecord, key SortKey) int {
			switch key {
			case SortByPid:
				return cmp.Compare(a.PID, b.PID)
			case SortByCpu:
				return cmp.Compare(a.CPUPercent, b.CPUPercent)
			case SortByMemory:
				return cmp.Compare(a.MemoryBytes, b.MemoryBytes)
			default:
				return compareFold(a.Name, b.Name)
			}
		},
	})
}

// ServiceTable builds the view state for the service tab. The Status key
// orders by activity rather than lexically, so running services group first.
func ServiceTable() *Table[sysquery.ServiceRecord] {
	return NewTable(Config[sysquery.ServiceRecord]{
		SortKeys: []SortKey{SortByName, SortByStatus, SortByType},
		Identity: sysquery.ServiceRecord.Key,
		Match: func(r sysquery.ServiceRecord, needle string) bool {
			return strings.Contains(strings.ToLower(r.Name), needle) ||
				strings.Contains(strings.ToLower(r.DisplayName), needle)
		},
		Compare: func(a, b sysquery.ServiceRecord, key SortKey) int {
			switch key {
			case SortByStatus:
				if c := cmp.Compare(a.Status.Priority(), b.Status.Priority()); c != 0 {
					return c
				}
			case SortByType:
				if c := compareFold(string(a.StartType), string(b.StartType)); c != 0 {
					return c
				}
			}
			return compareFold(a.Name, b.Name)
		},
	})
}

// ConnectionTable builds the view state for the connection tab. The filter
// matches both endpoints, the owning pid, and the process name.
func ConnectionTable() *Table[sysquery.ConnectionRecord] {
	return NewTable(Config[sysquery.ConnectionRecord]{
		SortKeys: []SortKey{SortByState, SortByPid, SortByProto, SortByProcess},
		Identity: sysquery.ConnectionRecord.Key,
		Match: func(r sysquery.ConnectionRecord, needle string) bool {
			return strings.Contains(strings.ToLower(r.Local()), needle) ||
				strings.Contains(strings.ToLower(r.Remote()), needle) ||
				strings.Contains(strconv.Itoa(int(r.PID)), needle) ||
				strings.Contains(strings.ToLower(r.ProcessName), needle)
		},
		Compare: func(a, b sysquery.ConnectionRecord, key SortKey) int {
			switch key {
			case SortByPid:
				if c := cmp.Compare(a.PID, b.PID); c != 0 {
					return c
				}
			case SortByProto:
				if c := compareFold(string(a.Protocol), string(b.Protocol)); c != 0 {
					return c
				}
			case SortByProcess:
				if c := compareFold(a.ProcessName, b.ProcessName); c != 0 {
					return c
				}
			default:
				if c := compareFold(string(a.State), string(b.State)); c != 0 {
					return c
				}
			}
			// Ports break the remaining ties deterministically.
			return cmp.Compare(a.LocalPort, b.LocalPort)
		},
	})
}

func compareFold(a, b string) int {
	return cmp.Compare(strings.ToLower(a), strings.ToLower(b))
}
