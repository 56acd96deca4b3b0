package sysquery

import (
	"context"

	gnet "github.com/shirou/gopsutil/v4/net"
)

// UnknownProcess is the display name for connections whose owning pid cannot
// be resolved against the current process set.
const UnknownProcess = "unknown"

// ConnectionCollector enumerates the IPv4 TCP and UDP endpoint tables.
// IPv6 is excluded.
type ConnectionCollector struct{}

func NewConnectionCollector() *ConnectionCollector {
	return &ConnectionCollector{}
}

// Collect returns every IPv4 endpoint with its owning pid joined against
// names (pid to process name). Rows with an unresolvable pid are kept with
// the name "unknown" rather than dropped.
func (c *ConnectionCollector) Collect(ctx context.Context, names map[int32]string) ([]ConnectionRecord, error) {
	tcp, err := gnet.ConnectionsWithContext(ctx, "tcp4")
	if err != nil {
		return nil, &CollectorError{Kind: KindConnection, Err: err}
	}
	udp, err := gnet.ConnectionsWithContext(ctx, "udp4")
	if err != nil {
		return nil, &CollectorError{Kind: KindConnection, Err: err}
	}

	records := make([]ConnectionRecord, 0, len(tcp)+len(udp))
	for _, conn := range tcp {
		records = append(records, toRecord(conn, ProtoTCP, names))
	}
	for _, conn := range udp {
		records = append(records, toRecord(conn, ProtoUDP, names))
	}
	return records, nil
}

func toRecord(conn gnet.ConnectionStat, proto Protocol, names map[int32]string) ConnectionRecord {
	rec := ConnectionRecord{
		Protocol:    proto,
		LocalAddr:   conn.Laddr.IP,
		LocalPort:   conn.Laddr.Port,
		PID:         conn.Pid,
		ProcessName: UnknownProcess,
	}
	if proto == ProtoTCP {
		rec.State = TCPState(conn.Status)
		// Listening sockets have no peer; suppress the zero endpoint.
		if rec.State != StateListening && conn.Raddr.IP != "" && conn.Raddr.IP != "0.0.0.0" {
			rec.RemoteAddr = conn.Raddr.IP
			rec.RemotePort = conn.Raddr.Port
		}
	}
	if name, ok := names[conn.Pid]; ok && name != "" {
		rec.ProcessName = name
	}
	return rec
}
