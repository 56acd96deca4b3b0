// Package mcpserver exposes the console's collectors to MCP clients as
// read-only tools. Mutating actions are deliberately not exposed: an MCP
// client can observe processes, services, connections, and lock holders, but
// only the interactive console may kill or toggle anything.
package mcpserver

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"sysconsole/internal/audit"
	"sysconsole/internal/sysquery"
)

// ProcessProvider enumerates processes.
type ProcessProvider interface {
	Collect(ctx context.Context) ([]sysquery.ProcessRecord, error)
}

// ServiceProvider enumerates services.
type ServiceProvider interface {
	Collect(ctx context.Context) ([]sysquery.ServiceRecord, error)
}

// ConnProvider enumerates network endpoints.
type ConnProvider interface {
	Collect(ctx context.Context, names map[int32]string) ([]sysquery.ConnectionRecord, error)
}

// LockProvider finds lock holders.
type LockProvider interface {
	FindHolders(ctx context.Context, paths []string) ([]sysquery.LockRecord, error)
	ScanDirectory(ctx context.Context, dir string, progress func(scanned, found int)) (sysquery.ScanResult, error)
}

// HistoryProvider reads the action journal.
type HistoryProvider interface {
	Recent(ctx context.Context, limit int) ([]audit.Entry, error)
}

// Config holds configuration for the MCP server.
type Config struct {
	ServerName    string
	ServerVersion string
}

// Server wraps the MCP server with the console's read-only query surface.
type Server struct {
	mcpServer *mcp.Server
	procs     ProcessProvider
	svcs      ServiceProvider
	conns     ConnProvider
	locks     LockProvider
	history   HistoryProvider // nil when the journal is disabled
}

// NewServer creates a new MCP server instance over the given collectors.
// history may be nil; the recent_actions tool then reports an empty log.
func NewServer(cfg Config, procs ProcessProvider, svcs ServiceProvider, conns ConnProvider, locks LockProvider, history HistoryProvider) *Server {
	impl := &mcp.Implementation{
		Name:    cfg.ServerName,
		Version: cfg.ServerVersion,
	}
	s := &Server{
		mcpServer: mcp.NewServer(impl, nil),
		procs:     procs,
		svcs:      svcs,
		conns:     conns,
		locks:     locks,
		history:   history,
	}
	s.registerTools()
	return s
}

// ListProcessesArgs defines the input for list_processes.
type ListProcessesArgs struct {
	Filter string `json:"filter,omitempty" jsonschema:"case-insensitive substring matched against name and path"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum rows to return, default 25"`
}

// ProcessInfo is one row of list_processes output.
type ProcessInfo struct {
	PID        int32   `json:"pid"`
	Name       string  `json:"name"`
	Path       string  `json:"path,omitempty"`
	CPUPercent float64 `json:"cpu_percent"`
	MemoryMB   float64 `json:"memory_mb"`
	Elevated   bool    `json:"elevated"`
}

// ListProcessesResult defines the output for list_processes.
type ListProcessesResult struct {
	Processes []ProcessInfo `json:"processes" jsonschema:"matching processes, highest CPU first"`
	Total     int           `json:"total" jsonschema:"total matches before the limit"`
}

// ListServicesArgs defines the input for list_services.
type ListServicesArgs struct {
	Filter string `json:"filter,omitempty" jsonschema:"case-insensitive substring matched against name and display name"`
	Status string `json:"status,omitempty" jsonschema:"only services in this status, e.g. Running or Stopped"`
}

// ServiceInfo is one row of list_services output.
type ServiceInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Status      string `json:"status"`
	StartType   string `json:"start_type"`
	PID         int32  `json:"pid,omitempty"`
}

// ListServicesResult defines the output for list_services.
type ListServicesResult struct {
	Services []ServiceInfo `json:"services" jsonschema:"matching services, active first"`
}

// ListConnectionsArgs defines the input for list_connections.
type ListConnectionsArgs struct {
	Filter string `json:"filter,omitempty" jsonschema:"case-insensitive substring matched against endpoints and process name"`
}

// ConnectionInfo is one row of list_connections output.
type ConnectionInfo struct {
	Protocol string `json:"protocol"`
	Local    string `json:"local"`
	Remote   string `json:"remote"`
	State    string `json:"state,omitempty"`
	PID      int32  `json:"pid"`
	Process  string `json:"process"`
}

// ListConnectionsResult defines the output for list_connections.
type ListConnectionsResult struct {
	Connections []ConnectionInfo `json:"connections" jsonschema:"matching IPv4 endpoints"`
}

// FindLockHoldersArgs defines the input for find_lock_holders.
type FindLockHoldersArgs struct {
	Path string `json:"path" jsonschema:"file or directory to check for lock holders"`
}

// LockHolderInfo is one row of find_lock_holders output.
type LockHolderInfo struct {
	Path string `json:"path"`
	PID  int32  `json:"pid"`
	Name string `json:"name"`
}

// FindLockHoldersResult defines the output for find_lock_holders.
type FindLockHoldersResult struct {
	Holders      []LockHolderInfo `json:"holders" jsonschema:"processes holding open handles"`
	FilesScanned int              `json:"files_scanned"`
	LocksFound   int              `json:"locks_found"`
}

// RecentActionsArgs defines the input for recent_actions.
type RecentActionsArgs struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum entries to return, default 20"`
}

// ActionInfo is one row of recent_actions output.
type ActionInfo struct {
	At      string `json:"at"`
	Action  string `json:"action"`
	Target  string `json:"target"`
	Outcome string `json:"outcome"`
}

// RecentActionsResult defines the output for recent_actions.
type RecentActionsResult struct {
	Actions []ActionInfo `json:"actions" jsonschema:"journaled actions, newest first"`
}

// registerTools registers all available MCP tools.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_processes",
		Description: "List running processes with live CPU and memory usage. Supports a name/path substring filter. Results are sorted by CPU usage, highest first.",
	}, s.handleListProcesses)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_services",
		Description: "List installed services with status, start type, and pid. Supports a name filter and a status filter such as Running or Stopped.",
	}, s.handleListServices)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_connections",
		Description: "List active IPv4 TCP and UDP endpoints with their owning process. Supports a substring filter over endpoints and process names.",
	}, s.handleListConnections)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "find_lock_holders",
		Description: "Find which processes hold open handles on a file, or scan a directory tree and report every locked file with its holders.",
	}, s.handleFindLockHolders)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "recent_actions",
		Description: "Read the journal of privileged actions (kills, service toggles) executed through the console, newest first.",
	}, s.handleRecentActions)
}

func (s *Server) handleListProcesses(ctx context.Context, _ *mcp.CallToolRequest, args ListProcessesArgs) (*mcp.CallToolResult, ListProcessesResult, error) {
	records, err := s.procs.Collect(ctx)
	if err != nil {
		return nil, ListProcessesResult{}, fmt.Errorf("failed to collect processes: %w", err)
	}

	needle := strings.ToLower(args.Filter)
	matched := make([]sysquery.ProcessRecord, 0, len(records))
	for _, r := range records {
		if needle != "" &&
			!strings.Contains(strings.ToLower(r.Name), needle) &&
			!strings.Contains(strings.ToLower(r.Path), needle) {
			continue
		}
		matched = append(matched, r)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CPUPercent > matched[j].CPUPercent
	})

	limit := args.Limit
	if limit <= 0 {
		limit = 25
	}
	result := ListProcessesResult{Total: len(matched)}
	for _, r := range matched {
		if len(result.Processes) >= limit {
			break
		}
		result.Processes = append(result.Processes, ProcessInfo{
			PID:        r.PID,
			Name:       r.Name,
			Path:       r.Path,
			CPUPercent: r.CPUPercent,
			MemoryMB:   float64(r.MemoryBytes) / (1024 * 1024),
			Elevated:   r.Elevated,
		})
	}
	return nil, result, nil
}

func (s *Server) handleListServices(ctx context.Context, _ *mcp.CallToolRequest, args ListServicesArgs) (*mcp.CallToolResult, ListServicesResult, error) {
	records, err := s.svcs.Collect(ctx)
	if err != nil {
		return nil, ListServicesResult{}, fmt.Errorf("failed to collect services: %w", err)
	}

	needle := strings.ToLower(args.Filter)
	var result ListServicesResult
	for _, r := range records {
		if needle != "" &&
			!strings.Contains(strings.ToLower(r.Name), needle) &&
			!strings.Contains(strings.ToLower(r.DisplayName), needle) {
			continue
		}
		if args.Status != "" && !strings.EqualFold(string(r.Status), args.Status) {
			continue
		}
		result.Services = append(result.Services, ServiceInfo{
			Name:        r.Name,
			DisplayName: r.DisplayName,
			Status:      string(r.Status),
			StartType:   string(r.StartType),
			PID:         r.PID,
		})
	}
	sort.SliceStable(result.Services, func(i, j int) bool {
		a := sysquery.ServiceStatus(result.Services[i].Status).Priority()
		b := sysquery.ServiceStatus(result.Services[j].Status).Priority()
		if a != b {
			return a < b
		}
		return result.Services[i].Name < result.Services[j].Name
	})
	return nil, result, nil
}

func (s *Server) handleListConnections(ctx context.Context, _ *mcp.CallToolRequest, args ListConnectionsArgs) (*mcp.CallToolResult, ListConnectionsResult, error) {
	names := map[int32]string{}
	if procs, err := s.procs.Collect(ctx); err == nil {
		for _, p := range procs {
			names[p.PID] = p.Name
		}
	}

	records, err := s.conns.Collect(ctx, names)
	if err != nil {
		return nil, ListConnectionsResult{}, fmt.Errorf("failed to collect connections: %w", err)
	}

	needle := strings.ToLower(args.Filter)
	var result ListConnectionsResult
	for _, r := range records {
		if needle != "" &&
			!strings.Contains(strings.ToLower(r.Local()), needle) &&
			!strings.Contains(strings.ToLower(r.Remote()), needle) &&
			!strings.Contains(strings.ToLower(r.ProcessName), needle) {
			continue
		}
		result.Connections = append(result.Connections, ConnectionInfo{
			Protocol: string(r.Protocol),
			Local:    r.Local(),
			Remote:   r.Remote(),
			State:    string(r.State),
			PID:      r.PID,
			Process:  r.ProcessName,
		})
	}
	return nil, result, nil
}

func (s *Server) handleFindLockHolders(ctx context.Context, _ *mcp.CallToolRequest, args FindLockHoldersArgs) (*mcp.CallToolResult, FindLockHoldersResult, error) {
	if args.Path == "" {
		return nil, FindLockHoldersResult{}, fmt.Errorf("path is required")
	}

	var scan sysquery.ScanResult
	info, statErr := os.Stat(args.Path)
	if statErr == nil && info.IsDir() {
		result, err := s.locks.ScanDirectory(ctx, args.Path, nil)
		if err != nil {
			return nil, FindLockHoldersResult{}, fmt.Errorf("directory scan failed: %w", err)
		}
		scan = result
	} else {
		holders, err := s.locks.FindHolders(ctx, []string{args.Path})
		if err != nil {
			return nil, FindLockHoldersResult{}, fmt.Errorf("lock lookup failed: %w", err)
		}
		scan = sysquery.ScanResult{
			Holders:      holders,
			FilesScanned: 1,
			LocksFound:   sysquery.CountLockedPaths(holders),
		}
	}

	result := FindLockHoldersResult{
		FilesScanned: scan.FilesScanned,
		LocksFound:   scan.LocksFound,
	}
	for _, h := range scan.Holders {
		result.Holders = append(result.Holders, LockHolderInfo{Path: h.Path, PID: h.PID, Name: h.Name})
	}
	return nil, result, nil
}

func (s *Server) handleRecentActions(ctx context.Context, _ *mcp.CallToolRequest, args RecentActionsArgs) (*mcp.CallToolResult, RecentActionsResult, error) {
	if s.history == nil {
		return nil, RecentActionsResult{}, nil
	}
	limit := args.Limit
	if limit <= 0 {
		limit = 20
	}
	entries, err := s.history.Recent(ctx, limit)
	if err != nil {
		return nil, RecentActionsResult{}, fmt.Errorf("failed to read the action journal: %w", err)
	}
	var result RecentActionsResult
	for _, e := range entries {
		result.Actions = append(result.Actions, ActionInfo{
			At:      e.At.Format("2006-01-02 15:04:05"),
			Action:  e.Action,
			Target:  e.Target,
			Outcome: e.Outcome,
		})
	}
	return nil, result, nil
}

// Start starts the MCP server using stdio transport.
func (s *Server) Start(ctx context.Context) error {
	fmt.Fprintf(os.Stderr, "Starting sysconsole MCP server on stdio...\n")
	transport := &mcp.StdioTransport{}
	return s.mcpServer.Run(ctx, transport)
}
