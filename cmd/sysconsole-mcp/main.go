// Command sysconsole-mcp serves the console's read-only queries over MCP
// stdio, so an MCP client can inspect processes, services, connections, and
// lock holders without opening the interactive console.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"sysconsole/internal/audit"
	"sysconsole/internal/mcpserver"
	"sysconsole/internal/sysquery"
)

func main() {
	auditPath := flag.String("audit-path", "", "audit journal database file to expose via recent_actions")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var history mcpserver.HistoryProvider
	if *auditPath != "" {
		journal, err := audit.Open(*auditPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open audit journal: %v\n", err)
			os.Exit(1)
		}
		defer journal.Close()
		history = journal
	}

	srv := mcpserver.NewServer(
		mcpserver.Config{ServerName: "sysconsole", ServerVersion: "1.0.0"},
		sysquery.NewProcessCollector(),
		sysquery.NewServiceCollector(),
		sysquery.NewConnectionCollector(),
		sysquery.NewLockCollector(),
		history,
	)
	if err := srv.Start(ctx); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
}
