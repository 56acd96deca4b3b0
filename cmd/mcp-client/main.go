package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	flag.Parse()
	args := flag.Args()

	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: mcp-client <server-command> [<args>]")
		fmt.Fprintln(os.Stderr, "Example: mcp-client ./sysconsole-mcp")
		os.Exit(2)
	}

	ctx := context.Background()

	// Start the server as a subprocess
	cmd := exec.Command(args[0], args[1:]...)
	transport := &mcp.CommandTransport{Command: cmd}

	// Create MCP client
	client := mcp.NewClient(&mcp.Implementation{
		Name:    "sysconsole-client",
		Version: "1.0.0",
	}, nil)

	// Connect to the server
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer session.Close()

	fmt.Println("Connected to sysconsole MCP server!")
	fmt.Println("Available commands:")
	fmt.Println("  /tools                 - List available tools")
	fmt.Println("  /procs [filter]        - List processes, highest CPU first")
	fmt.Println("  /services [filter]     - List services")
	fmt.Println("  /conns [filter]        - List IPv4 connections")
	fmt.Println("  /locks <path>          - Find processes holding locks on a path")
	fmt.Println("  /actions [limit]       - Show the recent action journal")
	fmt.Println("  /exit                  - Exit the client")
	fmt.Println()

	// Interactive REPL
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch {
		case input == "/exit":
			fmt.Println("Goodbye!")
			return

		case input == "/tools":
			listTools(ctx, session)

		case strings.HasPrefix(input, "/procs"):
			args := map[string]interface{}{}
			if rest := strings.TrimSpace(strings.TrimPrefix(input, "/procs")); rest != "" {
				args["filter"] = rest
			}
			callTool(ctx, session, "list_processes", args)

		case strings.HasPrefix(input, "/services"):
			args := map[string]interface{}{}
			if rest := strings.TrimSpace(strings.TrimPrefix(input, "/services")); rest != "" {
				args["filter"] = rest
			}
			callTool(ctx, session, "list_services", args)

		case strings.HasPrefix(input, "/conns"):
			args := map[string]interface{}{}
			if rest := strings.TrimSpace(strings.TrimPrefix(input, "/conns")); rest != "" {
				args["filter"] = rest
			}
			callTool(ctx, session, "list_connections", args)

		case strings.HasPrefix(input, "/locks "):
			path := strings.TrimSpace(strings.TrimPrefix(input, "/locks "))
			callTool(ctx, session, "find_lock_holders", map[string]interface{}{
				"path": path,
			})

		case strings.HasPrefix(input, "/actions"):
			args := map[string]interface{}{}
			if rest := strings.TrimSpace(strings.TrimPrefix(input, "/actions")); rest != "" {
				if limit, err := strconv.Atoi(rest); err == nil {
					args["limit"] = limit
				}
			}
			callTool(ctx, session, "recent_actions", args)

		default:
			fmt.Println("Unknown command. Try /tools.")
		}
	}

	if err := scanner.Err(); err != nil {
		log.Printf("Scanner error: %v", err)
	}
}

func listTools(ctx context.Context, session *mcp.ClientSession) {
	fmt.Println("Available Tools:")
	for tool, err := range session.Tools(ctx, nil) {
		if err != nil {
			log.Printf("Error listing tools: %v", err)
			return
		}
		fmt.Printf("  - %s: %s\n", tool.Name, tool.Description)
	}
	fmt.Println()
}

func callTool(ctx context.Context, session *mcp.ClientSession, toolName string, args map[string]interface{}) {
	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
	if err != nil {
		log.Printf("Error calling tool: %v", err)
		return
	}

	printResult(result)
}

func printResult(result *mcp.CallToolResult) {
	if result.IsError {
		fmt.Printf("Error: ")
	}

	// Try to pretty-print the content
	for _, content := range result.Content {
		switch v := content.(type) {
		case *mcp.TextContent:
			fmt.Println(v.Text)
		default:
			// Try JSON marshaling for other types
			jsonData, err := json.MarshalIndent(content, "", "  ")
			if err != nil {
				fmt.Printf("%+v\n", content)
			} else {
				fmt.Println(string(jsonData))
			}
		}
	}
	fmt.Println()
}
