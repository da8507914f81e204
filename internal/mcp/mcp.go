// Package mcp provides the foreman MCP server, exposing the process
// execution and supervision surface as tools for an assistant layer.
package mcp

import (
	_ "embed"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deixis/foreman"
	"github.com/deixis/foreman/internal/supervisor"
)

//go:embed instructions.md
var Instructions string

// handler holds shared dependencies for all tool handlers.
type handler struct {
	sup *supervisor.Supervisor
}

// NewServer creates an MCP server with all foreman tools registered.
func NewServer(sup *supervisor.Supervisor) *mcp.Server {
	h := &handler{sup: sup}

	opts := &mcp.ServerOptions{
		Instructions: Instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
	}
	s := mcp.NewServer(&mcp.Implementation{Name: "foreman", Version: foreman.Version}, opts)

	mcp.AddTool(s, &mcp.Tool{
		Name: "fm_exec",
		Description: `Run a shell command inline and capture its output.

The command runs through the platform shell (sh -c / cmd /c) with stdout and
stderr captured. Non-zero exits are reported in the result, not raised.`,
	}, h.execHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "fm_terminal",
		Description: `Run a command in a freshly spawned terminal window.

Output is teed to a per-process log file. The call blocks until the terminal
process closes; use fm_processes and fm_kill from another session to manage
long-running windows.`,
	}, h.terminalHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "fm_batch",
		Description: `Run a sequence of shell commands one at a time, in order.

With stop_on_error, the sequence aborts at the first failing command and the
result list ends with that command's entry.`,
	}, h.batchHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "fm_sudo",
		Description: "Run a command with elevated privileges (sudo on POSIX, runas on Windows).",
	}, h.sudoHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "fm_which",
		Description: "Check whether a command name resolves to a runnable binary.",
	}, h.whichHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "fm_processes",
		Description: "List every process currently tracked by the supervisor, in launch order.",
	}, h.processesHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "fm_process_info",
		Description: "Show a tracked process's record plus live CPU and memory usage.",
	}, h.processInfoHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "fm_kill",
		Description: "Kill a tracked process together with its whole process tree.",
	}, h.killHandler)

	return s
}

// textResult is a helper to build a text-only tool result.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult is a helper to build an error tool result.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}
