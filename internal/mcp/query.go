package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type whichParams struct {
	Name string `json:"name" jsonschema:"The binary name to look up, e.g. git."`
}

func (h *handler) whichHandler(ctx context.Context, req *mcp.CallToolRequest, params whichParams) (*mcp.CallToolResult, any, error) {
	if params.Name == "" {
		return errorResult("name is required")
	}
	if h.sup.IsCommandAvailable(ctx, params.Name) {
		return textResult(fmt.Sprintf("%s: available", params.Name))
	}
	return textResult(fmt.Sprintf("%s: not available", params.Name))
}

type processesParams struct{}

func (h *handler) processesHandler(ctx context.Context, req *mcp.CallToolRequest, _ processesParams) (*mcp.CallToolResult, any, error) {
	procs := h.sup.ListProcesses()
	if len(procs) == 0 {
		return textResult("No tracked processes.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tracked processes (%d):\n", len(procs))
	for _, p := range procs {
		fmt.Fprintf(&b, "  %d  %s  started %s", p.PID, p.CommandLine, p.StartTime.Format(time.TimeOnly))
		if p.LogPath != "" {
			fmt.Fprintf(&b, "  log %s", p.LogPath)
		}
		fmt.Fprintln(&b)
	}
	return textResult(b.String())
}

type processInfoParams struct {
	PID int `json:"pid" jsonschema:"The process identifier from fm_processes."`
}

func (h *handler) processInfoHandler(ctx context.Context, req *mcp.CallToolRequest, params processInfoParams) (*mcp.CallToolResult, any, error) {
	info, ok := h.sup.GetProcessInfo(params.PID)
	if !ok {
		return errorResult(fmt.Sprintf("process %d is not tracked", params.PID))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "PID: %d\n", info.PID)
	fmt.Fprintf(&b, "Command: %s\n", info.CommandLine)
	fmt.Fprintf(&b, "Started: %s\n", info.StartTime.Format(time.RFC3339))
	fmt.Fprintf(&b, "Running: %t\n", info.Running)
	if info.LogPath != "" {
		fmt.Fprintf(&b, "Log: %s\n", info.LogPath)
	}
	if info.CPUPercent > 0 {
		fmt.Fprintf(&b, "CPU: %.1f%%\n", info.CPUPercent)
	}
	if info.MemoryRSS > 0 {
		fmt.Fprintf(&b, "RSS: %d bytes\n", info.MemoryRSS)
	}
	return textResult(b.String())
}

type killParams struct {
	PID int `json:"pid" jsonschema:"The process identifier to kill, from fm_processes."`
}

func (h *handler) killHandler(ctx context.Context, req *mcp.CallToolRequest, params killParams) (*mcp.CallToolResult, any, error) {
	if !h.sup.KillProcess(params.PID) {
		return errorResult(fmt.Sprintf("process %d not found or could not be signalled", params.PID))
	}
	// The registry entry disappears asynchronously once the owning
	// launcher observes the exit.
	return textResult(fmt.Sprintf("killed process tree %d", params.PID))
}
