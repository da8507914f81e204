package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deixis/foreman/internal/launcher"
	"github.com/deixis/foreman/internal/supervisor"
)

type execParams struct {
	Command string            `json:"command" jsonschema:"The shell command to run."`
	Cwd     string            `json:"cwd,omitempty" jsonschema:"Working directory for the command. Defaults to the server's working directory."`
	Env     map[string]string `json:"env,omitempty" jsonschema:"Extra environment variables, merged over the server's environment."`
}

func (h *handler) execHandler(ctx context.Context, req *mcp.CallToolRequest, params execParams) (*mcp.CallToolResult, any, error) {
	if params.Command == "" {
		return errorResult("command is required")
	}

	res, err := h.sup.ExecuteCommand(ctx, params.Command, launcher.InlineOptions{
		Dir:          params.Cwd,
		Env:          params.Env,
		AllowFailure: true,
	})
	if err != nil {
		return errorResult(fmt.Sprintf("exec failed: %v", err))
	}

	text := formatInline(params.Command, res)
	if !res.Success {
		return errorResult(text)
	}
	return textResult(text)
}

type sudoParams struct {
	Command string `json:"command" jsonschema:"The command to run with elevated privileges."`
	Cwd     string `json:"cwd,omitempty" jsonschema:"Working directory for the command."`
}

func (h *handler) sudoHandler(ctx context.Context, req *mcp.CallToolRequest, params sudoParams) (*mcp.CallToolResult, any, error) {
	if params.Command == "" {
		return errorResult("command is required")
	}

	res, err := h.sup.Sudo(ctx, params.Command, launcher.InlineOptions{
		Dir:          params.Cwd,
		AllowFailure: true,
	})
	if err != nil {
		return errorResult(fmt.Sprintf("sudo failed: %v", err))
	}

	text := formatInline(params.Command, res)
	if !res.Success {
		return errorResult(text)
	}
	return textResult(text)
}

type terminalParams struct {
	Command  string `json:"command" jsonschema:"The shell command to run in the new terminal window."`
	Title    string `json:"title,omitempty" jsonschema:"Window caption. Defaults to foreman."`
	Cwd      string `json:"cwd,omitempty" jsonschema:"Working directory for the spawned terminal."`
	Wait     bool   `json:"wait,omitempty" jsonschema:"Hold the window for a keypress after the command finishes."`
	KeepOpen bool   `json:"keep_open,omitempty" jsonschema:"Leave an interactive shell in the window after the command finishes."`
}

func (h *handler) terminalHandler(ctx context.Context, req *mcp.CallToolRequest, params terminalParams) (*mcp.CallToolResult, any, error) {
	if params.Command == "" {
		return errorResult("command is required")
	}

	res := h.sup.ExecuteInTerminal(ctx, params.Command, launcher.TerminalOptions{
		Title:    params.Title,
		Dir:      params.Cwd,
		Wait:     params.Wait,
		KeepOpen: params.KeepOpen,
	})

	var b strings.Builder
	if res.StartFailure {
		fmt.Fprintf(&b, "Failed to start: %s\n", params.Command)
	} else {
		fmt.Fprintf(&b, "Command: %s\n", params.Command)
		fmt.Fprintf(&b, "PID: %d\n", res.PID)
	}
	fmt.Fprintf(&b, "Exit code: %d\n", res.ExitCode)
	if res.LogPath != "" {
		fmt.Fprintf(&b, "Log: %s\n", res.LogPath)
	}

	if !res.Success {
		return errorResult(b.String())
	}
	return textResult(b.String())
}

type batchParams struct {
	Commands    []supervisor.BatchCommand `json:"commands" jsonschema:"The commands to run, in order. Each entry has a command string and an optional cwd."`
	StopOnError bool                      `json:"stop_on_error,omitempty" jsonschema:"Abort the sequence at the first failing command."`
}

func (h *handler) batchHandler(ctx context.Context, req *mcp.CallToolRequest, params batchParams) (*mcp.CallToolResult, any, error) {
	if len(params.Commands) == 0 {
		return errorResult("commands is required")
	}

	results, err := h.sup.RunCommands(ctx, params.Commands, supervisor.BatchOptions{
		StopOnError: params.StopOnError,
	})

	var b strings.Builder
	for _, r := range results {
		status := "ok"
		if !r.Success {
			status = fmt.Sprintf("FAIL (exit %d)", r.Code)
		}
		fmt.Fprintf(&b, "%-6s %s\n", status, r.Command)
		if !r.Success && r.Stderr != "" {
			fmt.Fprintf(&b, "%s\n", strings.TrimRight(r.Stderr, "\n"))
		}
	}
	if err != nil {
		fmt.Fprintf(&b, "\nSequence aborted: %v\n", err)
		return errorResult(b.String())
	}
	return textResult(b.String())
}

// formatInline renders an inline result: exit status, then the
// captured streams. Stderr is always included so failures are
// diagnosable from the tool output alone.
func formatInline(command string, res *launcher.Result) string {
	var b strings.Builder
	if res.StartFailure {
		fmt.Fprintf(&b, "Failed to start: %s\n", command)
	} else if res.Success {
		fmt.Fprintf(&b, "ok (exit 0): %s\n", command)
	} else {
		fmt.Fprintf(&b, "FAIL (exit %d): %s\n", res.Code, command)
	}
	if res.Stdout != "" {
		fmt.Fprintf(&b, "\nstdout:\n%s", res.Stdout)
	}
	if res.Stderr != "" {
		fmt.Fprintf(&b, "\nstderr:\n%s", res.Stderr)
	}
	return b.String()
}
