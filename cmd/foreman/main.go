// Command foreman runs external commands inline or in freshly spawned
// terminal windows and supervises the resulting processes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deixis/foreman"
	"github.com/deixis/foreman/internal/config"
	"github.com/deixis/foreman/internal/launcher"
	fmmcp "github.com/deixis/foreman/internal/mcp"
	"github.com/deixis/foreman/internal/supervisor"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("foreman: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "run":
		err = runMain(args)
	case "term":
		err = termMain(args)
	case "batch":
		err = batchMain(args)
	case "sudo":
		err = sudoMain(args)
	case "which":
		err = whichMain(args)
	case "mcp":
		err = mcpMain(args)
	case "version":
		fmt.Println(foreman.Version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "foreman: unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		var cmdErr *launcher.CommandError
		if errors.As(err, &cmdErr) {
			// The child's stderr was already printed; just mirror its code.
			log.Print(err)
			os.Exit(exitStatus(cmdErr.Code))
		}
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: foreman <command> [flags] [args]

Commands:
  run         Run a command inline and capture its output
  term        Run a command in a new terminal window
  batch       Run several commands one at a time, in order
  sudo        Run a command with elevated privileges
  which       Check whether a command is available
  mcp         Start the MCP server
  version     Print the version
  help        Show this help

Use "foreman <command> -h" for command-specific flags.`)
}

// exitStatus clamps synthesized sentinel codes into a valid status.
func exitStatus(code int) int {
	if code < 0 || code > 255 {
		return 1
	}
	return code
}

// newSupervisor loads configuration from the working directory and
// builds the supervisor all subcommands share.
func newSupervisor() (*supervisor.Supervisor, error) {
	workspace, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determining workspace: %w", err)
	}
	loaded, err := config.Load(workspace)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return supervisor.New(loaded.Config, os.Stdout), nil
}

// --- run / sudo ---

func runMain(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cwd := fs.String("cwd", "", "working directory for the command")
	verbose := fs.Bool("v", false, "echo output while the command runs")
	_ = fs.Parse(args)

	return inlineMain(fs.Args(), *cwd, *verbose, false)
}

func sudoMain(args []string) error {
	fs := flag.NewFlagSet("sudo", flag.ExitOnError)
	cwd := fs.String("cwd", "", "working directory for the command")
	verbose := fs.Bool("v", false, "echo output while the command runs")
	_ = fs.Parse(args)

	return inlineMain(fs.Args(), *cwd, *verbose, true)
}

func inlineMain(args []string, cwd string, verbose, elevated bool) error {
	command := strings.Join(args, " ")
	if command == "" {
		return fmt.Errorf("no command given")
	}

	sup, err := newSupervisor()
	if err != nil {
		return err
	}
	defer sup.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := launcher.InlineOptions{Dir: cwd, Verbose: verbose}
	var res *launcher.Result
	if elevated {
		res, err = sup.Sudo(ctx, command, opts)
	} else {
		res, err = sup.ExecuteCommand(ctx, command, opts)
	}
	if err != nil {
		if !verbose {
			fmt.Fprint(os.Stderr, res.Stderr)
		}
		return err
	}
	if !verbose {
		fmt.Print(res.Stdout)
		fmt.Fprint(os.Stderr, res.Stderr)
	}
	return nil
}

// --- term ---

func termMain(args []string) error {
	fs := flag.NewFlagSet("term", flag.ExitOnError)
	title := fs.String("title", "", "terminal window caption")
	cwd := fs.String("cwd", "", "working directory for the spawned terminal")
	wait := fs.Bool("wait", false, "hold the window for a keypress after the command")
	keepOpen := fs.Bool("keep-open", false, "leave an interactive shell after the command")
	_ = fs.Parse(args)

	command := strings.Join(fs.Args(), " ")
	if command == "" {
		return fmt.Errorf("no command given")
	}

	sup, err := newSupervisor()
	if err != nil {
		return err
	}
	defer sup.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res := sup.ExecuteInTerminal(ctx, command, launcher.TerminalOptions{
		Title:    *title,
		Dir:      *cwd,
		Wait:     *wait,
		KeepOpen: *keepOpen,
	})

	if res.StartFailure {
		return fmt.Errorf("failed to start terminal for %q (log: %s)", command, res.LogPath)
	}
	log.Printf("pid %d exited with code %d (log: %s)", res.PID, res.ExitCode, res.LogPath)
	if !res.Success {
		os.Exit(exitStatus(res.ExitCode))
	}
	return nil
}

// --- batch ---

func batchMain(args []string) error {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	cwd := fs.String("cwd", "", "working directory for every command")
	stopOnError := fs.Bool("stop-on-error", false, "abort at the first failing command")
	verbose := fs.Bool("v", false, "echo output while commands run")
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("no commands given")
	}

	cmds := make([]supervisor.BatchCommand, 0, fs.NArg())
	for _, c := range fs.Args() {
		cmds = append(cmds, supervisor.BatchCommand{Command: c, Dir: *cwd})
	}

	sup, err := newSupervisor()
	if err != nil {
		return err
	}
	defer sup.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, runErr := sup.RunCommands(ctx, cmds, supervisor.BatchOptions{
		StopOnError: *stopOnError,
		Verbose:     *verbose,
	})

	failed := false
	for _, r := range results {
		if r.Success {
			fmt.Printf("  ok    %s\n", r.Command)
		} else {
			failed = true
			fmt.Printf("  FAIL  %s (exit %d)\n", r.Command, r.Code)
			if !*verbose && r.Stderr != "" {
				fmt.Fprint(os.Stderr, r.Stderr)
			}
		}
	}
	if runErr != nil {
		return runErr
	}
	if failed {
		os.Exit(1)
	}
	return nil
}

// --- which ---

func whichMain(args []string) error {
	fs := flag.NewFlagSet("which", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: foreman which <name>")
	}
	name := fs.Arg(0)

	sup, err := newSupervisor()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !sup.IsCommandAvailable(ctx, name) {
		fmt.Printf("%s: not available\n", name)
		os.Exit(1)
	}
	fmt.Printf("%s: available\n", name)
	return nil
}

// --- mcp ---

func mcpMain(args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	instructions := fs.Bool("instructions", false, "print model instructions and exit")
	httpAddr := fs.String("http", "", "start HTTP server on address (e.g. :9090)")
	_ = fs.Parse(args)

	if *instructions {
		fmt.Print(fmmcp.Instructions)
		return nil
	}

	sup, err := newSupervisor()
	if err != nil {
		return err
	}
	defer sup.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	server := fmmcp.NewServer(sup)

	if *httpAddr != "" {
		return serveHTTP(ctx, server, *httpAddr)
	}
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}

func serveHTTP(ctx context.Context, server *mcpsdk.Server, addr string) error {
	handler := mcpsdk.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcpsdk.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	log.Printf("listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
