// splinetool is a CLI utility for authoring and inspecting spline files.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/splinetool/internal/config"
	"github.com/Faultbox/splinetool/internal/logger"
)

// usageError is returned for malformed command arguments.
type usageError struct {
	synopsis string
}

func (e *usageError) Error() string { return "usage: splinetool " + e.synopsis }

func usage(synopsis string) error { return &usageError{synopsis} }

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := config.Args()
	if len(args) < 1 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if err := run(cfg, args, os.Stdout); err != nil {
		var ue *usageError
		if errors.As(err, &ue) {
			fmt.Fprintln(os.Stderr, ue)
			os.Exit(2)
		}
		logger.Error("command failed", zap.String("command", args[0]), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}
}

// run dispatches one command.
func run(cfg *config.Config, args []string, out io.Writer) error {
	command, rest := args[0], args[1:]
	t := &tool{cfg: cfg, out: out}

	switch command {
	case "new":
		return t.cmdNew(rest)
	case "info":
		return t.cmdInfo(rest)
	case "sample":
		return t.cmdSample(rest)
	case "append":
		return t.cmdAppend(rest)
	case "insert":
		return t.cmdInsert(rest)
	case "remove", "rm":
		return t.cmdRemove(rest)
	case "branch":
		return t.cmdBranch(rest)
	case "connect":
		return t.cmdConnect(rest)
	case "move":
		return t.cmdMove(rest)
	case "turn":
		return t.cmdTurn(rest)
	case "mode":
		return t.cmdMode(rest)
	case "import":
		return t.cmdImport(rest)
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	default:
		printUsage(os.Stderr)
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `splinetool - Bézier spline authoring utility

Usage:
  splinetool [flags] <command> [arguments]

Commands:
  new <file>                              Write a set with one default spline
  info <file>                             Show splines, lengths and junctions
  sample <file> <spline>                  Print frames every -step units
  append <file> <spline>                  Extend a spline by one point
  insert <file> <spline> <index>          Insert a point before index
  remove <file> <spline> <point>          Remove a point (cascades)
  branch <file> <spline> <point>          Start a new spline junctioned to a point
  connect <file> <s1> <p1> <s2> <p2>      Junction two points
  move <file> <spline> <point> <x> <y> <z> Move an anchor (and its junction)
  turn <file> <spline> <point> <degrees>  Yaw a point (and its junction) about +Y
  mode <file> <spline> <point> <mode>     Set free, aligned or mirrored
  import <file> <points.txt>              Replace the set with a polyline fit

Flags:
  -config <path>      Config file
  -debug              Debug logging
  -resolution <n>     Arc-length samples per segment
  -step <d>           Sample spacing
  -log <path>         Log file
  -dir <path>         Directory for relative file arguments

Examples:
  splinetool new road.yaml
  splinetool branch road.yaml 0 1
  splinetool -step 0.5 sample road.yaml 0`)
}
