package bisect

import (
	"fmt"
	"os"
	"strings"

	"github.com/joescharf/sb/internal/dispatch"
	"github.com/joescharf/sb/internal/errs"
)

// Replay executes an audit log through the same operations used for live
// commands, reproducing the recorded session from an empty slot. The
// interpreter directive and comment lines are skipped; everything else must
// be a valid invocation of the session command surface.
func (a *App) Replay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read log: %w", err)
	}

	// Term names come into scope once the start line executes; until then
	// only the built-in vocabulary resolves.
	badTerm, goodTerm := "", ""

	for i, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		verb, err := dispatch.Resolve(fields[0], badTerm, goodTerm)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", path, i+1, err)
		}
		args := fields[1:]

		var opErr error
		switch verb {
		case "start":
			var opts StartOptions
			opts, opErr = parseStartArgs(args)
			if opErr == nil {
				_, opErr = a.Start(opts)
				badTerm, goodTerm = opts.TermBad, opts.TermGood
			}
		case "bad":
			_, opErr = a.MarkBad(firstArg(args))
		case "good":
			_, opErr = a.MarkGood(firstArg(args))
		case "skip":
			_, opErr = a.Skip(args)
		case "unskip":
			_, opErr = a.Unskip(args)
		default:
			return errs.New(errs.CodeUnknownCommand,
				"%s:%d: %q cannot appear in an audit log", path, i+1, verb)
		}

		if opErr != nil {
			if errs.Advisory(opErr) {
				a.UI.Warning("%s:%d: %v", path, i+1, opErr)
				continue
			}
			return fmt.Errorf("%s:%d: %w", path, i+1, opErr)
		}
	}
	return nil
}

// parseStartArgs parses the flag grammar the audit log writer emits for
// start lines.
func parseStartArgs(args []string) (StartOptions, error) {
	var opts StartOptions
	for _, arg := range args {
		key, val, ok := strings.Cut(arg, "=")
		if !ok {
			return opts, fmt.Errorf("malformed start argument %q", arg)
		}
		switch key {
		case "--bad":
			opts.Bad = val
		case "--good":
			opts.Good = val
		case "--term-bad":
			opts.TermBad = val
		case "--term-good":
			opts.TermGood = val
		default:
			return opts, fmt.Errorf("unknown start flag %q", key)
		}
	}
	return opts, nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
