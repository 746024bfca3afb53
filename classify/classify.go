// Package classify turns the raw signals of a finished external call
// (exit code, captured stdout/stderr) into a classified outcome node.
//
// External CLI tools report ambiguous exit codes, so the classifier
// prefers the tool's own structured payload over the OS exit code whenever
// both are available, and only falls back to the exit code when no payload
// exists.
package classify

import (
	"github.com/pkg/errors"

	"github.com/mensylisir/xmrecipes/executor"
	"github.com/mensylisir/xmrecipes/outcome"
	"github.com/mensylisir/xmrecipes/util"
)

// rawBufferLimit caps raw stdout/stderr captured into the detail record.
const rawBufferLimit = 8192

// Command classifies a finished external call into an EXECUTOR-kind node:
//
//   - non-zero exit + recognizable payload         → FAILURE
//   - non-zero exit, no recognizable payload       → ERROR (transport)
//   - zero exit, unparseable or absent payload     → ERROR (masquerading)
//   - zero exit, payload reports non-zero status   → ERROR (same rationale)
//   - otherwise                                    → SUCCESS
func Command(name string, res *executor.Result) *outcome.Node {
	node := outcome.New(name, outcome.KindExecutor, outcome.Options{StartNow: true})
	_ = node.Put("cmd", res.Cmd)
	_ = node.Put("exit_code", res.ExitCode)

	payload, parsed := outcome.LastJSONObject(res.Stdout)
	status, recognizable := 0, false
	if parsed {
		status, recognizable = outcome.ToolStatus(payload)
	}

	if res.ExitCode != 0 {
		if recognizable {
			// The payload is authoritative: an expected, tool-reported
			// failure even though the shell also flagged it.
			_ = node.Failure(payload.Merge(rawDetail(res)))
			return node
		}
		_ = node.Error(transportError(res))
		return node
	}

	if !recognizable {
		// The shell success bit is not trustworthy without a payload.
		d := rawDetail(res)
		if parsed {
			d = payload.Merge(d)
		}
		d["unparsed"] = !parsed
		_ = node.Put("raw", d)
		_ = node.Error(errors.Errorf("command %q reported exit 0 but produced no recognizable payload", res.Cmd))
		return node
	}

	if status != 0 {
		_ = node.Put("raw", payload.Merge(rawDetail(res)))
		_ = node.Error(errors.Errorf("command %q reported exit 0 but its payload carries status %d", res.Cmd, status))
		return node
	}

	_ = node.Success(payload)
	return node
}

func transportError(res *executor.Result) error {
	if res.Signal != "" {
		return errors.Errorf("command %q killed by signal %s (exit %d): %s",
			res.Cmd, res.Signal, res.ExitCode, util.TruncateString(res.Stderr, 512, "..."))
	}
	return errors.Errorf("command %q failed with exit %d and no recognizable payload: %s",
		res.Cmd, res.ExitCode, util.TruncateString(res.Stderr, 512, "..."))
}

func rawDetail(res *executor.Result) outcome.Detail {
	return outcome.Detail{
		"stdout": util.TruncateString(res.Stdout, rawBufferLimit, "..."),
		"stderr": util.TruncateString(res.Stderr, rawBufferLimit, "..."),
		"signal": res.Signal,
	}
}
