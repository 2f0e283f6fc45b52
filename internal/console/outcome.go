package console

// Status enumerates dispatch outcomes.
type Status int

const (
	Success Status = iota
	CommandNotFound
	ArityMismatch
	ArgumentFailed
	HandlerFailed
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case CommandNotFound:
		return "command not found"
	case ArityMismatch:
		return "arity mismatch"
	case ArgumentFailed:
		return "argument error"
	case HandlerFailed:
		return "handler error"
	default:
		return "unknown"
	}
}

// Outcome is the single result of one sub-command. Output is set only on
// Success; err carries the typed error for every other status.
type Outcome struct {
	Status  Status
	Command string
	Input   string
	Output  string
	err     error
}

func succeeded(cmd, input, output string) Outcome {
	return Outcome{Status: Success, Command: cmd, Input: input, Output: output}
}

func failed(status Status, cmd, input string, err error) Outcome {
	return Outcome{Status: status, Command: cmd, Input: input, err: err}
}

// OK reports whether the sub-command succeeded.
func (o Outcome) OK() bool { return o.Status == Success }

// Err returns nil on success, otherwise one of *CommandNotFoundError,
// *ArityError, *ArgumentError or *HandlerError.
func (o Outcome) Err() error { return o.err }

// Line renders the outcome as a single line for the console. A successful
// outcome with no output renders as "".
func (o Outcome) Line() string {
	if o.err != nil {
		return "Error: " + o.err.Error()
	}
	return o.Output
}
