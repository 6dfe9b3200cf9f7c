package core

import "log/slog"

// FailureLatch reports a collaborator failure once per condition change.
//
// A render loop calls Report every block with the collaborator's ok flag.
// The first failing block logs a warning; further failing blocks stay quiet
// until a successful block clears the latch, which is logged at info level.
type FailureLatch struct {
	logger *slog.Logger
	msg    string
	attrs  []any
	failed bool
}

// NewFailureLatch returns a latch logging msg with the given attributes.
func NewFailureLatch(logger *slog.Logger, msg string, attrs ...any) *FailureLatch {
	if logger == nil {
		logger = slog.Default()
	}

	return &FailureLatch{logger: logger, msg: msg, attrs: attrs}
}

// Report records the outcome of one lookup and returns true when the
// condition changed.
func (l *FailureLatch) Report(ok bool) bool {
	if ok {
		if !l.failed {
			return false
		}
		l.failed = false
		l.logger.Info(l.msg+" recovered", l.attrs...)
		return true
	}

	if l.failed {
		return false
	}

	l.failed = true
	l.logger.Warn(l.msg, l.attrs...)

	return true
}

// Failed reports whether the latch is currently in the failed state.
func (l *FailureLatch) Failed() bool { return l.failed }

// Reset clears the latch without logging.
func (l *FailureLatch) Reset() { l.failed = false }
