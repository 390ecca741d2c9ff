package flatten

import (
	"github.com/walteh/liquidscope/pkg/include"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
)

// Skipped is an include that contributed nothing to the result.
type Skipped struct {
	// File is the file the include appears in.
	File      string
	Statement include.Statement
	// Err is the read or parse failure, nil when the part was simply not found.
	Err error
}

// Report lists what a flatten had to leave out. None of it fails the flatten.
type Report struct {
	Skipped []Skipped
	Cycles  []Skipped
}

// Err combines every skipped include and cycle into one error, nil if the
// template flattened cleanly.
func (r *Report) Err() error {
	if r == nil {
		return nil
	}
	var err error
	for _, s := range r.Skipped {
		if s.Err != nil {
			err = multierr.Append(err, errors.Errorf("%w: %q at %s:%d: %s", ErrMissingPart, s.Statement.IncludePath, s.File, s.Statement.Line, s.Err.Error()))
			continue
		}
		err = multierr.Append(err, errors.Errorf("%w: %q at %s:%d", ErrMissingPart, s.Statement.IncludePath, s.File, s.Statement.Line))
	}
	for _, c := range r.Cycles {
		err = multierr.Append(err, errors.Errorf("%w: %q at %s:%d", ErrCycle, c.Statement.IncludePath, c.File, c.Statement.Line))
	}
	return err
}
