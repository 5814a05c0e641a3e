package cmd

import (
	"errors"
	"fmt"

	"github.com/sarchlab/rawmem/connector"
	"github.com/sarchlab/rawmem/mem/physmem"
	"github.com/sarchlab/rawmem/tracing"
)

// A session is a memory opened by a command, together with its optional
// access tracer.
type session struct {
	memory *physmem.Memory
	tracer *tracing.AccessTracer
}

// openSession creates the memory described by the configuration. If tracing
// is enabled, a tracer is attached to the memory.
func openSession(c config) (*session, error) {
	m, err := connector.Create(c.connectorArgs())
	if err != nil {
		return nil, err
	}

	s := &session{memory: m}
	if c.Trace == "" {
		return s, nil
	}

	writer, err := newTraceWriter(c.TraceFormat, c.Trace)
	if err == nil {
		err = writer.Init()
	}

	if err != nil {
		return nil, errors.Join(
			fmt.Errorf("creating trace: %w", err), m.Close())
	}

	s.tracer = tracing.NewAccessTracer(writer)
	m.AcceptHook(s.tracer)

	return s, nil
}

// Close flushes the trace and releases the memory. The trace keeps the
// accesses that failed, so Close must run on every exit path.
func (s *session) Close() error {
	if s.tracer != nil {
		s.tracer.Terminate()
	}

	return s.memory.Close()
}

func newTraceWriter(format, path string) (tracing.TraceWriter, error) {
	switch format {
	case "", "sqlite":
		return tracing.NewSQLiteWriter(path), nil
	case "csv":
		return tracing.NewCSVWriter(path), nil
	default:
		return nil, fmt.Errorf("unknown trace format %q", format)
	}
}

// closeSession closes s and keeps the first error.
func closeSession(s *session, err *error) {
	if cerr := s.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}
