// Package pipeline implements the Module Pipeline Framework (§4.I): an
// ordered, configurable chain of security modules, each producing a tagged
// Result rather than the (bool, *Response, error) tuple shape the teacher's
// hook types use elsewhere in the corpus — per the "result as a variant
// type, not a boolean plus nilable fields" re-architecture note.
package pipeline

import (
	"context"
	"errors"
	"time"
)

// Context is the mutable, pipeline-owned processing context threaded
// through every module in a single request's traversal. The pipeline
// exclusively owns it; modules receive a borrow for the duration of their
// Process call.
type Context struct {
	RequestID string
	ClientIP  string
	Arrived   time.Time

	Op interface{}

	Flags   map[string]bool
	Metrics map[string]float64
	Scratch map[string]interface{}
}

// NewContext builds an empty, ready-to-use Context.
func NewContext(requestID, clientIP string, op interface{}) *Context {
	return &Context{
		RequestID: requestID,
		ClientIP:  clientIP,
		Arrived:   time.Now(),
		Op:        op,
		Flags:     map[string]bool{},
		Metrics:   map[string]float64{},
		Scratch:   map[string]interface{}{},
	}
}

// resultKind tags which variant a Result holds.
type resultKind int

const (
	kindContinue resultKind = iota
	kindTerminate
	kindTerminateErr
)

// Result is the tagged union a module's Process returns: exactly one of
// "keep going", "stop with a response", or "stop with an error". There is
// deliberately no way to construct a Result holding both a response and an
// error, or neither.
type Result struct {
	kind     resultKind
	response interface{}
	err      error
}

func Continue() Result { return Result{kind: kindContinue} }

func Terminate(response interface{}) Result {
	return Result{kind: kindTerminate, response: response}
}

func TerminateErr(err error) Result {
	return Result{kind: kindTerminateErr, err: err}
}

func (r Result) IsContinue() bool { return r.kind == kindContinue }
func (r Result) IsTerminate() bool { return r.kind == kindTerminate }
func (r Result) IsTerminateErr() bool { return r.kind == kindTerminateErr }

// Response returns the terminating response and true, if this Result is a
// Terminate variant.
func (r Result) Response() (interface{}, bool) {
	if r.kind != kindTerminate {
		return nil, false
	}
	return r.response, true
}

// Err returns the terminating error and true, if this Result is a
// TerminateErr variant.
func (r Result) Err() (error, bool) {
	if r.kind != kindTerminateErr {
		return nil, false
	}
	return r.err, true
}

// ErrModuleTimeout is wrapped into a TerminateErr result naming the module
// that exceeded its configured wall-clock budget.
var ErrModuleTimeout = errors.New("pipeline: module exceeded its timeout")

// ErrNoTerminatingModule is returned by Run when every module returns
// Continue and the traversal reaches the end without a response: the last
// module is contractually expected to produce one.
var ErrNoTerminatingModule = errors.New("pipeline: traversal completed without a terminating module")

// Module is one pipeline stage.
type Module interface {
	Name() string
	Priority() int
	Enabled() bool
	ShouldProcess(ctx context.Context, pctx *Context) bool
	Process(ctx context.Context, pctx *Context) Result
	Initialize(settings map[string]interface{}) error
	Shutdown(ctx context.Context) error
}
