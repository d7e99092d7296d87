package otelme

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/arloliu/otelme/internal/tracker"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// Scope brackets a span. Open it, then defer Close directly:
//
//	func UpdateUser(ctx context.Context, u User) (err error) {
//	    ctx, s := otelme.Open(ctx, "update_user_record")
//	    defer s.Close(&err)
//	    ...
//	}
//
// Close never alters the outcome of the scoped code: a returned error is
// left as is and a panic keeps unwinding after it has been recorded.
type Scope struct {
	span trace.Span
}

// Open starts a span named name (through the configured namer) and makes
// it current in the returned context.
func Open(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, *Scope) {
	ctx, span := tracker.Start(ctx, name, opts...)

	return ctx, &Scope{span: span}
}

// Span returns the span opened by s.
func (s *Scope) Span() trace.Span {
	return s.span
}

// Close ends the span. If *errp holds an error, or the surrounding function
// is panicking, an exception event with type, message and stack trace is
// recorded and the span status is set to Error first. A panic is re-raised
// with its original value.
//
// Close must be called directly by a defer statement; errp may be nil.
func (s *Scope) Close(errp *error) {
	if r := recover(); r != nil {
		s.recordPanic(r)
		s.span.End()
		panic(r)
	}

	if errp != nil && *errp != nil {
		err := *errp
		s.span.RecordError(err, trace.WithStackTrace(true))
		s.span.SetStatus(codes.Error, err.Error())
	}
	s.span.End()
}

func (s *Scope) recordPanic(r any) {
	msg := fmt.Sprint(r)
	if err, ok := r.(error); ok {
		msg = err.Error()
	}

	s.span.AddEvent(semconv.ExceptionEventName, trace.WithAttributes(
		semconv.ExceptionTypeKey.String(fmt.Sprintf("%T", r)),
		semconv.ExceptionMessageKey.String(msg),
		semconv.ExceptionStacktraceKey.String(string(debug.Stack())),
	))
	s.span.SetStatus(codes.Error, msg)
}

// Run calls fn inside a span named name. The error from fn is returned
// unchanged and panics propagate; both are recorded on the span first.
func Run(ctx context.Context, name string, fn func(context.Context) error) (err error) {
	ctx, s := Open(ctx, name)
	defer s.Close(&err)

	return fn(ctx)
}

// Wrap returns fn wrapped so every call runs inside a span named name.
// An empty name uses the name of fn itself.
func Wrap(name string, fn func(context.Context) error) func(context.Context) error {
	if name == "" {
		name = funcName(fn)
	}

	return func(ctx context.Context) error {
		return Run(ctx, name, fn)
	}
}

// WrapValue is Wrap for functions that also return a value.
func WrapValue[T any](name string, fn func(context.Context) (T, error)) func(context.Context) (T, error) {
	if name == "" {
		name = funcName(fn)
	}

	return func(ctx context.Context) (v T, err error) {
		ctx, s := Open(ctx, name)
		defer s.Close(&err)

		return fn(ctx)
	}
}

// funcName returns the unqualified name of fn, e.g. "checkout" for
// "github.com/acme/shop.checkout" or "(*Cart).Total" for a method value.
func funcName(fn any) string {
	f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if f == nil {
		return "anonymous"
	}

	name := f.Name()
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}

	return strings.TrimSuffix(name, "-fm")
}
