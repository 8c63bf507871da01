package telemetry

import (
	"fmt"
)

// API is what every component reports through instead of logging directly,
// so tests can swap in a Recorder and assert on what was reported.
//
// Ids name the component and operation, not the failing line: "crawler.run",
// "client.detail", "theater-resolver.resolve". Lowercase, dots between the
// type and the method, dashes inside multi-word names. Wrap the error or add
// params to say more. Wrap the API in a ScopedAPI per package so ids from
// different packages cannot collide.
//
// A failure is reported once, by the component that produced it. Callers
// that only pass an error along return it without reporting it again.
type API interface {
	// ReportBroken reports a failure that needs fixing, a changed page layout
	// or an unreachable host.
	ReportBroken(id string, params ...any)

	// ReportWarning reports something unexpected that the caller recovered
	// from, a corrupt table moved aside or a renamed theater.
	ReportWarning(id string, params ...any)

	// ReportDebug reports progress, only shown with --verbose.
	ReportDebug(msg string, params ...any)

	// ReportCount reports a gauge-like count at this point in time, counts
	// from separate calls are not meant to be summed.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id with a namespace, "catalog: movies.append".
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) scope(id string) string {
	return fmt.Sprintf("%s: %s", s.namespace, id)
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.scope(id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.scope(id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(s.scope(msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(s.scope(id), count)
}
