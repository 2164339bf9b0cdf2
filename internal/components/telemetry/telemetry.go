// Package telemetry is the reporting interface components receive, so that
// what a pipeline reports (skips, breakages, counts) can be asserted on in tests.
package telemetry

// API is an abstraction over logging/metrics.
type API interface {
	// ReportBroken reports something that stopped a component from doing its
	// job and should be looked at.
	//
	// The `id` names the component and method that broke, not the specific
	// line. ex. a failed docsum request in the ncbi client is
	// `client.fetch-summary`, the assembly id and the failure go in params.
	//
	// Formatting rules:
	// 1) all lowercase
	// 2) a dot separates the component from the method
	// 3) use dashes between words of a method
	ReportBroken(id string, params ...any)

	// ReportWarning reports something that went wrong without stopping the
	// component, like a record skipped because a lookup failed.
	//
	// For what value to provide as `id` refer to ReportBroken.
	ReportWarning(id string, params ...any)

	// ReportDebug reports information that is hidden unless running verbose.
	ReportDebug(msg string, params ...any)

	// ReportCount reports the current count of a specific event.
	//
	// For what value to provide as `id` refer to ReportBroken.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes everything reported through it with a namespace, usually
// the package of the component ("ncbi: client.fetch-summary").
type ScopedAPI struct {
	namespace string
	inner     API
}

// NewScopedAPI creates a ScopedAPI, scoping an already scoped API nests the
// namespaces.
func NewScopedAPI(namespace string, inner API) ScopedAPI {
	if scoped, ok := inner.(ScopedAPI); ok {
		return ScopedAPI{namespace: scoped.namespace + "/" + namespace, inner: scoped.inner}
	}
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) scope(id string) string {
	return s.namespace + ": " + id
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
