// Package broker wraps the external pub/sub network behind a small client:
// capability token issuance, fire-and-forget channel publish, and a cached
// view of the gateway's own connection state.
//
// The client is constructed once at process start and passed by handle into
// request-scoped operations. When no shared broker key is configured the
// client runs degraded: IssueToken and Publish return ErrNotConfigured
// outcomes instead of crashing, and ConnectionState reads not_configured.
package broker
