// Package handlers implements the HTTP endpoints: thumbnail retrieval and
// the health probes. The thumbnail handler is a thin synchronous shim over
// the asynchronous extractor; it waits on the result channel under the
// request context, so the client's timeout bounds the wait.
package handlers
