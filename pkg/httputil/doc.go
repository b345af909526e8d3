// Package httputil provides HTTP utilities shared by the generation client
// and the API client.
//
// # Overview
//
//   - [Retry]: retry with exponential backoff for errors marked retryable
//   - [RetryableStatus]: which HTTP status codes are worth retrying
//   - [Transport]: a RoundTripper that reports requests to the
//     observability HTTP hooks
//
// # Retry
//
// [Retry] only repeats failures wrapped in [RetryableError]; everything else
// is returned at once. Callers decide what is transient, typically with
// [RetryableStatus]:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := call(ctx)
//	    if err != nil && httputil.RetryableStatus(statusOf(err)) {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    return err
//	})
//
// # Instrumentation
//
// Wrap a client's transport to feed request, response and error events to
// whatever hooks main registered:
//
//	client := &http.Client{Transport: httputil.NewTransport(nil)}
package httputil
