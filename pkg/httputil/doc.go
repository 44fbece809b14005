// Package httputil provides the HTTP plumbing used to fetch remote tier
// catalogs.
//
// # Overview
//
//   - [Client]: JSON GET with status classification and automatic retry
//   - [Retry]: exponential backoff for transient failures
//
// # Retry
//
// Only errors wrapped in [RetryableError] are retried. [Client] wraps
// network failures and 5xx responses; 4xx responses fail immediately.
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := http.Get(url)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    defer resp.Body.Close()
//	    return decode(resp.Body)
//	})
package httputil
