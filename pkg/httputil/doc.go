// Package httputil provides the HTTP plumbing shared by every outbound client.
//
// # Overview
//
//   - [RetryPolicy]: how many times to retry, how long to back off and which
//     statuses count as transient
//   - [RetryTransport]: an [http.RoundTripper] applying a [RetryPolicy]
//   - [NewTransport]: the base transport with connect and read timeouts
//   - [Retry]: the generic retry loop the transport is built on
//
// # Retry
//
// The default policy retries 3 times with a backoff factor of one second,
// doubling after each attempt (1s, 2s, 4s). It retries on network errors and
// on 500 and 502 responses:
//
//	rt := httputil.NewRetryTransport(httputil.NewTransport(httputil.DefaultTimeouts()),
//	    httputil.DefaultRetryPolicy())
//	client := &http.Client{Transport: rt}
//
// Status retries apply to idempotent methods only. A request that never
// reached the server (dial failure) is retried for every method.
//
// # Timeouts
//
// [Timeouts] carries a connect timeout (15s) and a read timeout (30s). The
// read timeout bounds the wait for response headers once the request is sent.
package httputil
