package cache

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/textproto"
	"strconv"

	"github.com/matzehuels/autobuild/pkg/observability"
)

// HeaderCacheStatus is set on responses served from the store after a 304.
const HeaderCacheStatus = "X-Autobuild-Cache"

// hopByHopHeaders are not stored with an entry.
var hopByHopHeaders = map[string]struct{}{
	"Connection":          {},
	"Keep-Alive":          {},
	"Proxy-Authenticate":  {},
	"Proxy-Authorization": {},
	"Te":                  {},
	"Trailer":             {},
	"Transfer-Encoding":   {},
	"Upgrade":             {},
}

// Transport returns a round tripper that revalidates requests against the
// handle's store before handing them to next. Once the handle is closed the
// returned transport passes requests through untouched.
func (h *Handle) Transport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &revalidatingTransport{handle: h, next: next}
}

type revalidatingTransport struct {
	handle *Handle
	next   http.RoundTripper
}

func (t *revalidatingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !cacheable(req) || !t.handle.Active() {
		return t.next.RoundTrip(req)
	}

	ctx := req.Context()
	hooks := observability.Cache()
	key := Fingerprint(req)
	url := req.URL.String()

	entry, found := t.handle.lookup(ctx, key)
	if !found {
		hooks.OnCacheMiss(ctx, url)
		resp, err := t.next.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		return t.store(req, key, resp)
	}

	cond := req.Clone(ctx)
	if entry.ETag != "" {
		cond.Header.Set("If-None-Match", entry.ETag)
	}
	if entry.LastModified != "" {
		cond.Header.Set("If-Modified-Since", entry.LastModified)
	}

	resp, err := t.next.RoundTrip(cond)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusNotModified:
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		hooks.OnCacheRevalidated(ctx, url, true)
		hooks.OnCacheHit(ctx, url)
		t.handle.touch(ctx, key)
		return entry.response(req), nil
	case http.StatusOK:
		hooks.OnCacheRevalidated(ctx, url, false)
		return t.store(req, key, resp)
	default:
		return resp, nil
	}
}

// store saves a 200 response with validators and returns it with a replayable body.
func (t *revalidatingTransport) store(req *http.Request, key string, resp *http.Response) (*http.Response, error) {
	etag := resp.Header.Get("ETag")
	lastModified := resp.Header.Get("Last-Modified")
	if resp.StatusCode != http.StatusOK || (etag == "" && lastModified == "") {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", req.URL, err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	ctx := req.Context()
	t.handle.save(ctx, &Entry{
		Key:          key,
		Method:       req.Method,
		URL:          req.URL.String(),
		Status:       resp.StatusCode,
		Header:       storedHeader(resp.Header),
		Body:         body,
		ETag:         etag,
		LastModified: lastModified,
	})
	observability.Cache().OnCacheSet(ctx, req.URL.String(), len(body))
	return resp, nil
}

// response rebuilds the stored response for req.
func (e *Entry) response(req *http.Request) *http.Response {
	header := e.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	header.Set(HeaderCacheStatus, "revalidated")
	if req.Method != http.MethodHead {
		header.Set("Content-Length", strconv.Itoa(len(e.Body)))
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status)),
		StatusCode:    e.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}

// cacheable reports whether req may use the store. Requests that already
// carry validators are left to the caller.
func cacheable(req *http.Request) bool {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return false
	}
	return req.Header.Get("If-None-Match") == "" && req.Header.Get("If-Modified-Since") == ""
}

func storedHeader(src http.Header) http.Header {
	dst := make(http.Header, len(src))
	for key, values := range src {
		if _, ok := hopByHopHeaders[textproto.CanonicalMIMEHeaderKey(key)]; ok {
			continue
		}
		dst[key] = append([]string(nil), values...)
	}
	return dst
}
