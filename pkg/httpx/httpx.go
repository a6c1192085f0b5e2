// Package httpx lets transport-neutral handlers serve under both
// net/http and fasthttp. The service uses it for its health/readiness
// probes, which are exposed on the main mux and optionally on a
// dedicated fasthttp probe listener.
package httpx

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/valyala/fasthttp"
)

// Request is the unified request representation used by handlers.
type Request struct {
	Ctx        context.Context
	Method     string
	Path       string
	Header     http.Header
	Body       io.ReadCloser
	RemoteAddr string
}

// ResponseWriter is the subset of http.ResponseWriter semantics the
// adapters guarantee.
type ResponseWriter interface {
	Header() http.Header
	Write([]byte) (int, error)
	WriteHeader(status int)
}

// HandlerFunc is the transport-neutral handler signature.
type HandlerFunc func(w ResponseWriter, r *Request)

// NetHTTP adapts a HandlerFunc into a standard net/http handler.
func NetHTTP(h HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := &Request{
			Ctx:        r.Context(),
			Method:     r.Method,
			Path:       r.URL.Path,
			Header:     r.Header.Clone(),
			Body:       r.Body,
			RemoteAddr: r.RemoteAddr,
		}
		h(&netWriter{w: w}, req)
	})
}

type netWriter struct {
	w      http.ResponseWriter
	status int
}

func (n *netWriter) Header() http.Header { return n.w.Header() }

func (n *netWriter) WriteHeader(status int) {
	n.status = status
	n.w.WriteHeader(status)
}

func (n *netWriter) Write(b []byte) (int, error) {
	if n.status == 0 {
		n.WriteHeader(http.StatusOK)
	}
	return n.w.Write(b)
}

// FastHTTP adapts a HandlerFunc into a fasthttp.RequestHandler.
func FastHTTP(h HandlerFunc) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		cctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		hdr := make(http.Header)
		ctx.Request.Header.VisitAll(func(k, v []byte) {
			hdr.Add(string(k), string(v))
		})

		req := &Request{
			Ctx:        cctx,
			Method:     string(ctx.Method()),
			Path:       string(ctx.Path()),
			Header:     hdr,
			Body:       io.NopCloser(bytes.NewReader(ctx.PostBody())),
			RemoteAddr: ctx.RemoteAddr().String(),
		}
		h(&fastWriter{ctx: ctx, header: make(http.Header)}, req)
	}
}

type fastWriter struct {
	ctx    *fasthttp.RequestCtx
	header http.Header
	status int
}

func (f *fastWriter) Header() http.Header { return f.header }

func (f *fastWriter) WriteHeader(status int) {
	f.status = status
	for k, vals := range f.header {
		for _, v := range vals {
			f.ctx.Response.Header.Add(k, v)
		}
	}
	f.ctx.SetStatusCode(status)
}

func (f *fastWriter) Write(b []byte) (int, error) {
	if f.status == 0 {
		f.WriteHeader(http.StatusOK)
	}
	return f.ctx.Write(b)
}
