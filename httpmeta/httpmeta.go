// Package httpmeta implements the HTTP header <-> meta-field mapping shared
// by every tunneled transport's http.go (§6): Content-Type <-> data type,
// Content-Encoding <-> compress type, and the request-URI <-> service/method
// split. Each transport's own http.go layers its protocol-specific headers
// (trpc-*, SRPC-Status/SRPC-Error, ...) on top of this.
package httpmeta

import (
	"strings"

	"github.com/go-srpc/srpc/compress"
	"github.com/go-srpc/srpc/rpc"
	"github.com/go-srpc/srpc/status"
)

// ContentType renders dt as the Content-Type header value this module
// writes on the wire.
func ContentType(dt rpc.DataType) string {
	switch dt {
	case rpc.Thrift:
		return "application/x-thrift"
	case rpc.JSON:
		return "application/json"
	default:
		return "application/x-protobuf"
	}
}

// ParseContentType recognizes the Protobuf/Thrift/JSON aliases named in §6.
func ParseContentType(v string) (rpc.DataType, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "application/x-protobuf", "application/proto", "application/pb", "":
		return rpc.Protobuf, true
	case "application/x-thrift":
		return rpc.Thrift, true
	case "application/json":
		return rpc.JSON, true
	default:
		return 0, false
	}
}

// ContentEncoding renders t as the Content-Encoding header value.
func ContentEncoding(t compress.Type) string {
	switch t {
	case compress.Snappy:
		return "x-snappy"
	case compress.Gzip:
		return "gzip"
	case compress.Zlib:
		return "deflate"
	case compress.LZ4:
		return "x-lz4"
	default:
		return "identity"
	}
}

// ParseContentEncoding is ContentEncoding's inverse.
func ParseContentEncoding(v string) (compress.Type, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "identity":
		return compress.None, true
	case "x-snappy":
		return compress.Snappy, true
	case "gzip":
		return compress.Gzip, true
	case "deflate":
		return compress.Zlib, true
	case "x-lz4":
		return compress.LZ4, true
	default:
		return 0, false
	}
}

// SplitServiceMethod splits a request-URI path on its last "/" into
// service and method, ignoring query/fragment (the caller is expected to
// have already stripped those via net/url) and trimming one trailing slash.
// An empty path, or one with no method segment, is URIInvalid.
func SplitServiceMethod(path string) (service, method string, err error) {
	path = strings.TrimSuffix(path, "/")
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return "", "", status.New(status.URIInvalid, nil)
	}
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return "", "", status.New(status.URIInvalid, nil)
	}
	service, method = path[:idx], path[idx+1:]
	if service == "" || method == "" {
		return "", "", status.New(status.URIInvalid, nil)
	}
	return service, method, nil
}
