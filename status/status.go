// Package status defines the closed status-code taxonomy shared by every
// transport in this module (§3/§4.6/§6/§7 of the design), and the typed
// errors built on top of it.
package status

import (
	"errors"

	"github.com/joomcode/errorx"
)

// Code is a shared RPC status code. The enumeration is closed: every value
// a caller can observe from this module is one of the constants below.
type Code int

const (
	Undefined       Code = 0
	OK              Code = 1
	ServiceNotFound Code = 2
	MethodNotFound  Code = 3
	MetaError       Code = 4

	ReqCompressSizeInvalid    Code = 5
	ReqDecompressSizeInvalid  Code = 6
	ReqCompressNotSupported   Code = 7
	ReqDecompressNotSupported Code = 8
	ReqCompressError          Code = 9
	ReqDecompressError        Code = 10
	ReqSerializeError         Code = 11
	ReqDeserializeError       Code = 12

	RespCompressSizeInvalid    Code = 13
	RespDecompressSizeInvalid  Code = 14
	RespCompressNotSupported   Code = 15
	RespDecompressNotSupported Code = 16
	RespCompressError          Code = 17
	RespDecompressError        Code = 18
	RespSerializeError         Code = 19
	RespDeserializeError       Code = 20

	IDLSerializeNotSupported   Code = 21
	IDLDeserializeNotSupported Code = 22

	URIInvalid        Code = 30
	UpstreamFailed    Code = 31
	SystemError       Code = 100
	SSLError          Code = 101
	DNSError          Code = 102
	ProcessTerminated Code = 103
)

var codeStrings = map[Code]string{
	Undefined:       "status undefined",
	OK:              "status ok",
	ServiceNotFound: "service not found",
	MethodNotFound:  "method not found",
	MetaError:       "meta error",

	ReqCompressSizeInvalid:    "request compress size invalid",
	ReqDecompressSizeInvalid:  "request decompress size invalid",
	ReqCompressNotSupported:   "request compress type not supported",
	ReqDecompressNotSupported: "request decompress type not supported",
	ReqCompressError:          "request compress error",
	ReqDecompressError:        "request decompress error",
	ReqSerializeError:         "request serialize error",
	ReqDeserializeError:       "request deserialize error",

	RespCompressSizeInvalid:    "response compress size invalid",
	RespDecompressSizeInvalid:  "response decompress size invalid",
	RespCompressNotSupported:   "response compress type not supported",
	RespDecompressNotSupported: "response decompress type not supported",
	RespCompressError:          "response compress error",
	RespDecompressError:        "response decompress error",
	RespSerializeError:         "response serialize error",
	RespDeserializeError:       "response deserialize error",

	IDLSerializeNotSupported:   "IDL serialize not supported",
	IDLDeserializeNotSupported: "IDL deserialize not supported",

	URIInvalid:        "URI invalid",
	UpstreamFailed:    "upstream failed",
	SystemError:       "system error",
	SSLError:          "SSL error",
	DNSError:          "DNS error",
	ProcessTerminated: "process terminated",
}

// String returns the fixed, language-agnostic ASCII description for code.
// Unknown codes (should never occur from this module) report "status
// unknown".
func (c Code) String() string {
	if s, ok := codeStrings[c]; ok {
		return s
	}
	return "status unknown"
}

// IsOK reports whether c represents success.
func (c Code) IsOK() bool { return c == OK }

// namespace roots every error this package constructs, so callers can
// distinguish "an error from this module" from any other errorx-typed
// error in the process, independent of which trait it carries.
var namespace = errorx.NewNamespace("rpc")

// Traits group status codes by failure category so callers can branch on
// "was this a compression problem" without switching on the exact Code.
var (
	MetaTrait       = errorx.RegisterTrait("meta")
	CompressTrait   = errorx.RegisterTrait("compress")
	DecompressTrait = errorx.RegisterTrait("decompress")
	SerializeTrait  = errorx.RegisterTrait("serialize")
	RouteTrait      = errorx.RegisterTrait("route")
	SystemTrait     = errorx.RegisterTrait("system")
)

var typesByCode = map[Code]*errorx.Type{}

func registerType(code Code, traits ...errorx.Trait) {
	t := namespace.NewType(code.String(), traits...)
	typesByCode[code] = &t
}

func init() {
	registerType(ServiceNotFound, RouteTrait)
	registerType(MethodNotFound, RouteTrait)
	registerType(MetaError, MetaTrait)
	registerType(URIInvalid, RouteTrait)

	registerType(ReqCompressSizeInvalid, CompressTrait)
	registerType(ReqCompressNotSupported, CompressTrait)
	registerType(ReqCompressError, CompressTrait)
	registerType(RespCompressSizeInvalid, CompressTrait)
	registerType(RespCompressNotSupported, CompressTrait)
	registerType(RespCompressError, CompressTrait)

	registerType(ReqDecompressSizeInvalid, DecompressTrait)
	registerType(ReqDecompressNotSupported, DecompressTrait)
	registerType(ReqDecompressError, DecompressTrait)
	registerType(RespDecompressSizeInvalid, DecompressTrait)
	registerType(RespDecompressNotSupported, DecompressTrait)
	registerType(RespDecompressError, DecompressTrait)

	registerType(ReqSerializeError, SerializeTrait)
	registerType(ReqDeserializeError, SerializeTrait)
	registerType(RespSerializeError, SerializeTrait)
	registerType(RespDeserializeError, SerializeTrait)
	registerType(IDLSerializeNotSupported, SerializeTrait)
	registerType(IDLDeserializeNotSupported, SerializeTrait)

	registerType(SystemError, SystemTrait)
	registerType(SSLError, SystemTrait)
	registerType(DNSError, SystemTrait)
	registerType(ProcessTerminated, SystemTrait)
	registerType(UpstreamFailed, SystemTrait)
}

// Error pairs a shared status Code with a human-readable message. It wraps
// an *errorx.Error carrying the code's trait (when one is registered) so
// callers can do errorx.IsOfType(err, status.CompressTrait) instead of
// switching on the exact Code, while Error() still prints the fixed string
// table from the design plus any underlying cause.
type Error struct {
	Code Code
	errx *errorx.Error
}

// New builds an Error for code. cause, when non-nil, is recorded as the
// errorx-typed error's underlying cause.
func New(code Code, cause error) *Error {
	t, ok := typesByCode[code]
	var errx *errorx.Error
	if ok {
		if cause != nil {
			errx = t.Wrap(cause, code.String())
		} else {
			errx = t.New(code.String())
		}
	} else if cause != nil {
		errx = errorx.Decorate(cause, code.String())
	} else {
		errx = namespace.NewType(code.String()).New(code.String())
	}
	return &Error{Code: code, errx: errx}
}

func (e *Error) Error() string {
	return e.errx.Error()
}

// Unwrap exposes the underlying cause, if any, for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.errx.Cause()
}

// As implements the errors.As protocol so callers can recover the
// underlying *errorx.Error for trait inspection.
func (e *Error) As(target interface{}) bool {
	if t, ok := target.(**errorx.Error); ok {
		*t = e.errx
		return true
	}
	return errors.As(e.errx, target)
}

// HasTrait reports whether e's status code carries the given errorx trait.
func (e *Error) HasTrait(trait errorx.Trait) bool {
	return errorx.HasTrait(e.errx, trait)
}
