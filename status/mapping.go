package status

// HTTPStatus derives the HTTP status line for a tunneled transport's
// response from the shared status code (§4.6, §6). The mapping is total:
// every Code value, including ones invented after this table was written,
// falls back to 500.
func HTTPStatus(code Code) int {
	switch code {
	case OK:
		return 200
	case ServiceNotFound, MethodNotFound, MetaError, URIInvalid:
		return 400
	case RespCompressNotSupported, RespDecompressNotSupported,
		ReqCompressNotSupported, ReqDecompressNotSupported,
		IDLSerializeNotSupported, IDLDeserializeNotSupported:
		return 501
	case UpstreamFailed:
		return 503
	default:
		return 500
	}
}

// TRPCCode is TRPC's own native status-code space. SRPC's taxonomy and
// TRPC's are mapped onto each other at the codec layer; the forward mapping
// (shared -> TRPC) is injective only on a subset of codes, so the reverse
// mapping collapses the rest into a documented bucket (§8 invariant 8).
type TRPCCode int

const (
	TRPCSuccess              TRPCCode = 0
	TRPCServerDecodeError    TRPCCode = 1
	TRPCServerEncodeError    TRPCCode = 2
	TRPCServerNoServiceError TRPCCode = 11
	TRPCServerNoFuncError    TRPCCode = 12
	TRPCServerTimeoutError   TRPCCode = 21
	TRPCServerOverloadError  TRPCCode = 22
	TRPCServerSystemError    TRPCCode = 1
	TRPCInvokeUnknownError   TRPCCode = 999
)

// sharedToTRPC is the forward table. It is injective on the listed codes
// except MetaError and ReqDeserializeError, which both map to
// TRPCServerDecodeError; every shared code not listed is mapped to
// TRPCInvokeUnknownError.
var sharedToTRPC = map[Code]TRPCCode{
	OK:                     TRPCSuccess,
	ServiceNotFound:        TRPCServerNoServiceError,
	MethodNotFound:         TRPCServerNoFuncError,
	MetaError:              TRPCServerDecodeError,
	ReqDeserializeError:    TRPCServerDecodeError,
	RespSerializeError:     TRPCServerEncodeError,
	UpstreamFailed:         TRPCServerOverloadError,
}

// trpcToShared is the reverse table. Codes not present collapse to
// MetaError, the least-specific matching bucket for "something about the
// wire-level meta was wrong", per §4.6.
var trpcToShared = map[TRPCCode]Code{
	TRPCSuccess:              OK,
	TRPCServerNoServiceError: ServiceNotFound,
	TRPCServerNoFuncError:    MethodNotFound,
	TRPCServerDecodeError:    MetaError,
	TRPCServerEncodeError:    RespSerializeError,
	TRPCServerOverloadError:  UpstreamFailed,
}

// ToTRPC maps a shared status code to TRPC's native code space.
func ToTRPC(code Code) TRPCCode {
	if v, ok := sharedToTRPC[code]; ok {
		return v
	}
	return TRPCInvokeUnknownError
}

// FromTRPC maps a TRPC-native code back to the shared taxonomy. Codes with
// no forward-injective counterpart collapse to MetaError.
func FromTRPC(code TRPCCode) Code {
	if v, ok := trpcToShared[code]; ok {
		return v
	}
	return MetaError
}

// ThriftExceptionType is Apache Thrift's TApplicationException type
// enumeration, used when a non-OK response status is carried over the
// Thrift-framed transport (§4.3, §4.6).
type ThriftExceptionType int32

const (
	ThriftExceptionUnknown             ThriftExceptionType = 0
	ThriftExceptionUnknownMethod       ThriftExceptionType = 1
	ThriftExceptionInvalidMessageType  ThriftExceptionType = 2
	ThriftExceptionWrongMethodName     ThriftExceptionType = 3
	ThriftExceptionBadSequenceID       ThriftExceptionType = 4
	ThriftExceptionMissingResult       ThriftExceptionType = 5
	ThriftExceptionInternalError       ThriftExceptionType = 6
	ThriftExceptionProtocolError       ThriftExceptionType = 7
)

// ToThriftException maps a shared status code to the Thrift application
// exception type carried in the EXCEPTION message's struct (§4.3).
func ToThriftException(code Code) ThriftExceptionType {
	switch code {
	case MethodNotFound:
		return ThriftExceptionUnknownMethod
	case MetaError:
		return ThriftExceptionInvalidMessageType
	default:
		return ThriftExceptionUnknown
	}
}

// FromThriftException maps a Thrift application exception type back to the
// shared status taxonomy (§4.3: UNKNOWN_METHOD -> MethodNotFound, else
// MetaError).
func FromThriftException(t ThriftExceptionType) Code {
	if t == ThriftExceptionUnknownMethod {
		return MethodNotFound
	}
	return MetaError
}
