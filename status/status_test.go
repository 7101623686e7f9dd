package status_test

import (
	"testing"

	"github.com/joomcode/errorx"
	"github.com/stretchr/testify/require"

	"github.com/go-srpc/srpc/status"
)

func TestStringTableIsStable(t *testing.T) {
	require.Equal(t, "status ok", status.OK.String())
	require.Equal(t, "method not found", status.MethodNotFound.String())
	require.Equal(t, "status unknown", status.Code(9999).String())
}

func TestHTTPStatusIsTotal(t *testing.T) {
	cases := map[status.Code]int{
		status.OK:                        200,
		status.ServiceNotFound:           400,
		status.MethodNotFound:            400,
		status.MetaError:                 400,
		status.URIInvalid:                400,
		status.RespCompressNotSupported:  501,
		status.IDLSerializeNotSupported:  501,
		status.UpstreamFailed:            503,
		status.SystemError:               500,
		status.Code(12345):               500,
	}
	for code, want := range cases {
		require.Equal(t, want, status.HTTPStatus(code), "code=%v", code)
	}
}

func TestTRPCMappingRoundTripsOnInjectiveSubset(t *testing.T) {
	for _, code := range []status.Code{status.OK, status.ServiceNotFound, status.MethodNotFound, status.UpstreamFailed} {
		trpc := status.ToTRPC(code)
		back := status.FromTRPC(trpc)
		require.Equal(t, code, back)
	}
}

func TestTRPCMappingCollapsesNonInjectiveCodes(t *testing.T) {
	trpc := status.ToTRPC(status.SSLError)
	require.Equal(t, status.TRPCInvokeUnknownError, trpc)
	require.Equal(t, status.MetaError, status.FromTRPC(status.TRPCInvokeUnknownError))
}

func TestThriftExceptionMapping(t *testing.T) {
	require.Equal(t, status.ThriftExceptionUnknownMethod, status.ToThriftException(status.MethodNotFound))
	require.Equal(t, status.MethodNotFound, status.FromThriftException(status.ThriftExceptionUnknownMethod))
	require.Equal(t, status.MetaError, status.FromThriftException(status.ThriftExceptionInvalidMessageType))
}

func TestErrorCarriesTrait(t *testing.T) {
	err := status.New(status.RespCompressError, nil)
	require.True(t, err.HasTrait(status.CompressTrait))
	require.False(t, err.HasTrait(status.SerializeTrait))

	var errx *errorx.Error
	require.True(t, err.As(&errx))
	require.NotNil(t, errx)
}

func TestErrorWrapsCause(t *testing.T) {
	cause := assertionError("boom")
	err := status.New(status.MetaError, cause)
	require.ErrorIs(t, err, cause)
}

type assertionError string

func (e assertionError) Error() string { return string(e) }
