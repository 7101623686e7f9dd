package trpcx

import "strings"

// composeTraceparent renders a W3C traceparent header value from a 32-hex
// trace_id and 16-hex span_id (§4.3, §6). The version and flags fields are
// fixed at "00" and "01".
func composeTraceparent(traceID, spanID string) string {
	return "00-" + traceID + "-" + spanID + "-01"
}

// parseTraceparent extracts trace_id and span_id from a W3C traceparent
// header value. Any value not matching the 4-field dash-separated form is
// rejected.
func parseTraceparent(value string) (traceID, spanID string, ok bool) {
	parts := strings.Split(value, "-")
	if len(parts) != 4 {
		return "", "", false
	}
	if len(parts[0]) != 2 || len(parts[1]) != 32 || len(parts[2]) != 16 || len(parts[3]) != 2 {
		return "", "", false
	}
	return parts[1], parts[2], true
}
