// Package servicepb holds the cross-boundary message shapes for the
// service groups — User, Page, Database, View, Index, Disk, and Memory —
// as plain Go structs. There is no code generation and no transport here:
// these types exist so cmd/george-cli can call into pkg/master through a
// stable, versioned request/response shape instead of its concrete types
// directly, and so a future grpc/drpc layer has its messages ready.
package servicepb

// Status is the outcome code carried by every response.
type Status uint8

// The complete set of response statuses.
const (
	StatusOk Status = iota
	StatusCustom
	StatusAlreadyExists
	StatusNotFound
	StatusUnimplemented
)

func (s Status) String() string {
	switch s {
	case StatusOk:
		return "ok"
	case StatusCustom:
		return "custom"
	case StatusAlreadyExists:
		return "already_exists"
	case StatusNotFound:
		return "not_found"
	case StatusUnimplemented:
		return "unimplemented"
	default:
		return "unknown"
	}
}

// Header is embedded in every response: the outcome and, on anything but
// StatusOk, a human-readable message.
type Header struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// StatusFromError builds a Header from err: StatusOk when err is nil,
// otherwise the status the caller passes, with err's message. It does not
// classify err itself; callers that haven't classified it pass StatusCustom.
func StatusFromError(status Status, err error) Header {
	if err == nil {
		return Header{Status: StatusOk}
	}
	return Header{Status: status, Error: err.Error()}
}
