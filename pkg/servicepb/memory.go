package servicepb

import "encoding/json"

// MemoryPutRequest inserts a new entry into a page, failing if key already
// holds a value.
type MemoryPutRequest struct {
	Page  string          `json:"page"`
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// MemoryPutResponse reports the outcome of MemoryPutRequest.
type MemoryPutResponse struct {
	Header
}

// MemorySetRequest inserts or overwrites a page entry unconditionally.
type MemorySetRequest struct {
	Page  string          `json:"page"`
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// MemorySetResponse reports the outcome of MemorySetRequest.
type MemorySetResponse struct {
	Header
}

// MemoryGetRequest reads one entry from a page.
type MemoryGetRequest struct {
	Page string `json:"page"`
	Key  string `json:"key"`
}

// MemoryGetResponse carries the requested entry, if still present and
// unexpired.
type MemoryGetResponse struct {
	Header
	Value json.RawMessage `json:"value,omitempty"`
}

// MemoryRemoveRequest deletes one entry from a page.
type MemoryRemoveRequest struct {
	Page string `json:"page"`
	Key  string `json:"key"`
}

// MemoryRemoveResponse reports the outcome of MemoryRemoveRequest.
type MemoryRemoveResponse struct {
	Header
}

// MemoryPutByPageRequest is the by_page variant of MemoryPutRequest: it
// creates the page first (idempotently) before inserting, so a caller can
// populate an ad hoc page without a separate PageCreateRequest round trip.
type MemoryPutByPageRequest struct {
	Page       string          `json:"page"`
	Comment    string          `json:"comment"`
	SizeHintMB int             `json:"size_hint_mb"`
	TTLSecs    int64           `json:"ttl_secs"`
	Key        string          `json:"key"`
	Value      json.RawMessage `json:"value"`
}

// MemoryPutByPageResponse reports the outcome of MemoryPutByPageRequest.
type MemoryPutByPageResponse struct {
	Header
}

// MemoryGetByPageRequest is the by_page variant of MemoryGetRequest: it
// reports NotFound for both an absent page and an absent key, rather than
// distinguishing the two.
type MemoryGetByPageRequest struct {
	Page string `json:"page"`
	Key  string `json:"key"`
}

// MemoryGetByPageResponse carries the requested entry.
type MemoryGetByPageResponse struct {
	Header
	Value json.RawMessage `json:"value,omitempty"`
}
