package servicepb

import "encoding/json"

// DiskRecord is the wire shape of one record: its JSON-encoded value plus
// the increment it was assigned, when the view tracks one.
type DiskRecord struct {
	Increment uint64          `json:"increment,omitempty"`
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
}

// DiskPutRequest inserts a new record, failing on a unique-key collision.
type DiskPutRequest struct {
	Database string          `json:"database"`
	View     string          `json:"view"`
	Key      string          `json:"key"`
	Value    json.RawMessage `json:"value"`
}

// DiskPutResponse reports the outcome of DiskPutRequest.
type DiskPutResponse struct {
	Header
	Record DiskRecord `json:"record,omitempty"`
}

// DiskSetRequest inserts or overwrites a record unconditionally — the same
// path as DiskPutRequest with force=true.
type DiskSetRequest struct {
	Database string          `json:"database"`
	View     string          `json:"view"`
	Key      string          `json:"key"`
	Value    json.RawMessage `json:"value"`
}

// DiskSetResponse reports the outcome of DiskSetRequest.
type DiskSetResponse struct {
	Header
	Record DiskRecord `json:"record,omitempty"`
}

// DiskGetRequest resolves key through the view's primary index.
type DiskGetRequest struct {
	Database string `json:"database"`
	View     string `json:"view"`
	Key      string `json:"key"`
}

// DiskGetResponse carries the resolved record.
type DiskGetResponse struct {
	Header
	Record DiskRecord `json:"record,omitempty"`
}

// DiskGetByIndexRequest resolves key through a named secondary index.
type DiskGetByIndexRequest struct {
	Database string `json:"database"`
	View     string `json:"view"`
	Index    string `json:"index"`
	Key      string `json:"key"`
}

// DiskGetByIndexResponse carries the resolved record.
type DiskGetByIndexResponse struct {
	Header
	Record DiskRecord `json:"record,omitempty"`
}

// DiskRemoveRequest removes a record by its primary key.
type DiskRemoveRequest struct {
	Database string `json:"database"`
	View     string `json:"view"`
	Key      string `json:"key"`
}

// DiskRemoveResponse reports the outcome of DiskRemoveRequest.
type DiskRemoveResponse struct {
	Header
}

// DiskSelectRequest runs a constraint document against a view, returning
// the matching records without deleting them regardless of the embedded
// constraint's own Delete flag — that flag is honored only by
// DiskDeleteRequest.
type DiskSelectRequest struct {
	Database   string          `json:"database"`
	View       string          `json:"view"`
	Constraint json.RawMessage `json:"constraint"`
}

// DiskSelectResponse carries every record the constraint matched.
type DiskSelectResponse struct {
	Header
	TotalScanned int          `json:"total_scanned"`
	Records      []DiskRecord `json:"records,omitempty"`
}

// DiskDeleteRequest runs a constraint document against a view, removing
// every matching record (through the same secondary-index fan-out a
// single DiskRemoveRequest uses) and returning what was removed.
type DiskDeleteRequest struct {
	Database   string          `json:"database"`
	View       string          `json:"view"`
	Constraint json.RawMessage `json:"constraint"`
}

// DiskDeleteResponse carries every record that was removed.
type DiskDeleteResponse struct {
	Header
	TotalScanned int          `json:"total_scanned"`
	Records      []DiskRecord `json:"records,omitempty"`
}
