package servicepb

import "time"

// IndexInfo describes one index in list/info responses.
type IndexInfo struct {
	Database   string    `json:"database"`
	View       string    `json:"view"`
	Name       string    `json:"name"`
	Engine     string    `json:"engine"`
	KeyType    string    `json:"key_type"`
	Primary    bool      `json:"primary"`
	Unique     bool      `json:"unique"`
	Null       bool      `json:"null"`
	CreateTime time.Time `json:"create_time"`
}

// IndexListRequest enumerates every index on a view.
type IndexListRequest struct {
	Database string `json:"database"`
	View     string `json:"view"`
}

// IndexListResponse enumerates the requested view's indexes.
type IndexListResponse struct {
	Header
	Indexes []IndexInfo `json:"indexes,omitempty"`
}

// IndexCreateRequest adds a new index to a view.
type IndexCreateRequest struct {
	Database string `json:"database"`
	View     string `json:"view"`
	Name     string `json:"name"`
	Engine   string `json:"engine"`
	KeyType  string `json:"key_type"`
	Primary  bool   `json:"primary"`
	Unique   bool   `json:"unique"`
	Null     bool   `json:"null"`
}

// IndexCreateResponse reports the outcome of IndexCreateRequest.
type IndexCreateResponse struct {
	Header
}

// IndexInfoRequest asks for one index's metadata.
type IndexInfoRequest struct {
	Database string `json:"database"`
	View     string `json:"view"`
	Name     string `json:"name"`
}

// IndexInfoResponse carries the requested index's metadata.
type IndexInfoResponse struct {
	Header
	Index IndexInfo `json:"index,omitempty"`
}
