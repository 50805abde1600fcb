package servicepb

import "time"

// DatabaseInfo describes one database in list/info responses.
type DatabaseInfo struct {
	Name       string    `json:"name"`
	Comment    string    `json:"comment"`
	CreateTime time.Time `json:"create_time"`
	ViewCount  int       `json:"view_count"`
}

// DatabaseListRequest has no fields: databases are a flat, unscoped
// namespace.
type DatabaseListRequest struct{}

// DatabaseListResponse enumerates every registered database.
type DatabaseListResponse struct {
	Header
	Databases []DatabaseInfo `json:"databases,omitempty"`
}

// DatabaseCreateRequest creates a new database.
type DatabaseCreateRequest struct {
	Name    string `json:"name"`
	Comment string `json:"comment"`
}

// DatabaseCreateResponse reports the outcome of DatabaseCreateRequest.
type DatabaseCreateResponse struct {
	Header
}

// DatabaseInfoRequest asks for one database's metadata.
type DatabaseInfoRequest struct {
	Name string `json:"name"`
}

// DatabaseInfoResponse carries the requested database's metadata.
type DatabaseInfoResponse struct {
	Header
	Database DatabaseInfo `json:"database,omitempty"`
}

// DatabaseModifyRequest renames a database and/or changes its comment.
type DatabaseModifyRequest struct {
	Name       string `json:"name"`
	NewName    string `json:"new_name"`
	NewComment string `json:"new_comment"`
}

// DatabaseModifyResponse reports the outcome of DatabaseModifyRequest.
type DatabaseModifyResponse struct {
	Header
}

// DatabaseRemoveRequest forgets a database's in-memory handle.
type DatabaseRemoveRequest struct {
	Name string `json:"name"`
}

// DatabaseRemoveResponse reports the outcome of DatabaseRemoveRequest.
type DatabaseRemoveResponse struct {
	Header
}
