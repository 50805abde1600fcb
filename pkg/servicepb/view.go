package servicepb

import "time"

// ViewInfo describes one view in list/info responses.
type ViewInfo struct {
	Database   string    `json:"database"`
	Name       string    `json:"name"`
	Comment    string    `json:"comment"`
	CreateTime time.Time `json:"create_time"`
}

// ViewVersionInfo mirrors view.VersionInfo for the record/records ops.
type ViewVersionInfo struct {
	Version    uint16    `json:"version"`
	Filepath   string    `json:"filepath"`
	ArchivedAt time.Time `json:"archived_at,omitempty"`
	Live       bool      `json:"live"`
}

// ViewListRequest enumerates every view in a database.
type ViewListRequest struct {
	Database string `json:"database"`
}

// ViewListResponse enumerates the requested database's views.
type ViewListResponse struct {
	Header
	Views []ViewInfo `json:"views,omitempty"`
}

// ViewCreateRequest creates a new view in a database.
type ViewCreateRequest struct {
	Database      string `json:"database"`
	Name          string `json:"name"`
	Comment       string `json:"comment"`
	WithIncrement bool   `json:"with_increment"`
}

// ViewCreateResponse reports the outcome of ViewCreateRequest.
type ViewCreateResponse struct {
	Header
}

// ViewInfoRequest asks for one view's metadata.
type ViewInfoRequest struct {
	Database string `json:"database"`
	Name     string `json:"name"`
}

// ViewInfoResponse carries the requested view's metadata.
type ViewInfoResponse struct {
	Header
	View ViewInfo `json:"view,omitempty"`
}

// ViewModifyRequest renames a view and/or changes its comment.
type ViewModifyRequest struct {
	Database   string `json:"database"`
	Name       string `json:"name"`
	NewName    string `json:"new_name"`
	NewComment string `json:"new_comment"`
}

// ViewModifyResponse reports the outcome of ViewModifyRequest.
type ViewModifyResponse struct {
	Header
}

// ViewRemoveRequest forgets a view's in-memory handle.
type ViewRemoveRequest struct {
	Database string `json:"database"`
	Name     string `json:"name"`
}

// ViewRemoveResponse reports the outcome of ViewRemoveRequest.
type ViewRemoveResponse struct {
	Header
}

// ViewArchiveRequest rotates a view's live data file, archiving its current
// contents at NewFilepath.
type ViewArchiveRequest struct {
	Database    string `json:"database"`
	Name        string `json:"name"`
	NewFilepath string `json:"new_filepath"`
}

// ViewArchiveResponse reports the outcome of ViewArchiveRequest.
type ViewArchiveResponse struct {
	Header
}

// ViewRecordRequest asks for one version's metadata.
type ViewRecordRequest struct {
	Database string `json:"database"`
	Name     string `json:"name"`
	Version  uint16 `json:"version"`
}

// ViewRecordResponse carries the requested version's metadata.
type ViewRecordResponse struct {
	Header
	Record ViewVersionInfo `json:"record,omitempty"`
}

// ViewRecordsRequest asks for every version's metadata.
type ViewRecordsRequest struct {
	Database string `json:"database"`
	Name     string `json:"name"`
}

// ViewRecordsResponse enumerates every version of a view's data, archived
// versions first in ascending order, followed by the live version.
type ViewRecordsResponse struct {
	Header
	Records []ViewVersionInfo `json:"records,omitempty"`
}
