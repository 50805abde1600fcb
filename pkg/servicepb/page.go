package servicepb

import "time"

// PageInfo describes one page in list/info responses.
type PageInfo struct {
	Name       string    `json:"name"`
	Comment    string    `json:"comment"`
	SizeHintMB int       `json:"size_hint_mb"`
	TTLSecs    int64     `json:"ttl_secs"`
	CreateTime time.Time `json:"create_time"`
}

// PageListRequest has no fields: pages are a flat, unscoped namespace.
type PageListRequest struct{}

// PageListResponse enumerates every registered page.
type PageListResponse struct {
	Header
	Pages []PageInfo `json:"pages,omitempty"`
}

// PageCreateRequest creates a new page.
type PageCreateRequest struct {
	Name       string `json:"name"`
	Comment    string `json:"comment"`
	SizeHintMB int    `json:"size_hint_mb"`
	TTLSecs    int64  `json:"ttl_secs"`
}

// PageCreateResponse reports the outcome of PageCreateRequest.
type PageCreateResponse struct {
	Header
}

// PageInfoRequest asks for one page's metadata.
type PageInfoRequest struct {
	Name string `json:"name"`
}

// PageInfoResponse carries the requested page's metadata.
type PageInfoResponse struct {
	Header
	Page PageInfo `json:"page,omitempty"`
}

// PageModifyRequest renames a page and/or changes its comment.
type PageModifyRequest struct {
	Name       string `json:"name"`
	NewName    string `json:"new_name"`
	NewComment string `json:"new_comment"`
}

// PageModifyResponse reports the outcome of PageModifyRequest.
type PageModifyResponse struct {
	Header
}

// PageRemoveRequest forgets a page's in-memory handle.
type PageRemoveRequest struct {
	Name string `json:"name"`
}

// PageRemoveResponse reports the outcome of PageRemoveRequest.
type PageRemoveResponse struct {
	Header
}
