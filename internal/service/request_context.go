package service

// RequestContext carries the per-request attributes analytics writes need.
// The visitor fingerprint is derived from it, never stored raw except on
// view events where the source fields are part of the record.
type RequestContext struct {
	IP        string
	UserAgent string
	Referer   string
	SessionID string
}
