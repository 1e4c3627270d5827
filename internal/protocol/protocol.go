// Package protocol defines the wire types exchanged between the sync
// client and the sync service.
package protocol

// IssueRequest is one issue to create, built fresh per run from an
// annotated item and one of its annotations. Never persisted.
type IssueRequest struct {
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Labels    []string `json:"labels,omitempty"`
	NodeID    string   `json:"nodeId"`
	Signature string   `json:"signature"`
}

// SyncRequest is the full batch for one run.
type SyncRequest struct {
	Owner  string         `json:"owner"`
	Repo   string         `json:"repo"`
	Issues []IssueRequest `json:"issues"`

	// Optional project board attachment. ProjectOwner defaults to Owner
	// server-side when empty.
	ProjectName   string `json:"projectName,omitempty"`
	ProjectOwner  string `json:"projectOwner,omitempty"`
	ProjectNumber int    `json:"projectNumber,omitempty"`
}

// ProjectStatus reports the board-attachment outcome for one created
// issue. Attachment failure never downgrades issue creation.
type ProjectStatus struct {
	Status int    `json:"status"`
	Error  string `json:"error,omitempty"`
}

// IssueResult is the per-item outcome. NodeID and Signature are passed
// through from the request verbatim; the caller correlates on them.
type IssueResult struct {
	NodeID    string         `json:"nodeId"`
	Signature string         `json:"signature"`
	Status    int            `json:"status"`
	URL       string         `json:"url,omitempty"`
	Error     string         `json:"error,omitempty"`
	Project   *ProjectStatus `json:"projectStatus,omitempty"`
}

// Succeeded reports whether the issue was created remotely. Only
// succeeded results may be recorded in local sync state.
func (r IssueResult) Succeeded() bool {
	return r.Status >= 200 && r.Status < 300
}

// SyncResponse is the aggregate outcome for a batch.
// Created + Failed always equals the number of submitted issues, and
// Results preserves input order.
type SyncResponse struct {
	Created int           `json:"created"`
	Failed  int           `json:"failed"`
	Results []IssueResult `json:"results"`
}
