package rpc

import "time"

type StoreCredentialsRequest struct {
	CaseID   string `json:"case_id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type StoreCredentialsResponse struct {
	StoredAt time.Time `json:"stored_at"`
}

type RetrieveCredentialsRequest struct {
	CaseID string `json:"case_id"`
}

type RetrieveCredentialsResponse struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ListAccessLogRequest struct {
	CaseID string `json:"case_id"`
}

type AccessLogEntry struct {
	ID         string    `json:"id"`
	Who        string    `json:"who"`
	What       string    `json:"what"`
	Note       string    `json:"note"`
	OccurredAt time.Time `json:"occurred_at"`
}

type ListAccessLogResponse struct {
	Entries []AccessLogEntry `json:"entries"`
}

// ShareCode is the owner's view of a share code. The raw code is only
// returned in full form, on issue and rotate.
type ShareCode struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Categories     []string   `json:"categories"`
	State          string     `json:"state"`
	CreatedAt      time.Time  `json:"created_at"`
	ExpiresAt      time.Time  `json:"expires_at"`
	RevokedAt      *time.Time `json:"revoked_at,omitempty"`
	AccessCount    int64      `json:"access_count"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
}

type IssueShareCodeRequest struct {
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
	// TTLSeconds of zero selects the server default.
	TTLSeconds int64 `json:"ttl_seconds"`
}

type IssuedShareCodeResponse struct {
	Code     ShareCode `json:"code"`
	FullCode string    `json:"full_code"`
}

type RevokeShareCodeRequest struct {
	ShareCodeID string `json:"share_code_id"`
}

type RevokeShareCodeResponse struct{}

type RotateShareCodeRequest struct {
	ShareCodeID string `json:"share_code_id"`
}

type ListShareCodesRequest struct{}

type ListShareCodesResponse struct {
	Codes []ShareCode `json:"codes"`
}

type ComposeCodeRequest struct {
	RawCode string `json:"raw_code"`
}

type ComposeCodeResponse struct {
	FullCode string `json:"full_code"`
}

type CheckSuspiciousActivityRequest struct {
	ShareCodeID   string `json:"share_code_id"`
	ClientAddress string `json:"client_address"`
}

type CheckSuspiciousActivityResponse struct {
	Suspicious bool     `json:"suspicious"`
	Reasons    []string `json:"reasons,omitempty"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}
