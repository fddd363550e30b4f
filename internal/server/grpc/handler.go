package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/custodian/internal/anomaly"
	"github.com/dmitrijs2005/custodian/internal/rpc"
	"github.com/dmitrijs2005/custodian/internal/server/models"
	"github.com/dmitrijs2005/custodian/internal/server/services"
)

type VaultService interface {
	StoreCredentials(ctx context.Context, caseID, requesterID, username, password string) (*models.CredentialRecord, error)
	RetrieveCredentials(ctx context.Context, caseID, requesterID string) (*services.Credentials, error)
	ListAccessLog(ctx context.Context, caseID, requesterID string) ([]*models.AccessLogEntry, error)
}

type ShareCodeService interface {
	Issue(ctx context.Context, ownerID, name string, categories []models.CategoryTag, ttl time.Duration) (*services.IssuedCode, error)
	Revoke(ctx context.Context, ownerID, shareCodeID string) error
	Rotate(ctx context.Context, ownerID, shareCodeID string) (*services.IssuedCode, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.ShareCode, error)
	Compose(ownerID, rawCode string) (string, error)
}

type AccessService interface {
	CheckSuspiciousActivity(ctx context.Context, ownerUserID, shareCodeID, clientAddress string) (anomaly.Verdict, error)
}

func (s *GRPCServer) StoreCredentials(ctx context.Context, req *rpc.StoreCredentialsRequest) (*rpc.StoreCredentialsResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	rec, err := s.vault.StoreCredentials(ctx, req.CaseID, userID, req.Username, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, rpc.MethodStoreCredentials, err)
	}

	return &rpc.StoreCredentialsResponse{StoredAt: rec.CreatedAt}, nil
}

func (s *GRPCServer) RetrieveCredentials(ctx context.Context, req *rpc.RetrieveCredentialsRequest) (*rpc.RetrieveCredentialsResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	creds, err := s.vault.RetrieveCredentials(ctx, req.CaseID, userID)
	if err != nil {
		return nil, s.toStatus(ctx, rpc.MethodRetrieveCredentials, err)
	}

	return &rpc.RetrieveCredentialsResponse{Username: creds.Username, Password: creds.Password}, nil
}

func (s *GRPCServer) ListAccessLog(ctx context.Context, req *rpc.ListAccessLogRequest) (*rpc.ListAccessLogResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.vault.ListAccessLog(ctx, req.CaseID, userID)
	if err != nil {
		return nil, s.toStatus(ctx, rpc.MethodListAccessLog, err)
	}

	resp := &rpc.ListAccessLogResponse{Entries: make([]rpc.AccessLogEntry, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, rpc.AccessLogEntry{ID: e.ID, Who: e.Who, What: e.What, Note: e.Note, OccurredAt: e.OccurredAt})
	}
	return resp, nil
}

func (s *GRPCServer) IssueShareCode(ctx context.Context, req *rpc.IssueShareCodeRequest) (*rpc.IssuedShareCodeResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	cats := make([]models.CategoryTag, 0, len(req.Categories))
	for _, c := range req.Categories {
		cats = append(cats, models.CategoryTag(c))
	}

	issued, err := s.codes.Issue(ctx, userID, req.Name, cats, time.Duration(req.TTLSeconds)*time.Second)
	if err != nil {
		return nil, s.toStatus(ctx, rpc.MethodIssueShareCode, err)
	}

	return issuedToRPC(issued), nil
}

func (s *GRPCServer) RevokeShareCode(ctx context.Context, req *rpc.RevokeShareCodeRequest) (*rpc.RevokeShareCodeResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.codes.Revoke(ctx, userID, req.ShareCodeID); err != nil {
		return nil, s.toStatus(ctx, rpc.MethodRevokeShareCode, err)
	}

	return &rpc.RevokeShareCodeResponse{}, nil
}

func (s *GRPCServer) RotateShareCode(ctx context.Context, req *rpc.RotateShareCodeRequest) (*rpc.IssuedShareCodeResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	issued, err := s.codes.Rotate(ctx, userID, req.ShareCodeID)
	if err != nil {
		return nil, s.toStatus(ctx, rpc.MethodRotateShareCode, err)
	}

	return issuedToRPC(issued), nil
}

func (s *GRPCServer) ListShareCodes(ctx context.Context, _ *rpc.ListShareCodesRequest) (*rpc.ListShareCodesResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	codes, err := s.codes.ListByOwner(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, rpc.MethodListShareCodes, err)
	}

	now := time.Now()
	resp := &rpc.ListShareCodesResponse{Codes: make([]rpc.ShareCode, 0, len(codes))}
	for _, c := range codes {
		resp.Codes = append(resp.Codes, shareCodeToRPC(c, now))
	}
	return resp, nil
}

func (s *GRPCServer) ComposeCode(ctx context.Context, req *rpc.ComposeCodeRequest) (*rpc.ComposeCodeResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	full, err := s.codes.Compose(userID, req.RawCode)
	if err != nil {
		return nil, s.toStatus(ctx, rpc.MethodComposeCode, err)
	}

	return &rpc.ComposeCodeResponse{FullCode: full}, nil
}

func (s *GRPCServer) CheckSuspiciousActivity(ctx context.Context, req *rpc.CheckSuspiciousActivityRequest) (*rpc.CheckSuspiciousActivityResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	v, err := s.access.CheckSuspiciousActivity(ctx, userID, req.ShareCodeID, req.ClientAddress)
	if err != nil {
		return nil, s.toStatus(ctx, rpc.MethodCheckSuspiciousActivity, err)
	}

	return &rpc.CheckSuspiciousActivityResponse{Suspicious: v.Suspicious, Reasons: v.Reasons}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *rpc.PingRequest) (*rpc.PingResponse, error) {

	return &rpc.PingResponse{Status: "OK"}, nil

}

func issuedToRPC(ic *services.IssuedCode) *rpc.IssuedShareCodeResponse {
	return &rpc.IssuedShareCodeResponse{Code: shareCodeToRPC(ic.Code, ic.Code.CreatedAt), FullCode: ic.FullCode}
}

func shareCodeToRPC(c *models.ShareCode, now time.Time) rpc.ShareCode {
	cats := make([]string, 0, len(c.Categories))
	for _, t := range c.Categories {
		cats = append(cats, string(t))
	}
	return rpc.ShareCode{
		ID:             c.ID,
		Name:           c.Name,
		Categories:     cats,
		State:          string(c.State(now)),
		CreatedAt:      c.CreatedAt,
		ExpiresAt:      c.ExpiresAt,
		RevokedAt:      c.RevokedAt,
		AccessCount:    c.AccessCount,
		LastAccessedAt: c.LastAccessedAt,
	}
}
