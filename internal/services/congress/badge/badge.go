// Package badge integrates with the external badge generation service.
package badge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ilus66/Cnol-2025-2/internal/platform/id"
)

// IssueRequest carries the registrant identity sent to the badge service.
type IssueRequest struct {
	InscriptionID string `json:"inscription_id"`
	Nom           string `json:"nom"`
	Prenom        string `json:"prenom"`
	Email         string `json:"email"`
	Fonction      string `json:"fonction"`
	Organisation  string `json:"organisation"`
}

// Issuer assigns a badge identifier for a registrant and triggers delivery.
type Issuer interface {
	Issue(ctx context.Context, req IssueRequest) (string, error)
}

// issueResponse mirrors the badge service issuance JSON response.
type issueResponse struct {
	IdentifiantBadge string `json:"identifiant_badge"`
}

// HTTPIssuer calls a remote HTTP badge issuance endpoint.
type HTTPIssuer struct {
	url           string
	serviceSecret string
	client        *http.Client
}

// NewHTTPIssuer creates an issuer that POSTs to the given URL.
func NewHTTPIssuer(url, serviceSecret string, client *http.Client) *HTTPIssuer {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPIssuer{
		url:           url,
		serviceSecret: serviceSecret,
		client:        client,
	}
}

// Issue requests a badge from the remote service. The service persists the
// badge artwork and emails it; the returned identifier is what we record.
func (h *HTTPIssuer) Issue(ctx context.Context, issueReq IssueRequest) (string, error) {
	body, err := json.Marshal(issueReq)
	if err != nil {
		return "", fmt.Errorf("encode badge request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build badge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.serviceSecret != "" {
		req.Header.Set("X-Service-Secret", h.serviceSecret)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("badge request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("badge service returned %s", resp.Status)
	}

	var result issueResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode badge response: %w", err)
	}
	identifiant := strings.TrimSpace(result.IdentifiantBadge)
	if identifiant == "" {
		return "", fmt.Errorf("badge service returned empty identifier")
	}
	return identifiant, nil
}

// LocalIssuer generates badge identifiers in-process. It stands in for the
// remote service in development setups where no delivery happens.
type LocalIssuer struct{}

// Issue returns a freshly generated identifier.
func (LocalIssuer) Issue(ctx context.Context, _ IssueRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	identifiant, err := id.NewID()
	if err != nil {
		return "", fmt.Errorf("generate badge identifier: %w", err)
	}
	return identifiant, nil
}

var _ Issuer = (*HTTPIssuer)(nil)
var _ Issuer = LocalIssuer{}
