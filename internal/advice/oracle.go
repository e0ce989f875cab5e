// Package advice wraps the two external advisers the move selector may
// consult: a freeform position-assessment oracle and a similarity-based
// move suggester. Both are best-effort; a timeout or failure is reported
// as an error for the caller to absorb into "no signal".
package advice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

type assessRequest struct {
	Board []string `json:"board"`
	Turn  string   `json:"turn"`
}

type assessResponse struct {
	Assessment string `json:"assessment"`
}

type OracleClient struct {
	baseURL string
	client  *http.Client
}

func NewOracleClient(baseURL string) *OracleClient {
	return &OracleClient{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// Assess - asks the oracle for a freeform assessment of the position for the
// side to move. The context deadline bounds the whole call.
func (that *OracleClient) Assess(ctx context.Context, board *entity.Board, turn string) (string, error) {
	reqBody, err := json.Marshal(assessRequest{Board: board[:], Turn: turn})
	if err != nil {
		return "", fmt.Errorf("failed to marshal assess request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, that.baseURL+"/assess", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to build assess request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := that.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("assess request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("assess request returned status %d", resp.StatusCode)
	}

	var payload assessResponse
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode assess response: %w", err)
	}

	return payload.Assessment, nil
}
