package advice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

type suggestRequest struct {
	Board []string `json:"board"`
}

type suggestResponse struct {
	Moves []entity.Position `json:"moves"`
}

// SuggesterClient queries the similarity service that mines candidate moves
// from previously recorded games.
type SuggesterClient struct {
	baseURL string
	client  *http.Client
}

func NewSuggesterClient(baseURL string) *SuggesterClient {
	return &SuggesterClient{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

func (that *SuggesterClient) SuggestNextMoves(ctx context.Context, board *entity.Board) ([]entity.Position, error) {
	reqBody, err := json.Marshal(suggestRequest{Board: board[:]})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal suggest request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, that.baseURL+"/suggest", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to build suggest request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := that.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("suggest request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("suggest request returned status %d", resp.StatusCode)
	}

	var payload suggestResponse
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode suggest response: %w", err)
	}

	return payload.Moves, nil
}
