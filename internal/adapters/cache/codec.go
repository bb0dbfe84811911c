package cache

import (
	"encoding/json"
	"fmt"

	"github.com/mikey/loan-approval/internal/core"
)

func encodeResult(result *core.ScoringResult) ([]byte, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode scoring result: %w", err)
	}
	return data, nil
}

func decodeResult(data []byte) (*core.ScoringResult, error) {
	var result core.ScoringResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode cached scoring result: %w", err)
	}
	return &result, nil
}
