package config

import (
	"fmt"

	"github.com/example/go-hindi-bpe/internal/train"
)

const (
	StrategyBoosted  = string(train.Boosted)
	StrategyBaseline = string(train.Baseline)
)

// NormalizeStrategy canonicalizes a merge selection strategy name. Empty
// selects the boosted strategy.
func NormalizeStrategy(raw string) (string, error) {
	s, err := train.ParseStrategy(raw)
	if err != nil {
		return "", fmt.Errorf("invalid strategy %q (expected %s|%s)", raw, StrategyBoosted, StrategyBaseline)
	}
	return string(s), nil
}
