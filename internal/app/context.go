package app

import (
	"context"
	"errors"
	"fmt"

	"docketline/internal/config"
	"docketline/internal/repo"
)

// ResolveConfig picks the active rule config. Precedence: a
// docketline.yml in the workspace (which also refreshes the stored
// copy), then the config stored in the database, then the built-in
// default, seeded on first use so later runs are stable even if the
// binary's defaults change.
func ResolveConfig(ctx context.Context, workspace string, r repo.Repo) (*config.Config, error) {
	fileCfg, err := config.LoadOptional(workspace)
	if err != nil {
		return nil, err
	}
	if fileCfg != nil {
		if err := r.UpsertRuleConfig(ctx, fileCfg); err != nil {
			return nil, fmt.Errorf("store rule config: %w", err)
		}
		return fileCfg, nil
	}
	cfg, err := r.GetRuleConfig(ctx)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	seed := config.Default()
	if err := r.UpsertRuleConfig(ctx, seed); err != nil {
		return nil, fmt.Errorf("seed rule config: %w", err)
	}
	return seed, nil
}
