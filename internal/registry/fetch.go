package registry

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	getter "github.com/hashicorp/go-getter"
)

// Fetch downloads an asset directory from src into dst. src accepts anything
// go-getter understands (local paths, http archives, git, s3, ...). The
// directory is replaced wholesale so stale documents never survive.
func Fetch(ctx context.Context, src, dst string, log *slog.Logger) error {
	if src == "" {
		return fmt.Errorf("fetch assets: empty source")
	}
	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("fetch assets: clear %s: %w", dst, err)
	}

	log.Info("fetching block assets", "src", src, "dst", dst)
	client := &getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Mode: getter.ClientModeDir,
	}
	if err := client.Get(); err != nil {
		return fmt.Errorf("fetch assets from %s: %w", src, err)
	}
	log.Info("fetched block assets", "dst", dst)
	return nil
}
