// Package resolver turns a video page URL into metadata and a media byte stream.
//
// The gateway only talks to the Resolver interface. Two backends exist: YouTube, built on
// github.com/kkdai/youtube/v2, and Ytdlp, which shells out to the yt-dlp executable.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"ytgateway/pkg/models"
)

var (
	ErrNoFormat        = errors.New("no format matches the requested options")
	ErrUnknownResolver = errors.New("unknown resolver")
)

// Resolver resolves video metadata and opens media streams
type Resolver interface {
	// GetInfo fetches metadata for the video behind url.
	GetInfo(ctx context.Context, url string) (*models.VideoMetadata, error)
	// OpenStream opens the representation selected by opts. The caller owns the
	// returned stream and must close it.
	OpenStream(ctx context.Context, url string, opts models.StreamOptions) (*models.MediaStream, error)
}

// New creates the resolver named by cfg.Resolver
func New(cfg *models.Config, logger *zap.Logger) (Resolver, error) {
	switch cfg.Resolver {
	case models.ResolverYouTube, "":
		return NewYouTube(nil, logger), nil
	case models.ResolverYtdlp:
		return NewYtdlp(cfg.YtdlpPath, logger), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownResolver, cfg.Resolver)
	}
}
