package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/kkdai/youtube/v2"
	"go.uber.org/zap"

	"ytgateway/pkg/models"
)

// videoClient is the part of youtube.Client the resolver uses
type videoClient interface {
	GetVideoContext(ctx context.Context, url string) (*youtube.Video, error)
	GetStreamContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (io.ReadCloser, int64, error)
}

// YouTube resolves videos with github.com/kkdai/youtube/v2
type YouTube struct {
	client videoClient
	log    *zap.SugaredLogger
}

// NewYouTube creates a YouTube resolver. A nil httpClient uses http.DefaultClient.
func NewYouTube(httpClient *http.Client, logger *zap.Logger) *YouTube {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &YouTube{
		client: &youtube.Client{HTTPClient: httpClient},
		log:    logger.Named("youtube").Sugar(),
	}
}

// GetInfo fetches video metadata
func (y *YouTube) GetInfo(ctx context.Context, url string) (*models.VideoMetadata, error) {
	video, err := y.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to get video info: %w", err)
	}

	meta := &models.VideoMetadata{
		ID:       video.ID,
		Title:    video.Title,
		Author:   video.Author,
		Duration: video.Duration.Seconds(),
		Formats:  make([]models.FormatInfo, 0, len(video.Formats)),
	}

	if n := len(video.Thumbnails); n > 0 {
		meta.Thumbnail = video.Thumbnails[n-1].URL
	}

	for _, f := range video.Formats {
		meta.Formats = append(meta.Formats, formatInfo(f))
	}

	return meta, nil
}

// OpenStream resolves the video again and opens the selected format
func (y *YouTube) OpenStream(ctx context.Context, url string, opts models.StreamOptions) (*models.MediaStream, error) {
	video, err := y.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to get video info: %w", err)
	}

	format, err := SelectFormat(video.Formats, opts)
	if err != nil {
		return nil, fmt.Errorf("video %s: %w", video.ID, err)
	}

	y.log.Debugw("Selected format",
		"video_id", video.ID,
		"itag", format.ItagNo,
		"quality", format.QualityLabel,
		"mime_type", format.MimeType,
	)

	stream, size, err := y.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, fmt.Errorf("failed to get stream: %w", err)
	}

	if size <= 0 {
		size = -1
	}

	return &models.MediaStream{
		Body:     stream,
		Size:     size,
		MimeType: mimeBase(format.MimeType),
	}, nil
}

// SelectFormat picks the format matching opts.
//
// Only formats with a video track in the requested container are candidates. Formats that
// also carry audio win over video-only ones. Among the survivors the tallest (then highest
// bitrate) wins.
func SelectFormat(formats youtube.FormatList, opts models.StreamOptions) (*youtube.Format, error) {
	candidates := make(youtube.FormatList, 0, len(formats))
	for _, f := range formats {
		if !strings.HasPrefix(f.MimeType, "video/") {
			continue
		}
		if opts.Format != "" && mimeExt(f.MimeType) != opts.Format {
			continue
		}
		candidates = append(candidates, f)
	}

	if withAudio := candidates.WithAudioChannels(); len(withAudio) > 0 {
		candidates = withAudio
	}

	if len(candidates) == 0 {
		return nil, ErrNoFormat
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Height != candidates[j].Height {
			return candidates[i].Height > candidates[j].Height
		}
		return candidates[i].Bitrate > candidates[j].Bitrate
	})

	return &candidates[0], nil
}

func formatInfo(f youtube.Format) models.FormatInfo {
	return models.FormatInfo{
		ID:           strconv.Itoa(f.ItagNo),
		Ext:          mimeExt(f.MimeType),
		MimeType:     f.MimeType,
		QualityLabel: f.QualityLabel,
		Width:        f.Width,
		Height:       f.Height,
		Bitrate:      f.Bitrate,
		Size:         f.ContentLength,
		HasAudio:     f.AudioChannels > 0,
		HasVideo:     strings.HasPrefix(f.MimeType, "video/"),
	}
}

// mimeBase strips parameters: `video/mp4; codecs="avc1"` -> video/mp4
func mimeBase(mimeType string) string {
	return strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
}

// mimeExt returns the subtype of a MIME type: `video/mp4; codecs="avc1"` -> mp4
func mimeExt(mimeType string) string {
	parts := strings.SplitN(mimeBase(mimeType), "/", 2)
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}
