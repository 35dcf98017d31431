package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"go.uber.org/zap"

	"ytgateway/pkg/models"
)

var ErrProcessFailed = errors.New("yt-dlp failed")

// Ytdlp resolves videos by running the yt-dlp executable
type Ytdlp struct {
	path string
	log  *zap.SugaredLogger
}

// ytdlpVideoInfo is the subset of `yt-dlp -J` output the gateway reads
type ytdlpVideoInfo struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Uploader  string        `json:"uploader"`
	Duration  float64       `json:"duration"`
	Thumbnail string        `json:"thumbnail"`
	Formats   []ytdlpFormat `json:"formats"`
}

type ytdlpFormat struct {
	FormatID       string  `json:"format_id"`
	Ext            string  `json:"ext"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Filesize       int64   `json:"filesize"`
	FilesizeApprox int64   `json:"filesize_approx"`
	TBR            float64 `json:"tbr"`
	VCodec         string  `json:"vcodec"`
	ACodec         string  `json:"acodec"`
	FormatNote     string  `json:"format_note"`
}

// NewYtdlp creates a resolver that runs the executable at path
func NewYtdlp(path string, logger *zap.Logger) *Ytdlp {
	if path == "" {
		path = "yt-dlp"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Ytdlp{
		path: path,
		log:  logger.Named("ytdlp").Sugar(),
	}
}

// GetInfo runs `yt-dlp -J` and decodes its JSON output
func (y *Ytdlp) GetInfo(ctx context.Context, url string) (*models.VideoMetadata, error) {
	args := []string{
		"-J",
		"--no-playlist",
		"--no-warnings",
		url,
	}

	cmd := exec.CommandContext(ctx, y.path, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %s", ErrProcessFailed, err, strings.TrimSpace(stderr.String()))
	}

	var info ytdlpVideoInfo
	if err := json.Unmarshal(output, &info); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp output: %w", err)
	}

	meta := &models.VideoMetadata{
		ID:        info.ID,
		Title:     info.Title,
		Author:    info.Uploader,
		Duration:  info.Duration,
		Thumbnail: info.Thumbnail,
		Formats:   make([]models.FormatInfo, 0, len(info.Formats)),
	}

	for _, f := range info.Formats {
		size := f.Filesize
		if size == 0 {
			size = f.FilesizeApprox
		}

		meta.Formats = append(meta.Formats, models.FormatInfo{
			ID:           f.FormatID,
			Ext:          f.Ext,
			QualityLabel: f.FormatNote,
			Width:        f.Width,
			Height:       f.Height,
			Bitrate:      int(f.TBR * 1000),
			Size:         size,
			HasAudio:     hasCodec(f.ACodec),
			HasVideo:     hasCodec(f.VCodec),
		})
	}

	return meta, nil
}

// OpenStream starts yt-dlp writing the selected format to stdout.
// The process is bound to ctx and is killed when the stream is closed.
func (y *Ytdlp) OpenStream(ctx context.Context, url string, opts models.StreamOptions) (*models.MediaStream, error) {
	args := []string{
		"-f", formatSelector(opts),
		"-o", "-",
		"--no-playlist",
		"--no-warnings",
		"--quiet",
		url,
	}

	cmd := exec.CommandContext(ctx, y.path, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	stream := &processStream{cmd: cmd, stdout: stdout}
	cmd.Stderr = &stream.stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessFailed, err)
	}

	y.log.Debugw("Started yt-dlp", "pid", cmd.Process.Pid, "url", url)

	mimeType := "video/mp4"
	if opts.Format != "" && opts.Format != models.FormatMP4 {
		mimeType = "video/" + opts.Format
	}

	return &models.MediaStream{
		Body:     stream,
		Size:     -1,
		MimeType: mimeType,
	}, nil
}

// formatSelector translates opts into a yt-dlp -f expression
func formatSelector(opts models.StreamOptions) string {
	if opts.Format == "" {
		return "best"
	}

	return fmt.Sprintf("best[ext=%s]/best", opts.Format)
}

func hasCodec(codec string) bool {
	return codec != "" && codec != "none"
}

// processStream exposes a running process' stdout as an io.ReadCloser
type processStream struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr bytes.Buffer

	waitOnce sync.Once
	waitErr  error
}

func (p *processStream) Read(b []byte) (int, error) {
	n, err := p.stdout.Read(b)
	if errors.Is(err, io.EOF) {
		if werr := p.wait(); werr != nil {
			return n, fmt.Errorf("%w: %v: %s", ErrProcessFailed, werr, strings.TrimSpace(p.stderr.String()))
		}
	}
	return n, err
}

// Close kills the process if it is still running and reaps it
func (p *processStream) Close() error {
	_ = p.cmd.Process.Kill()
	p.wait()
	return nil
}

func (p *processStream) wait() error {
	p.waitOnce.Do(func() {
		p.waitErr = p.cmd.Wait()
	})
	return p.waitErr
}
