package api

import (
	"bytes"
	"context"
	"io"
	"sync"

	"ytgateway/pkg/models"
)

// mockResolver is a mock resolver for testing
type mockResolver struct {
	mu sync.Mutex

	info    *models.VideoMetadata
	infoErr error
	// blockInfo makes GetInfo wait for ctx to end
	blockInfo bool

	body      []byte
	size      int64
	openErr   error
	readErr   error
	newStream func() io.ReadCloser

	infoCalls   int
	streamCalls int
	gotURL      string
	gotOpts     models.StreamOptions
	stream      *trackingStream
}

func (m *mockResolver) GetInfo(ctx context.Context, url string) (*models.VideoMetadata, error) {
	m.mu.Lock()
	m.infoCalls++
	m.gotURL = url
	m.mu.Unlock()

	if m.blockInfo {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.infoErr != nil {
		return nil, m.infoErr
	}
	if m.info != nil {
		return m.info, nil
	}
	return &models.VideoMetadata{ID: "TEST", Title: "Test Video"}, nil
}

func (m *mockResolver) OpenStream(ctx context.Context, url string, opts models.StreamOptions) (*models.MediaStream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.streamCalls++
	m.gotOpts = opts
	if m.openErr != nil {
		return nil, m.openErr
	}

	var body io.ReadCloser
	if m.newStream != nil {
		body = m.newStream()
	} else {
		var r io.Reader = bytes.NewReader(m.body)
		if m.readErr != nil {
			r = io.MultiReader(r, errReader{m.readErr})
		}
		body = io.NopCloser(r)
	}

	m.stream = &trackingStream{ReadCloser: body, closed: make(chan struct{})}

	size := m.size
	if size == 0 {
		size = -1
	}

	return &models.MediaStream{Body: m.stream, Size: size, MimeType: "video/mp4"}, nil
}

func (m *mockResolver) calls() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.infoCalls, m.streamCalls
}

func (m *mockResolver) lastStream() *trackingStream {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stream
}

// trackingStream records when the gateway closes a stream
type trackingStream struct {
	io.ReadCloser
	once   sync.Once
	closed chan struct{}
}

func (t *trackingStream) Close() error {
	t.once.Do(func() { close(t.closed) })
	return t.ReadCloser.Close()
}

func (t *trackingStream) isClosed() bool {
	select {
	case <-t.closed:
		return true
	default:
		return false
	}
}

type errReader struct {
	err error
}

func (e errReader) Read(p []byte) (int, error) {
	return 0, e.err
}
