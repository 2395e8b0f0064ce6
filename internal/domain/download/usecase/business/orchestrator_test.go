package business

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patt509/YT-Downloader/internal/domain/download/consts"
	"github.com/patt509/YT-Downloader/internal/domain/download/dto"
	"github.com/patt509/YT-Downloader/internal/domain/download/entities"
	downloaderrors "github.com/patt509/YT-Downloader/internal/domain/download/errors"
	"github.com/patt509/YT-Downloader/internal/domain/download/storage"
)

const (
	watchLink = "https://www.youtube.com/watch?v=abc123"
	musicLink = "https://music.youtube.com/watch?v=abc123"
)

type fakeResolver struct {
	info           *entities.MediaInfo
	resolveErr     error
	materializeErr error
	panicOnResolve bool
	payload        []byte

	// gate, when set, blocks Materialize after the first write until closed;
	// the block ignores ctx like a stuck network read
	gate     chan struct{}
	returned chan struct{}

	resolveCalls     atomic.Int32
	materializeCalls atomic.Int32

	mu    sync.Mutex
	paths []string
}

func (r *fakeResolver) Resolve(ctx context.Context, url string) (*entities.MediaInfo, error) {
	r.resolveCalls.Add(1)
	if r.panicOnResolve {
		panic("boom")
	}
	if r.resolveErr != nil {
		return nil, r.resolveErr
	}
	return r.info, nil
}

func (r *fakeResolver) Materialize(ctx context.Context, info *entities.MediaInfo, stream entities.StreamDescriptor, path string) error {
	r.materializeCalls.Add(1)
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()

	if err := os.WriteFile(path, r.payload, 0o644); err != nil {
		return err
	}

	if r.gate != nil {
		<-r.gate
		// late write after the operation gave up
		_ = os.WriteFile(path, r.payload, 0o644)
		defer close(r.returned)
	}

	return r.materializeErr
}

func (r *fakeResolver) materialized() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

type sentFile struct {
	chat     entities.ChatIdentity
	name     string
	data     []byte
	title    string
	duration uint
}

type fakeTransport struct {
	mu sync.Mutex

	posts   []string
	edits   []string
	deletes int
	offers  []dto.ChoiceOffer
	audio   []sentFile
	video   []sentFile

	postErr  error
	editErr  error
	offerErr error
	sendErr  error
}

func (t *fakeTransport) Post(ctx context.Context, chat entities.ChatIdentity, text string) (entities.NotificationRef, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.postErr != nil {
		return entities.NotificationRef{}, t.postErr
	}
	t.posts = append(t.posts, text)
	return entities.NotificationRef{Chat: chat, MessageID: len(t.posts)}, nil
}

func (t *fakeTransport) Edit(ctx context.Context, ref entities.NotificationRef, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.edits = append(t.edits, text)
	return t.editErr
}

func (t *fakeTransport) Delete(ctx context.Context, ref entities.NotificationRef) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deletes++
	return nil
}

func (t *fakeTransport) Offer(ctx context.Context, ref entities.NotificationRef, offer dto.ChoiceOffer) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.offerErr != nil {
		return t.offerErr
	}
	t.offers = append(t.offers, offer)
	return nil
}

func (t *fakeTransport) SendAudio(ctx context.Context, d dto.AudioDelivery) error {
	return t.send(&t.audio, d.Chat, d.File, d.Title, d.Duration)
}

func (t *fakeTransport) SendVideo(ctx context.Context, d dto.VideoDelivery) error {
	return t.send(&t.video, d.Chat, d.File, d.Title, d.Duration)
}

func (t *fakeTransport) send(dst *[]sentFile, chat entities.ChatIdentity, file entities.MediaFile, title string, duration uint) error {
	data, err := io.ReadAll(file.Reader)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sendErr != nil {
		return t.sendErr
	}
	*dst = append(*dst, sentFile{chat: chat, name: file.Name, data: data, title: title, duration: duration})
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []dto.OutcomeEvent
}

func (p *fakePublisher) PublishOutcome(ctx context.Context, event dto.OutcomeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeMetrics struct {
	started       atomic.Int32
	finished      atomic.Int32
	cleanupErrors atomic.Int32
}

func (m *fakeMetrics) RecordOperationStarted(string)                   { m.started.Add(1) }
func (m *fakeMetrics) RecordOperationFinished(string, string, float64) { m.finished.Add(1) }
func (m *fakeMetrics) RecordCleanupError()                             { m.cleanupErrors.Add(1) }

type harness struct {
	orch      *Orchestrator
	resolver  *fakeResolver
	transport *fakeTransport
	publisher *fakePublisher
	metrics   *fakeMetrics
	dir       string
}

func newHarness(t *testing.T, info *entities.MediaInfo) *harness {
	t.Helper()

	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "downloads"), zerolog.Nop())
	require.NoError(t, err)

	h := &harness{
		resolver:  &fakeResolver{info: info, payload: []byte("media-bytes")},
		transport: &fakeTransport{},
		publisher: &fakePublisher{},
		metrics:   &fakeMetrics{},
		dir:       store.Dir(),
	}

	policy := DefaultPolicy()
	policy.ProgressInterval = time.Hour

	h.orch = NewOrchestrator(h.resolver, h.publisher, h.metrics, store,
		map[string]string{"friend": "Hi friend!"}, policy, zerolog.Nop())
	h.orch.SetTransport(h.transport)

	return h
}

func (h *harness) dirEntries(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(h.dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// terminalNotifications counts placeholder finalizations: deletions, error
// edits and choice messages
func (h *harness) terminalNotifications() int {
	h.transport.mu.Lock()
	defer h.transport.mu.Unlock()

	n := h.transport.deletes + len(h.transport.offers)
	for _, e := range h.transport.edits {
		if e != consts.MessageDownloading && e != consts.MessageUploading {
			n++
		}
	}
	return n
}

func mediaInfo(d time.Duration) *entities.MediaInfo {
	return &entities.MediaInfo{
		ID:       "abc123",
		Title:    "Artist - Song",
		Duration: d,
		Streams: []entities.StreamDescriptor{
			{Kind: entities.StreamKindAudioOnly, Container: "webm", QualityRank: 160000, Ref: "a"},
			{Kind: entities.StreamKindProgressiveVideo, Container: "mp4", QualityRank: 360, Ref: "v"},
			{Kind: entities.StreamKindAdaptive, Container: "mp4", QualityRank: 1080, Ref: "x"},
		},
	}
}

func downloadRequest(kind entities.RequestedKind, username string) dto.DownloadRequest {
	return dto.DownloadRequest{
		URL:         watchLink,
		Kind:        kind,
		Destination: entities.ChatIdentity{ID: 42},
		Requester:   entities.UserIdentity{ID: 7, Username: username},
	}
}

func TestDownload_InvalidLink(t *testing.T) {
	h := newHarness(t, mediaInfo(200*time.Second))

	req := downloadRequest(entities.KindAudio, "")
	req.URL = "https://example.com/watch?v=abc"

	outcome := h.orch.Download(context.Background(), req)

	assert.Equal(t, OutcomeInvalidLink, outcome)
	assert.Zero(t, h.resolver.resolveCalls.Load())
	assert.Equal(t, []string{consts.MessageInvalidLink}, h.transport.posts)
	assert.Empty(t, h.transport.edits)
	assert.Empty(t, h.dirEntries(t))
}

func TestDownload_AudioSuccess(t *testing.T) {
	h := newHarness(t, mediaInfo(200*time.Second))

	outcome := h.orch.Download(context.Background(), downloadRequest(entities.KindAudio, ""))

	require.Equal(t, OutcomeSuccess, outcome)
	require.Len(t, h.transport.audio, 1)

	sent := h.transport.audio[0]
	assert.Equal(t, "Artist - Song.mp3", sent.name)
	assert.Equal(t, []byte("media-bytes"), sent.data)
	assert.Equal(t, "Artist - Song", sent.title)
	assert.Equal(t, uint(200), sent.duration)
	assert.Equal(t, int64(42), sent.chat.ID)

	paths := h.resolver.materialized()
	require.Len(t, paths, 1)
	assert.Equal(t, ".webm", filepath.Ext(paths[0]))
	assert.NoFileExists(t, paths[0])
	assert.NoFileExists(t, strings.TrimSuffix(paths[0], ".webm")+".mp3")

	assert.Equal(t, 1, h.transport.deletes)
	assert.Equal(t, []string{consts.MessageProcessing}, h.transport.posts)
	assert.Equal(t, 1, h.terminalNotifications())
	assert.Empty(t, h.dirEntries(t))
}

func TestDownload_VideoSuccess(t *testing.T) {
	h := newHarness(t, mediaInfo(200*time.Second))

	outcome := h.orch.Download(context.Background(), downloadRequest(entities.KindVideo, ""))

	require.Equal(t, OutcomeSuccess, outcome)
	require.Len(t, h.transport.video, 1)
	assert.Equal(t, "Artist - Song.mp4", h.transport.video[0].name)
	assert.Empty(t, h.transport.audio)
	assert.Empty(t, h.dirEntries(t))
}

func TestDownload_VideoTooLong(t *testing.T) {
	h := newHarness(t, mediaInfo(700*time.Second))

	outcome := h.orch.Download(context.Background(), downloadRequest(entities.KindVideo, ""))

	require.Equal(t, OutcomeVideoTooLong, outcome)
	assert.Zero(t, h.resolver.materializeCalls.Load())
	assert.Empty(t, h.transport.edits)
	require.Len(t, h.transport.offers, 1)

	offer := h.transport.offers[0]
	assert.Equal(t, []entities.RequestedKind{entities.KindAudio}, offer.Kinds)
	assert.Equal(t, "abc123", offer.VideoID)
	assert.Contains(t, offer.Text, "11:40")
	assert.Contains(t, offer.Text, "10 minutes")
	assert.Contains(t, offer.Text, "10:00")
	assert.Contains(t, offer.Text, consts.MessageAudioStillAvailable)
	assert.Equal(t, 1, h.terminalNotifications())
}

func TestDownload_VideoTooLongWithoutAudio(t *testing.T) {
	info := mediaInfo(700 * time.Second)
	info.Streams = info.Streams[1:]
	h := newHarness(t, info)

	outcome := h.orch.Download(context.Background(), downloadRequest(entities.KindVideo, ""))

	require.Equal(t, OutcomeVideoTooLong, outcome)
	assert.Empty(t, h.transport.offers)
	require.Len(t, h.transport.edits, 1)
	assert.Contains(t, h.transport.edits[0], "11:40")
	assert.NotContains(t, h.transport.edits[0], consts.MessageAudioStillAvailable)
}

func TestDownload_VideoTooLongAudioOfferFails(t *testing.T) {
	h := newHarness(t, mediaInfo(700*time.Second))
	h.transport.offerErr = errors.New("bad request")

	outcome := h.orch.Download(context.Background(), downloadRequest(entities.KindVideo, ""))

	require.Equal(t, OutcomeVideoTooLong, outcome)
	require.Len(t, h.transport.edits, 1)
	assert.NotContains(t, h.transport.edits[0], consts.MessageAudioStillAvailable)
	assert.Equal(t, 1, h.terminalNotifications())
}

func TestDownload_LongAudioIsAllowed(t *testing.T) {
	h := newHarness(t, mediaInfo(700*time.Second))

	outcome := h.orch.Download(context.Background(), downloadRequest(entities.KindAudio, ""))

	assert.Equal(t, OutcomeSuccess, outcome)
	assert.Len(t, h.transport.audio, 1)
}

func TestDownload_NoStreamAvailable(t *testing.T) {
	info := mediaInfo(200 * time.Second)
	info.Streams = info.Streams[1:]
	h := newHarness(t, info)

	outcome := h.orch.Download(context.Background(), downloadRequest(entities.KindAudio, ""))

	assert.Equal(t, OutcomeNoStream, outcome)
	assert.Zero(t, h.resolver.materializeCalls.Load())
	assert.Equal(t, []string{consts.MessageNoAudio}, h.transport.edits)
}

func TestDownload_ResolutionFailed(t *testing.T) {
	h := newHarness(t, nil)
	h.resolver.resolveErr = errors.New("video unavailable")

	outcome := h.orch.Download(context.Background(), downloadRequest(entities.KindVideo, ""))

	assert.Equal(t, OutcomeResolutionFailed, outcome)
	assert.Equal(t, []string{consts.MessageGenericError}, h.transport.edits)
	assert.Equal(t, 1, h.terminalNotifications())
}

func TestDownload_ResolverPanicIsResolutionFailure(t *testing.T) {
	h := newHarness(t, nil)
	h.resolver.panicOnResolve = true

	outcome := h.orch.Download(context.Background(), downloadRequest(entities.KindAudio, ""))

	assert.Equal(t, OutcomeResolutionFailed, outcome)
	assert.Equal(t, []string{consts.MessageGenericError}, h.transport.edits)
}

func TestDownload_PartialFileRemovedOnMaterializeError(t *testing.T) {
	h := newHarness(t, mediaInfo(200*time.Second))
	h.resolver.materializeErr = errors.New("connection reset")

	outcome := h.orch.Download(context.Background(), downloadRequest(entities.KindAudio, ""))

	assert.Equal(t, OutcomeResolutionFailed, outcome)
	assert.Empty(t, h.transport.audio)
	assert.Empty(t, h.dirEntries(t))
}

func TestDownload_DeliveryFailed(t *testing.T) {
	h := newHarness(t, mediaInfo(200*time.Second))
	h.transport.sendErr = errors.New("request entity too large")

	outcome := h.orch.Download(context.Background(), downloadRequest(entities.KindVideo, "friend"))

	assert.Equal(t, OutcomeDeliveryFailed, outcome)
	assert.Equal(t, []string{consts.MessageDeliveryError}, h.transport.edits)
	assert.NotContains(t, h.transport.posts, "Hi friend!")
	assert.Empty(t, h.dirEntries(t))
}

func TestDownload_Timeout(t *testing.T) {
	h := newHarness(t, mediaInfo(200*time.Second))
	h.resolver.gate = make(chan struct{})
	h.resolver.returned = make(chan struct{})
	h.orch.policy.OperationTimeout = 50 * time.Millisecond

	start := time.Now()
	outcome := h.orch.Download(context.Background(), downloadRequest(entities.KindAudio, "friend"))

	require.Equal(t, OutcomeTimeout, outcome)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, []string{consts.MessageTimeout}, h.transport.edits)
	assert.Zero(t, h.transport.deletes)
	assert.NotContains(t, h.transport.posts, "Hi friend!")

	close(h.resolver.gate)
	<-h.resolver.returned

	require.Eventually(t, func() bool {
		entries, err := os.ReadDir(h.dir)
		return err == nil && len(entries) == 0
	}, 2*time.Second, 10*time.Millisecond)

	assert.Empty(t, h.transport.audio)
	assert.Equal(t, 1, h.terminalNotifications())
}

func TestDownload_CourtesyMessage(t *testing.T) {
	t.Run("sent after success", func(t *testing.T) {
		h := newHarness(t, mediaInfo(200*time.Second))

		outcome := h.orch.Download(context.Background(), downloadRequest(entities.KindAudio, "@Friend"))

		require.Equal(t, OutcomeSuccess, outcome)
		assert.Equal(t, []string{consts.MessageProcessing, "Hi friend!"}, h.transport.posts)
	})

	t.Run("not sent after failure", func(t *testing.T) {
		h := newHarness(t, mediaInfo(700*time.Second))

		outcome := h.orch.Download(context.Background(), downloadRequest(entities.KindVideo, "friend"))

		require.Equal(t, OutcomeVideoTooLong, outcome)
		assert.Equal(t, []string{consts.MessageProcessing}, h.transport.posts)
	})

	t.Run("operator text is escaped", func(t *testing.T) {
		h := newHarness(t, mediaInfo(200*time.Second))
		h.orch.courtesy = map[string]string{"fan": "I <3 R&B"}

		h.orch.Download(context.Background(), downloadRequest(entities.KindAudio, "fan"))

		assert.Equal(t, []string{consts.MessageProcessing, "I &lt;3 R&amp;B"}, h.transport.posts)
	})

	t.Run("unknown user", func(t *testing.T) {
		h := newHarness(t, mediaInfo(200*time.Second))

		h.orch.Download(context.Background(), downloadRequest(entities.KindAudio, "stranger"))

		assert.Equal(t, []string{consts.MessageProcessing}, h.transport.posts)
	})
}

func TestDownload_FinalizeErrorDoesNotChangeOutcome(t *testing.T) {
	h := newHarness(t, mediaInfo(700*time.Second))
	h.transport.offerErr = errors.New("message to edit not found")
	h.transport.editErr = errors.New("message to edit not found")

	outcome := h.orch.Download(context.Background(), downloadRequest(entities.KindVideo, ""))

	assert.Equal(t, OutcomeVideoTooLong, outcome)
	assert.Len(t, h.publisher.events, 1)
}

func TestDownload_PlaceholderPostFails(t *testing.T) {
	h := newHarness(t, mediaInfo(200*time.Second))
	h.transport.postErr = errors.New("bot was blocked by the user")

	outcome := h.orch.Download(context.Background(), downloadRequest(entities.KindAudio, ""))

	assert.Equal(t, OutcomeSuccess, outcome)
	assert.Empty(t, h.transport.edits)
	assert.Zero(t, h.transport.deletes)
	assert.Empty(t, h.dirEntries(t))
}

func TestDownload_PublishesOutcome(t *testing.T) {
	h := newHarness(t, mediaInfo(200*time.Second))

	h.orch.Download(context.Background(), downloadRequest(entities.KindAudio, ""))

	require.Len(t, h.publisher.events, 1)
	ev := h.publisher.events[0]
	assert.NotEmpty(t, ev.OperationID)
	assert.Equal(t, int64(7), ev.UserID)
	assert.Equal(t, int64(42), ev.ChatID)
	assert.Equal(t, "audio", ev.Kind)
	assert.Equal(t, string(OutcomeSuccess), ev.Outcome)
	assert.Equal(t, "Artist - Song", ev.Title)
	assert.Equal(t, uint(200), ev.DurationSeconds)
	assert.Empty(t, ev.ErrorType)

	assert.Equal(t, int32(1), h.metrics.started.Load())
	assert.Equal(t, int32(1), h.metrics.finished.Load())
	assert.Zero(t, h.metrics.cleanupErrors.Load())
}

func TestDownload_OutcomeErrorType(t *testing.T) {
	tests := []struct {
		name    string
		kind    entities.RequestedKind
		info    *entities.MediaInfo
		setup   func(h *harness)
		outcome Outcome
		want    string
	}{
		{
			name: "source unavailable",
			kind: entities.KindAudio,
			setup: func(h *harness) {
				h.resolver.resolveErr = fmt.Errorf("%w: unexpected status code: 503", downloaderrors.ErrSourceUnavailable)
			},
			outcome: OutcomeResolutionFailed,
			want:    "unavailable",
		},
		{
			name: "private video",
			kind: entities.KindAudio,
			setup: func(h *harness) {
				h.resolver.resolveErr = downloaderrors.ErrMediaRestricted
			},
			outcome: OutcomeResolutionFailed,
			want:    "permission",
		},
		{
			name:    "too long",
			kind:    entities.KindVideo,
			info:    mediaInfo(700 * time.Second),
			outcome: OutcomeVideoTooLong,
			want:    "validation",
		},
		{
			name:    "no stream",
			kind:    entities.KindAudio,
			info:    &entities.MediaInfo{ID: "abc123", Title: "Silent", Duration: time.Minute},
			outcome: OutcomeNoStream,
			want:    "not_found",
		},
		{
			name: "delivery",
			kind: entities.KindVideo,
			info: mediaInfo(200 * time.Second),
			setup: func(h *harness) {
				h.transport.sendErr = errors.New("request entity too large")
			},
			outcome: OutcomeDeliveryFailed,
			want:    "internal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.info)
			if tt.setup != nil {
				tt.setup(h)
			}

			outcome := h.orch.Download(context.Background(), downloadRequest(tt.kind, ""))

			require.Equal(t, tt.outcome, outcome)
			require.Len(t, h.publisher.events, 1)
			assert.Equal(t, tt.want, h.publisher.events[0].ErrorType)
		})
	}
}

func TestOffer(t *testing.T) {
	h := newHarness(t, mediaInfo(200*time.Second))

	outcome := h.orch.Offer(context.Background(), watchLink, entities.ChatIdentity{ID: 42}, entities.UserIdentity{ID: 7})

	require.Equal(t, OutcomeOffered, outcome)
	require.Len(t, h.transport.offers, 1)

	offer := h.transport.offers[0]
	assert.Equal(t, "abc123", offer.VideoID)
	assert.Equal(t, []entities.RequestedKind{entities.KindAudio, entities.KindVideo}, offer.Kinds)
	assert.Contains(t, offer.Text, "Artist - Song")
	assert.Contains(t, offer.Text, "03:20")
	assert.Zero(t, h.resolver.materializeCalls.Load())
	assert.Empty(t, h.transport.edits)
	assert.Equal(t, 1, h.terminalNotifications())
}

func TestOffer_TooLongOffersAudioOnly(t *testing.T) {
	h := newHarness(t, mediaInfo(700*time.Second))

	outcome := h.orch.Offer(context.Background(), watchLink, entities.ChatIdentity{ID: 42}, entities.UserIdentity{ID: 7})

	require.Equal(t, OutcomeVideoTooLong, outcome)
	require.Len(t, h.transport.offers, 1)
	assert.Equal(t, []entities.RequestedKind{entities.KindAudio}, h.transport.offers[0].Kinds)
	assert.Contains(t, h.transport.offers[0].Text, "11:40")
	assert.Contains(t, h.transport.offers[0].Text, consts.MessageAudioStillAvailable)
	assert.Empty(t, h.transport.edits)
}

func TestOffer_TooLongWithoutAudio(t *testing.T) {
	info := mediaInfo(700 * time.Second)
	info.Streams = info.Streams[1:]
	h := newHarness(t, info)

	outcome := h.orch.Offer(context.Background(), watchLink, entities.ChatIdentity{ID: 42}, entities.UserIdentity{ID: 7})

	require.Equal(t, OutcomeVideoTooLong, outcome)
	assert.Empty(t, h.transport.offers)
	require.Len(t, h.transport.edits, 1)
	assert.Contains(t, h.transport.edits[0], "11:40")
	assert.NotContains(t, h.transport.edits[0], consts.MessageAudioStillAvailable)
}

func TestOffer_PresenterFailureFallsBackToError(t *testing.T) {
	h := newHarness(t, mediaInfo(200*time.Second))
	h.transport.offerErr = errors.New("bad request")

	outcome := h.orch.Offer(context.Background(), watchLink, entities.ChatIdentity{ID: 42}, entities.UserIdentity{ID: 7})

	assert.Equal(t, OutcomeResolutionFailed, outcome)
	assert.Equal(t, []string{consts.MessageGenericError}, h.transport.edits)
}

func TestOffer_NoStreams(t *testing.T) {
	info := mediaInfo(200 * time.Second)
	info.Streams = info.Streams[2:]
	h := newHarness(t, info)

	outcome := h.orch.Offer(context.Background(), watchLink, entities.ChatIdentity{ID: 42}, entities.UserIdentity{ID: 7})

	assert.Equal(t, OutcomeNoStream, outcome)
	assert.Equal(t, []string{consts.MessageNoStream}, h.transport.edits)
}

func TestHandleRequest(t *testing.T) {
	chat := entities.ChatIdentity{ID: 42}
	user := entities.UserIdentity{ID: 7}

	t.Run("music link goes straight to audio", func(t *testing.T) {
		h := newHarness(t, mediaInfo(700*time.Second))

		outcome := h.orch.HandleRequest(context.Background(), dto.DirectLinkRequest{Text: "listen " + musicLink, Sender: user, Chat: chat})

		assert.Equal(t, OutcomeSuccess, outcome)
		assert.Len(t, h.transport.audio, 1)
		assert.Empty(t, h.transport.offers)
	})

	t.Run("watch link is offered", func(t *testing.T) {
		h := newHarness(t, mediaInfo(200*time.Second))

		outcome := h.orch.HandleRequest(context.Background(), dto.DirectLinkRequest{Text: watchLink, Sender: user, Chat: chat})

		assert.Equal(t, OutcomeOffered, outcome)
		assert.Len(t, h.transport.offers, 1)
	})

	t.Run("plain text is rejected", func(t *testing.T) {
		h := newHarness(t, mediaInfo(200*time.Second))

		outcome := h.orch.HandleRequest(context.Background(), dto.DirectLinkRequest{Text: "hello there", Sender: user, Chat: chat})

		assert.Equal(t, OutcomeInvalidLink, outcome)
		assert.Equal(t, []string{consts.MessageInvalidLink}, h.transport.posts)
		assert.Zero(t, h.resolver.resolveCalls.Load())
	})

	t.Run("format choice downloads", func(t *testing.T) {
		h := newHarness(t, mediaInfo(200*time.Second))

		outcome := h.orch.HandleRequest(context.Background(), dto.FormatChoiceRequest{
			Kind: entities.KindVideo, URL: "https://youtu.be/abc123", Sender: user, Chat: chat,
		})

		assert.Equal(t, OutcomeSuccess, outcome)
		assert.Len(t, h.transport.video, 1)
	})

	t.Run("unknown kind is rejected", func(t *testing.T) {
		h := newHarness(t, mediaInfo(200*time.Second))

		outcome := h.orch.HandleRequest(context.Background(), dto.FormatChoiceRequest{
			Kind: "gif", URL: "https://youtu.be/abc123", Sender: user, Chat: chat,
		})

		assert.Equal(t, OutcomeInvalidLink, outcome)
	})
}

func TestClassify(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, classify(nil))
	assert.Equal(t, OutcomeTimeout, classify(context.DeadlineExceeded))
	assert.Equal(t, OutcomeResolutionFailed, classify(errors.New("weird")))
	assert.False(t, OutcomeOffered.Failed())
	assert.True(t, OutcomeTimeout.Failed())
}
