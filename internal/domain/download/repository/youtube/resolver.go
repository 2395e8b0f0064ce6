// Package youtube contains the YouTube media resolver
package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kkdai/youtube/v2"
	"github.com/rs/zerolog"

	"github.com/patt509/YT-Downloader/internal/domain/download/deps"
	"github.com/patt509/YT-Downloader/internal/domain/download/entities"
	downloaderrors "github.com/patt509/YT-Downloader/internal/domain/download/errors"
	pkgerrors "github.com/patt509/YT-Downloader/pkg/errors"
	"github.com/patt509/YT-Downloader/pkg/retry"
)

// Resolver implements deps.MediaResolver on top of kkdai/youtube
type Resolver struct {
	client *youtube.Client
	retry  retry.Config
	logger zerolog.Logger
}

// NewResolver creates a new Resolver
func NewResolver(logger zerolog.Logger) deps.MediaResolver {
	return newResolver(&youtube.Client{}, retry.DefaultConfig(), logger)
}

func newResolver(client *youtube.Client, cfg retry.Config, logger zerolog.Logger) *Resolver {
	return &Resolver{
		client: client,
		retry:  cfg,
		logger: logger,
	}
}

// streamRef is the opaque handle stored in StreamDescriptor.Ref
type streamRef struct {
	video  *youtube.Video
	format youtube.Format
}

// Resolve fetches the video metadata and its format list
func (r *Resolver) Resolve(ctx context.Context, url string) (*entities.MediaInfo, error) {
	video, err := retry.Do(ctx, r.retry, func(ctx context.Context) (*youtube.Video, error) {
		video, err := r.client.GetVideoContext(ctx, url)
		if err != nil {
			return nil, resolveError(err)
		}
		return video, nil
	}, pkgerrors.IsUnavailableError)
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}

	info := &entities.MediaInfo{
		ID:       video.ID,
		Title:    video.Title,
		Duration: video.Duration,
		Streams:  describeFormats(video, video.Formats),
	}

	r.logger.Debug().
		Str("video_id", info.ID).
		Dur("duration", info.Duration).
		Int("formats", len(video.Formats)).
		Msg("Video resolved")

	return info, nil
}

// Materialize downloads the stream to path. Cancelling ctx closes the
// stream so a stalled read returns.
func (r *Resolver) Materialize(ctx context.Context, info *entities.MediaInfo, stream entities.StreamDescriptor, path string) error {
	ref, ok := stream.Ref.(streamRef)
	if !ok {
		return fmt.Errorf("stream of %s was not produced by this resolver", info.ID)
	}

	body, size, err := r.client.GetStreamContext(ctx, ref.video, &ref.format)
	if err != nil {
		return fmt.Errorf("%w: failed to open stream: %w", downloaderrors.ErrSourceUnavailable, err)
	}
	defer body.Close()

	stop := context.AfterFunc(ctx, func() {
		body.Close()
	})
	defer stop()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	written, copyErr := io.Copy(file, body)
	closeErr := file.Close()

	if err := ctx.Err(); err != nil {
		return err
	}
	if copyErr != nil {
		return fmt.Errorf("%w: failed to download stream: %w", downloaderrors.ErrSourceUnavailable, copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close file: %w", closeErr)
	}
	if size > 0 && written < size {
		return fmt.Errorf("%w: short download: %d of %d bytes: %w", downloaderrors.ErrSourceUnavailable, written, size, io.ErrUnexpectedEOF)
	}

	r.logger.Debug().
		Str("video_id", info.ID).
		Int("itag", ref.format.ItagNo).
		Int64("bytes", written).
		Msg("Stream downloaded")

	return nil
}

// describeFormats maps every format onto a descriptor. Formats without a
// usable mime type are skipped.
func describeFormats(video *youtube.Video, formats youtube.FormatList) []entities.StreamDescriptor {
	streams := make([]entities.StreamDescriptor, 0, len(formats))
	for _, f := range formats {
		kind, err := streamKind(f)
		if err != nil {
			continue
		}

		streams = append(streams, entities.StreamDescriptor{
			Kind:        kind,
			Container:   container(f.MimeType),
			QualityRank: qualityRank(kind, f),
			Ref:         streamRef{video: video, format: f},
		})
	}
	return streams
}

// resolveError tags a client error with its kind. Anything unrecognised is
// taken as the source being unavailable, the only kind retried.
func resolveError(err error) error {
	var status youtube.ErrPlayabiltyStatus

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, youtube.ErrInvalidCharactersInVideoID), errors.Is(err, youtube.ErrVideoIDMinLength):
		return fmt.Errorf("%w: %w", downloaderrors.ErrMalformedVideoID, err)
	case errors.Is(err, youtube.ErrLoginRequired):
		return fmt.Errorf("%w: %w", downloaderrors.ErrLoginRequired, err)
	case errors.Is(err, youtube.ErrVideoPrivate), errors.Is(err, youtube.ErrNotPlayableInEmbed), errors.As(err, &status):
		return fmt.Errorf("%w: %w", downloaderrors.ErrMediaRestricted, err)
	default:
		return fmt.Errorf("%w: %w", downloaderrors.ErrSourceUnavailable, err)
	}
}

var errUnknownMime = errors.New("unknown mime type")

func streamKind(f youtube.Format) (entities.StreamKind, error) {
	switch {
	case strings.HasPrefix(f.MimeType, "audio/"):
		return entities.StreamKindAudioOnly, nil
	case strings.HasPrefix(f.MimeType, "video/") && f.AudioChannels > 0:
		return entities.StreamKindProgressiveVideo, nil
	case strings.HasPrefix(f.MimeType, "video/"):
		return entities.StreamKindAdaptive, nil
	default:
		return 0, errUnknownMime
	}
}

func qualityRank(kind entities.StreamKind, f youtube.Format) int {
	if kind == entities.StreamKindAudioOnly {
		if f.Bitrate > 0 {
			return f.Bitrate
		}
		return f.AverageBitrate
	}
	return f.Height
}

// container turns `audio/webm; codecs="opus"` into "webm"
func container(mimeType string) string {
	media, _, _ := strings.Cut(mimeType, ";")
	_, sub, found := strings.Cut(strings.TrimSpace(media), "/")
	if !found {
		return ""
	}
	return strings.ToLower(sub)
}
