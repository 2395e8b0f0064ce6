// Package deps contains interface definitions for the download domain dependencies
package deps

import (
	"context"

	"github.com/patt509/YT-Downloader/internal/domain/download/dto"
	"github.com/patt509/YT-Downloader/internal/domain/download/entities"
)

// MediaResolver turns a content URL into streams and can write one of them to disk
type MediaResolver interface {
	// Resolve fetches title, duration and the available streams
	Resolve(ctx context.Context, url string) (*entities.MediaInfo, error)

	// Materialize writes the stream to path. A partially written file may be
	// left behind on error; the caller owns its removal.
	Materialize(ctx context.Context, info *entities.MediaInfo, stream entities.StreamDescriptor, path string) error
}

// NotificationSink posts and finalizes the placeholder message of an operation
type NotificationSink interface {
	// Post sends a new message and returns a reference to it
	Post(ctx context.Context, chat entities.ChatIdentity, text string) (entities.NotificationRef, error)

	// Edit replaces the text of a posted message
	Edit(ctx context.Context, ref entities.NotificationRef, text string) error

	// Delete removes a posted message
	Delete(ctx context.Context, ref entities.NotificationRef) error
}

// ChoicePresenter turns a placeholder into a format-choice message
type ChoicePresenter interface {
	Offer(ctx context.Context, ref entities.NotificationRef, offer dto.ChoiceOffer) error
}

// DeliveryChannel transmits a downloaded file to a chat
type DeliveryChannel interface {
	SendAudio(ctx context.Context, delivery dto.AudioDelivery) error
	SendVideo(ctx context.Context, delivery dto.VideoDelivery) error
}

// OutcomePublisher emits terminal outcomes for external consumers
type OutcomePublisher interface {
	PublishOutcome(ctx context.Context, event dto.OutcomeEvent) error
	Close() error
}

// MetricsRecorder records operation metrics
type MetricsRecorder interface {
	RecordOperationStarted(kind string)
	RecordOperationFinished(kind, outcome string, seconds float64)
	RecordCleanupError()
}

// Transport is the messaging side the orchestrator talks to. The Telegram
// handlers implement it.
type Transport interface {
	NotificationSink
	ChoicePresenter
	DeliveryChannel
}
