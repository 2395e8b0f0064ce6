// Package entities contains domain entities
package entities

import (
	"io"
	"time"
)

// StreamKind is the shape of an encoded stream
type StreamKind int

const (
	// StreamKindAudioOnly is an audio track without video
	StreamKindAudioOnly StreamKind = iota
	// StreamKindProgressiveVideo is a single file with audio and video muxed
	StreamKindProgressiveVideo
	// StreamKindAdaptive is a video-only (or otherwise split) track; never selected
	StreamKindAdaptive
)

// String returns the stream kind name
func (k StreamKind) String() string {
	switch k {
	case StreamKindAudioOnly:
		return "audio_only"
	case StreamKindProgressiveVideo:
		return "progressive_video"
	default:
		return "adaptive"
	}
}

// RequestedKind is what the user asked for
type RequestedKind string

const (
	KindAudio RequestedKind = "audio"
	KindVideo RequestedKind = "video"
)

// Valid reports whether k is a known kind
func (k RequestedKind) Valid() bool {
	return k == KindAudio || k == KindVideo
}

// StreamDescriptor describes one downloadable representation of the content.
// QualityRank is the bitrate for audio streams and the height for video streams.
type StreamDescriptor struct {
	Kind        StreamKind
	Container   string
	QualityRank int
	// Ref is the resolver's opaque handle used to materialize the stream
	Ref any
}

// MediaInfo is the resolved content. Immutable once returned by a resolver.
type MediaInfo struct {
	ID       string
	Title    string
	Duration time.Duration
	Streams  []StreamDescriptor
}

// DurationSeconds returns the content length in whole seconds
func (m *MediaInfo) DurationSeconds() uint {
	if m.Duration <= 0 {
		return 0
	}
	return uint(m.Duration / time.Second)
}

// ChatIdentity addresses a conversation
type ChatIdentity struct {
	ID int64
}

// UserIdentity identifies the person who triggered a request
type UserIdentity struct {
	ID       int64
	Username string
}

// NotificationRef points at a posted placeholder message
type NotificationRef struct {
	Chat      ChatIdentity
	MessageID int
}

// MediaFile is an opened, fully readable file handed to delivery
type MediaFile struct {
	Name   string
	Size   int64
	Reader io.Reader
}
