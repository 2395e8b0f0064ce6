// Package dto contains data transfer objects for the download domain
package dto

import (
	"github.com/patt509/YT-Downloader/internal/domain/download/entities"
)

// Request is an inbound user action. It is either a DirectLinkRequest or a
// FormatChoiceRequest.
type Request interface {
	request()
}

// DirectLinkRequest is a plain text message that may contain a link
type DirectLinkRequest struct {
	Text   string
	Sender entities.UserIdentity
	Chat   entities.ChatIdentity
}

// FormatChoiceRequest is a button press choosing audio or video for a link
type FormatChoiceRequest struct {
	Kind   entities.RequestedKind
	URL    string
	Sender entities.UserIdentity
	Chat   entities.ChatIdentity
}

func (DirectLinkRequest) request()   {}
func (FormatChoiceRequest) request() {}

// DownloadRequest is a validated request for one concrete kind
type DownloadRequest struct {
	URL         string
	Kind        entities.RequestedKind
	Destination entities.ChatIdentity
	Requester   entities.UserIdentity
}

// ChoiceOffer is shown to the user after a link was resolved
type ChoiceOffer struct {
	Text    string
	VideoID string
	Kinds   []entities.RequestedKind
}

// AudioDelivery is everything the transport needs to send an audio file
type AudioDelivery struct {
	Chat     entities.ChatIdentity
	File     entities.MediaFile
	Title    string
	Duration uint
}

// VideoDelivery is everything the transport needs to send a video file
type VideoDelivery struct {
	Chat     entities.ChatIdentity
	File     entities.MediaFile
	Title    string
	Duration uint
}

// OutcomeEvent is published after an operation reached its terminal state
type OutcomeEvent struct {
	OperationID     string `json:"operation_id"`
	UserID          int64  `json:"user_id"`
	ChatID          int64  `json:"chat_id"`
	Kind            string `json:"kind"`
	Outcome         string `json:"outcome"`
	Title           string `json:"title,omitempty"`
	DurationSeconds uint   `json:"duration_seconds,omitempty"`
	ElapsedMs       int64  `json:"elapsed_ms"`
	ErrorType       string `json:"error_type,omitempty"`
	FinishedAt      string `json:"finished_at"`
}

// CommandResponse is the reply to a slash command
type CommandResponse struct {
	Message string
}
