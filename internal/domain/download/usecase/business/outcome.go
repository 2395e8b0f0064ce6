package business

import (
	"context"
	"errors"
	"fmt"

	"github.com/patt509/YT-Downloader/internal/domain/download/consts"
	"github.com/patt509/YT-Downloader/internal/domain/download/entities"
	downloaderrors "github.com/patt509/YT-Downloader/internal/domain/download/errors"
)

// Outcome is the single terminal result of one request
type Outcome string

const (
	OutcomeSuccess          Outcome = "success"
	OutcomeOffered          Outcome = "offered"
	OutcomeInvalidLink      Outcome = "invalid_link"
	OutcomeVideoTooLong     Outcome = "video_too_long"
	OutcomeNoStream         Outcome = "no_stream_available"
	OutcomeResolutionFailed Outcome = "resolution_failed"
	OutcomeDeliveryFailed   Outcome = "delivery_failed"
	OutcomeTimeout          Outcome = "timeout"
)

// Failed reports whether the outcome is an error shown to the user
func (o Outcome) Failed() bool {
	return o != OutcomeSuccess && o != OutcomeOffered
}

// Stage names the step of the pipeline an operation is in
type Stage string

const (
	StageValidating    Stage = "validating"
	StageResolving     Stage = "resolving"
	StageSelecting     Stage = "selecting"
	StageMaterializing Stage = "materializing"
	StageDelivering    Stage = "delivering"
	StageCleaning      Stage = "cleaning"
	StageTerminal      Stage = "terminal"
)

// classify maps a stage error onto an outcome. Unknown errors are resolution
// failures so the user always gets the generic retry message.
func classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, downloaderrors.ErrTimeout):
		return OutcomeTimeout
	case errors.Is(err, downloaderrors.ErrInvalidLink):
		return OutcomeInvalidLink
	case errors.Is(err, downloaderrors.ErrVideoTooLong):
		return OutcomeVideoTooLong
	case errors.Is(err, downloaderrors.ErrNoStreamAvailable):
		return OutcomeNoStream
	case errors.Is(err, downloaderrors.ErrDeliveryFailed):
		return OutcomeDeliveryFailed
	case errors.Is(err, downloaderrors.ErrResolutionFailed):
		return OutcomeResolutionFailed
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return OutcomeTimeout
	default:
		return OutcomeResolutionFailed
	}
}

// failureText returns the user-facing text for a failed outcome
func (o *Orchestrator) failureText(outcome Outcome, kind entities.RequestedKind, info *entities.MediaInfo) string {
	switch outcome {
	case OutcomeInvalidLink:
		return consts.MessageInvalidLink
	case OutcomeVideoTooLong:
		return o.tooLongText(info, false)
	case OutcomeNoStream:
		switch kind {
		case entities.KindAudio:
			return consts.MessageNoAudio
		case entities.KindVideo:
			return consts.MessageNoVideo
		default:
			return consts.MessageNoStream
		}
	case OutcomeDeliveryFailed:
		return consts.MessageDeliveryError
	case OutcomeTimeout:
		return consts.MessageTimeout
	default:
		return consts.MessageGenericError
	}
}

// tooLongText mentions the audio only when an audio button goes with it
func (o *Orchestrator) tooLongText(info *entities.MediaInfo, withAudio bool) string {
	var length string
	if info != nil {
		length = FormatClock(info.Duration)
	}
	limit := o.policy.MaxVideoDuration
	text := fmt.Sprintf(consts.MessageVideoTooLong, length, FormatLimit(limit), FormatClock(limit))
	if withAudio {
		text += " " + consts.MessageAudioStillAvailable
	}
	return text
}
