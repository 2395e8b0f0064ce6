package business

import (
	"strings"

	"github.com/patt509/YT-Downloader/internal/domain/download/consts"
	"github.com/patt509/YT-Downloader/internal/domain/download/entities"
)

// SelectStream picks the best stream for kind. The second result is false when
// no stream qualifies, which is a normal outcome.
//
// Audio takes the highest-bitrate audio-only stream. Video takes the
// highest-resolution progressive mp4. Ties keep the resolver's order.
func SelectStream(info *entities.MediaInfo, kind entities.RequestedKind) (entities.StreamDescriptor, bool) {
	if info == nil {
		return entities.StreamDescriptor{}, false
	}

	var (
		best  entities.StreamDescriptor
		found bool
	)

	for _, stream := range info.Streams {
		if !eligible(stream, kind) {
			continue
		}
		// strict comparison keeps the first of equally ranked streams
		if !found || stream.QualityRank > best.QualityRank {
			best = stream
			found = true
		}
	}

	return best, found
}

func eligible(stream entities.StreamDescriptor, kind entities.RequestedKind) bool {
	switch kind {
	case entities.KindAudio:
		return stream.Kind == entities.StreamKindAudioOnly
	case entities.KindVideo:
		return stream.Kind == entities.StreamKindProgressiveVideo &&
			strings.EqualFold(stream.Container, consts.ProgressiveContainer)
	default:
		return false
	}
}

// AvailableKinds lists the kinds for which SelectStream would succeed
func AvailableKinds(info *entities.MediaInfo) []entities.RequestedKind {
	kinds := make([]entities.RequestedKind, 0, 2)
	for _, kind := range []entities.RequestedKind{entities.KindAudio, entities.KindVideo} {
		if _, ok := SelectStream(info, kind); ok {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}
