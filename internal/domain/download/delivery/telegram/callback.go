package telegram

import (
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/patt509/YT-Downloader/internal/domain/download/consts"
	"github.com/patt509/YT-Downloader/internal/domain/download/entities"
	downloaderrors "github.com/patt509/YT-Downloader/internal/domain/download/errors"
)

// maxCallbackData is Telegram's limit on inline button payloads
const maxCallbackData = 64

// BuildCallbackData encodes a format choice as dl:<kind>:<videoID>
func BuildCallbackData(kind entities.RequestedKind, videoID string) string {
	return consts.CallbackPrefix + string(kind) + ":" + videoID
}

// ParseCallbackData decodes data produced by BuildCallbackData
func ParseCallbackData(data string) (entities.RequestedKind, string, error) {
	if len(data) > maxCallbackData {
		return "", "", fmt.Errorf("%w: too long", downloaderrors.ErrInvalidCallback)
	}

	rest, ok := strings.CutPrefix(data, consts.CallbackPrefix)
	if !ok {
		return "", "", fmt.Errorf("%w: missing prefix", downloaderrors.ErrInvalidCallback)
	}

	kindPart, videoID, ok := strings.Cut(rest, ":")
	if !ok {
		return "", "", fmt.Errorf("%w: missing video id", downloaderrors.ErrInvalidCallback)
	}

	kind := entities.RequestedKind(kindPart)
	if !kind.Valid() {
		return "", "", fmt.Errorf("%w: unknown kind %q", downloaderrors.ErrInvalidCallback, kindPart)
	}
	if !validVideoID(videoID) {
		return "", "", fmt.Errorf("%w: bad video id %q", downloaderrors.ErrInvalidCallback, videoID)
	}

	return kind, videoID, nil
}

// ShareLink rebuilds a link the resolver accepts from a video id
func ShareLink(videoID string) string {
	return consts.ShortLinkBase + videoID
}

func validVideoID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// choiceKeyboard renders one button per offered kind on a single row
func choiceKeyboard(videoID string, kinds []entities.RequestedKind) *models.InlineKeyboardMarkup {
	row := make([]models.InlineKeyboardButton, 0, len(kinds))
	for _, kind := range kinds {
		label := consts.ButtonVideo
		if kind == entities.KindAudio {
			label = consts.ButtonAudio
		}
		row = append(row, models.InlineKeyboardButton{
			Text:         label,
			CallbackData: BuildCallbackData(kind, videoID),
		})
	}

	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{row},
	}
}
