package consts

import "time"

// Policy defaults
const (
	DefaultOperationTimeout = 5 * time.Minute
	DefaultDeliveryTimeout  = 300 * time.Second
	DefaultMaxVideoDuration = 600 * time.Second
	DefaultProgressInterval = 2 * time.Second

	// FinalizeTimeout bounds the placeholder edit/delete after the operation ended
	FinalizeTimeout = 15 * time.Second

	// ProgressiveContainer is the only container accepted for video downloads
	ProgressiveContainer = "mp4"
	// AudioExtension is forced onto every delivered audio file
	AudioExtension = ".mp3"
	// VideoExtension is used for delivered video files
	VideoExtension = ".mp4"
)

// AcceptedHosts are substrings a link must contain to be processed
var AcceptedHosts = []string{
	"youtube.com/",
	"youtu.be/",
	"music.youtube.com/",
}

// MusicHost routes a link straight to audio
const MusicHost = "music.youtube.com/"
