package consts

// User-facing texts. HTML parse mode.
const (
	MessageGreeting      = "Hello! Send me a YouTube or Youtube Music link and I'll download the video or song for you."
	MessageInvalidLink   = "Please send a valid YouTube or Youtube Music link."
	MessageProcessing    = "Processing your link, please wait..."
	MessageDownloading   = "Downloading..."
	MessageUploading     = "Uploading..."
	MessageChooseFormat  = "Choose a format:"
	MessageNoAudio       = "No audio stream available for this video."
	MessageNoVideo       = "No downloadable video stream is available for this link."
	MessageNoStream      = "No downloadable stream is available for this link."
	MessageGenericError  = "An error occurred while processing your request. Be sure the video is public and try again."
	MessageDeliveryError = "The file was downloaded but could not be sent to you. It may be too large for Telegram, please try again later."
	MessageTimeout       = "Processing took too long and was cancelled. Please try again later."

	// MessageVideoTooLong takes the content length, the limit in words and the limit as mm:ss
	MessageVideoTooLong = "This video is too long (%s). Video downloads are limited to %s (%s)."

	// MessageAudioStillAvailable follows MessageVideoTooLong when an audio button is shown
	MessageAudioStillAvailable = "You can still download the audio."

	ButtonAudio = "🎵 Audio"
	ButtonVideo = "🎬 Video"
)
