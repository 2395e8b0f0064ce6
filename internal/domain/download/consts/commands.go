// Package consts contains constants for the download domain
package consts

// Command represents a bot command
type Command struct {
	Name        string
	Description string
}

// Bot commands
var (
	CommandStart = Command{Name: "start", Description: "Start the bot"}
	CommandHelp  = Command{Name: "help", Description: "How to use the bot"}
)

// AllCommands contains all available bot commands for menu registration
var AllCommands = []Command{
	CommandStart,
	CommandHelp,
}

// CallbackPrefix marks inline keyboard data produced by this bot
const CallbackPrefix = "dl:"

// ShortLinkBase rebuilds a watch link from the video id carried in callback data
const ShortLinkBase = "https://youtu.be/"
