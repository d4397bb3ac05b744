package bot

// Command constants for Telegram bot commands.
const (
	CommandStart         = "/start"
	CommandSetSettings   = "/setsettings"
	CommandSetContact    = "/setcontact"
	CommandStartSettings = "/startsettings"
	CommandBan           = "/ban"
	CommandUnban         = "/unban"
	CommandBanned        = "/banned"
	CommandStats         = "/stats"
	CommandUsers         = "/users"
)
