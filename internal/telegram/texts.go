package telegram

// UI texts in English
const (
	startTextNew = "👋 I am a reminder bot.\n\n" +
		"Tell me a task, a time and your timezone — I will ping you in advance and again on time.\n\n" +
		"Start with /set_timezone, then create reminders with /remind. " +
		"/list shows what is scheduled, /cancel aborts a flow."

	startTextBackFmt = "👋 Welcome back! Your timezone is %s.\n\n" +
		"Create a reminder with /remind, see them with /list."

	listTitle      = "🗓 Your reminders:\n"
	listTimeLayout = "2006-01-02 15:04"
)
