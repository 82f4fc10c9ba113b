package conversation

// Callback tokens for the timezone menu.
const (
	tokenTZPrefix = "tz:"
	tokenTZCustom = "tz:custom"
)

// UI texts in English
const (
	promptTask           = "What should I remind you about?"
	promptTime           = "What time is the task due? (HH:mm)"
	promptTimezone       = "Choose your timezone or type your own (Region/City):"
	promptCustomTimezone = "Enter your timezone (e.g., Europe/Kiev):"
	promptNotify         = "What time should the heads-up arrive? (HH:mm, before the task time)"

	msgBadClock        = "Wrong time format! Use HH:mm, e.g. 18:00. Try again."
	msgBadTimezone     = "Invalid timezone! Example: Europe/Kiev. Try again."
	msgNotifyNotBefore = "The heads-up time must be before the task time. Try again."
	msgNotifyInPast    = "That heads-up time has already passed. Try again."
	msgStoreFailure    = "Something went wrong while saving. Please try again later."
	msgCancelled       = "Cancelled. The draft has been discarded."
	msgNothingToCancel = "Nothing to cancel."
	msgTimezoneSetFmt  = "Timezone set to %s."
	msgCreatedFmt      = "Reminder created! %q on %s at %s (%s), heads-up at %s."
)

// popularTimezones mirrors the menu offered at the timezone step.
var popularTimezones = []string{
	"Europe/Kiev",
	"Europe/London",
	"America/New_York",
	"Asia/Tokyo",
	"Australia/Sydney",
}

// TimezoneKeyboard builds the timezone menu: one zone per row plus "Other".
func TimezoneKeyboard() Keyboard {
	kb := make(Keyboard, 0, len(popularTimezones)+1)
	for _, tz := range popularTimezones {
		kb = append(kb, []Button{{Label: tz, Data: tokenTZPrefix + tz}})
	}
	kb = append(kb, []Button{{Label: "✍️ Other…", Data: tokenTZCustom}})
	return kb
}
