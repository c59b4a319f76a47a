package content

import "fmt"

type Operation string

const (
	OpTip       Operation = "tip"
	OpEmail     Operation = "email"
	OpChat      Operation = "chat"
	OpChatEmpty Operation = "chat_empty"
)

const FallbackEmailSubject = "FemHealth: Important Cycle Reminder"

// Fallbacks holds the literal text served whenever generation fails or
// returns nothing usable.
var Fallbacks = map[Operation]string{
	OpTip:       "Stay hydrated and listen to your body today!",
	OpChat:      "I'm having trouble connecting right now. Please try again later.",
	OpChatEmpty: "I'm sorry, I couldn't generate a response.",
	OpEmail: "Hi %s,\n\nThis is a friendly reminder that your next cycle is expected in %d days, on %s.\n" +
		"Stock up on essentials, stay hydrated and be gentle with yourself.\n\nWith care,\nThe FemHealth Team",
}

type EmailContent struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// FallbackEmail builds the literal reminder used when email generation fails.
func FallbackEmail(name string, daysUntil int, date string) EmailContent {
	return EmailContent{
		Subject: FallbackEmailSubject,
		Body:    fmt.Sprintf(Fallbacks[OpEmail], name, daysUntil, date),
	}
}
