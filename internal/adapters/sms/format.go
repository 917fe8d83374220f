package sms

import (
	"strings"

	"github.com/example/messaging-mcp/internal/models"
)

const errorPrefix = "Error sending message: "

// FormatSuccess renders an accepted message as a fixed-order summary. A soft
// error carried by the resource is appended as a final "Error:" line.
func FormatSuccess(res *models.MessageResource) string {
	if res == nil {
		res = &models.MessageResource{}
	}
	var b strings.Builder
	b.WriteString("Message sent successfully! SID: ")
	b.WriteString(res.SID)
	b.WriteString("\nStatus: ")
	b.WriteString(res.Status)
	b.WriteString("\nTo: ")
	b.WriteString(res.To)
	b.WriteString("\nFrom: ")
	b.WriteString(res.Sender())
	if msg, ok := res.SoftError(); ok {
		b.WriteString("\nError: ")
		b.WriteString(msg)
	}
	return b.String()
}

// FormatError renders any failure as a single line.
func FormatError(err error) string {
	if err == nil {
		return errorPrefix + "unknown error"
	}
	msg := strings.Join(strings.Fields(err.Error()), " ")
	if msg == "" {
		msg = "unknown error"
	}
	return errorPrefix + msg
}
