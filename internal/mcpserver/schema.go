package mcpserver

import "github.com/example/messaging-mcp/internal/models"

// ToolName is the name the send tool is registered under.
const ToolName = "send_message"

const toolDescription = "Send an SMS, MMS or WhatsApp message through Twilio. " +
	"Provide To, one of From or MessagingServiceSid, and at least one of Body, MediaUrl or ContentSid."

func inputSchema() map[string]any {
	str := func(desc string) map[string]any {
		return map[string]any{"type": "string", "description": desc}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{models.ParamTo},
		"properties": map[string]any{
			models.ParamTo:                  str("Recipient in E.164 format, optionally prefixed with a channel such as whatsapp:"),
			models.ParamFrom:                str("Sender number, channel address or alphanumeric sender ID"),
			models.ParamMessagingServiceSid: str("Messaging service SID (MG...) used instead of From"),
			models.ParamBody:                map[string]any{"type": "string", "maxLength": models.MaxBodyChars, "description": "Message text"},
			models.ParamMediaURL: map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string", "format": "uri"},
				"minItems":    1,
				"maxItems":    models.MaxMediaURLs,
				"description": "Publicly reachable media URLs for MMS",
			},
			models.ParamContentSid:     str("Content template SID (HX...)"),
			models.ParamStatusCallback: map[string]any{"type": "string", "format": "uri", "description": "URL notified on status changes"},
			models.ParamValidityPeriod: map[string]any{
				"type":        "integer",
				"minimum":     models.MinValidityPeriod,
				"maximum":     models.MaxValidityPeriod,
				"description": "Seconds the message may wait in the outbound queue",
			},
		},
	}
}
