package models

// Form field names understood by the Messages resource.
const (
	ParamTo                  = "To"
	ParamFrom                = "From"
	ParamMessagingServiceSid = "MessagingServiceSid"
	ParamBody                = "Body"
	ParamMediaURL            = "MediaUrl"
	ParamContentSid          = "ContentSid"
	ParamStatusCallback      = "StatusCallback"
	ParamValidityPeriod      = "ValidityPeriod"
)

// Limits on outgoing messages.
const (
	MaxMediaURLs      = 10
	MinValidityPeriod = 1
	MaxValidityPeriod = 36000
	MaxBodyChars      = 1600
)

// MessageRequest is an outgoing SMS/MMS. At least one sender selector (From,
// MessagingServiceSid) and one content selector (Body, MediaURLs, ContentSid)
// are set once the request has been through the validator.
type MessageRequest struct {
	To                  string   `json:"To"`
	From                string   `json:"From,omitempty"`
	MessagingServiceSid string   `json:"MessagingServiceSid,omitempty"`
	Body                string   `json:"Body,omitempty"`
	MediaURLs           []string `json:"MediaUrl,omitempty"`
	ContentSid          string   `json:"ContentSid,omitempty"`
	StatusCallback      string   `json:"StatusCallback,omitempty"`
	ValidityPeriod      *int     `json:"ValidityPeriod,omitempty"`
}

// Params flattens the request into form parameters. Unset fields map to nil
// so the encoder leaves them out.
func (r *MessageRequest) Params() map[string]any {
	params := map[string]any{
		ParamTo:                  r.To,
		ParamFrom:                optional(r.From),
		ParamMessagingServiceSid: optional(r.MessagingServiceSid),
		ParamBody:                optional(r.Body),
		ParamContentSid:          optional(r.ContentSid),
		ParamStatusCallback:      optional(r.StatusCallback),
		ParamMediaURL:            nil,
		ParamValidityPeriod:      nil,
	}
	if len(r.MediaURLs) > 0 {
		params[ParamMediaURL] = append([]string(nil), r.MediaURLs...)
	}
	if r.ValidityPeriod != nil {
		params[ParamValidityPeriod] = *r.ValidityPeriod
	}
	return params
}

func optional(v string) any {
	if v == "" {
		return nil
	}
	return v
}

// MessageResource is the provider's representation of a created message.
type MessageResource struct {
	SID                 string  `json:"sid"`
	AccountSID          string  `json:"account_sid"`
	MessagingServiceSID *string `json:"messaging_service_sid"`
	Status              string  `json:"status"`
	To                  string  `json:"to"`
	From                *string `json:"from"`
	Body                string  `json:"body"`
	Direction           string  `json:"direction"`
	NumSegments         string  `json:"num_segments"`
	NumMedia            string  `json:"num_media"`
	Price               *string `json:"price"`
	PriceUnit           *string `json:"price_unit"`
	ErrorCode           *int    `json:"error_code"`
	ErrorMessage        *string `json:"error_message"`
	DateCreated         string  `json:"date_created"`
	DateSent            *string `json:"date_sent"`
	URI                 string  `json:"uri"`
}

// Sender returns the from address, falling back to the messaging service.
func (m *MessageResource) Sender() string {
	if m.From != nil && *m.From != "" {
		return *m.From
	}
	if m.MessagingServiceSID != nil {
		return *m.MessagingServiceSID
	}
	return ""
}

// SoftError returns the inline error carried by an accepted message, if any.
func (m *MessageResource) SoftError() (string, bool) {
	if m.ErrorMessage == nil || *m.ErrorMessage == "" {
		return "", false
	}
	return *m.ErrorMessage, true
}

// ErrorDescriptor is the JSON body returned with non-2xx responses.
type ErrorDescriptor struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

// AccountResource is the subset of the account resource read by the
// startup probe.
type AccountResource struct {
	SID          string `json:"sid"`
	FriendlyName string `json:"friendly_name"`
	Status       string `json:"status"`
	Type         string `json:"type"`
}
