package models

import (
	"reflect"
	"testing"
)

func TestParamsOmitsUnsetFields(t *testing.T) {
	req := &MessageRequest{To: "+15551234567", From: "+15559876543", Body: "hi"}

	params := req.Params()

	if params[ParamTo] != "+15551234567" || params[ParamFrom] != "+15559876543" || params[ParamBody] != "hi" {
		t.Fatalf("unexpected params: %v", params)
	}
	for _, key := range []string{ParamMessagingServiceSid, ParamMediaURL, ParamContentSid, ParamStatusCallback, ParamValidityPeriod} {
		if params[key] != nil {
			t.Fatalf("expected %s to be nil, got %v", key, params[key])
		}
	}
}

func TestParamsCopiesMediaAndValidity(t *testing.T) {
	validity := 600
	media := []string{"https://a.example/1.png", "https://a.example/2.png"}
	req := &MessageRequest{To: "+15551234567", MessagingServiceSid: "MG1", MediaURLs: media, ValidityPeriod: &validity}

	params := req.Params()

	got, ok := params[ParamMediaURL].([]string)
	if !ok || !reflect.DeepEqual(got, media) {
		t.Fatalf("unexpected media param: %#v", params[ParamMediaURL])
	}
	got[0] = "mutated"
	if req.MediaURLs[0] == "mutated" {
		t.Fatalf("expected params to own a copy of the media slice")
	}
	if params[ParamValidityPeriod] != 600 {
		t.Fatalf("unexpected validity: %v", params[ParamValidityPeriod])
	}
}

func TestMessageResourceSender(t *testing.T) {
	from := "+15559876543"
	service := "MG123"

	if got := (&MessageResource{From: &from, MessagingServiceSID: &service}).Sender(); got != from {
		t.Fatalf("expected from address, got %q", got)
	}
	if got := (&MessageResource{MessagingServiceSID: &service}).Sender(); got != service {
		t.Fatalf("expected messaging service fallback, got %q", got)
	}
	if got := (&MessageResource{}).Sender(); got != "" {
		t.Fatalf("expected empty sender, got %q", got)
	}
}

func TestMessageResourceSoftError(t *testing.T) {
	if _, ok := (&MessageResource{}).SoftError(); ok {
		t.Fatalf("expected no soft error")
	}
	empty := ""
	if _, ok := (&MessageResource{ErrorMessage: &empty}).SoftError(); ok {
		t.Fatalf("expected empty error message to be ignored")
	}
	msg := "Carrier rejected"
	if got, ok := (&MessageResource{ErrorMessage: &msg}).SoftError(); !ok || got != msg {
		t.Fatalf("unexpected soft error %q %v", got, ok)
	}
}
