package capability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pookal/internal/config"
)

func twilioTestConfig(baseURL string) config.TwilioConfig {
	return config.TwilioConfig{
		AccountSID: "AC123",
		AuthToken:  "secret",
		FromNumber: "+15550001111",
		BaseURL:    baseURL,
	}
}

func TestSendSMS(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2010-04-01/Accounts/AC123/Messages.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "AC123" || pass != "secret" {
			t.Errorf("basic auth = %q/%q", user, pass)
		}
		r.ParseForm()
		if r.PostForm.Get("To") != "+919876543210" {
			t.Errorf("To = %q", r.PostForm.Get("To"))
		}
		if r.PostForm.Get("From") != "+15550001111" {
			t.Errorf("From = %q", r.PostForm.Get("From"))
		}
		if r.PostForm.Get("Body") != "I'm on my way home, track me." {
			t.Errorf("Body = %q", r.PostForm.Get("Body"))
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM1","status":"queued"}`))
	}))
	defer srv.Close()

	svc := NewTwilioService(twilioTestConfig(srv.URL))
	res, err := svc.sendSMS(context.Background(), map[string]string{
		"to": "+919876543210", "body": "I'm on my way home, track me.",
	})
	if err != nil {
		t.Fatalf("sendSMS: %v", err)
	}
	if !res.OK || res.Data["sid"] != "SM1" || res.Data["status"] != "queued" {
		t.Errorf("result = %+v", res)
	}
}

func TestSendSMSAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"The 'To' number is not a valid phone number."}`))
	}))
	defer srv.Close()

	svc := NewTwilioService(twilioTestConfig(srv.URL))
	_, err := svc.sendSMS(context.Background(), map[string]string{"to": "+10000000", "body": "hi"})
	if err == nil || !strings.Contains(err.Error(), "not a valid phone number") {
		t.Fatalf("error = %v", err)
	}
}

func TestPlaceCallTwiML(t *testing.T) {
	var twiml string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2010-04-01/Accounts/AC123/Calls.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		r.ParseForm()
		twiml = r.PostForm.Get("Twiml")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"CA1","status":"queued"}`))
	}))
	defer srv.Close()

	svc := NewTwilioService(twilioTestConfig(srv.URL))
	res, err := svc.placeCall(context.Background(), map[string]string{
		"to": "+919876543210", "message": `Meet me at "5 < 6" cafe & wait`,
	})
	if err != nil {
		t.Fatalf("placeCall: %v", err)
	}
	if !res.OK || res.Data["sid"] != "CA1" {
		t.Errorf("result = %+v", res)
	}
	if !strings.Contains(twiml, `<Say language="en-IN" voice="alice">`) {
		t.Errorf("twiml = %q", twiml)
	}
	if !strings.Contains(twiml, "&quot;5 &lt; 6&quot; cafe &amp; wait") {
		t.Errorf("twiml not escaped: %q", twiml)
	}
}

func TestPlaceCallVoiceOverride(t *testing.T) {
	var twiml string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		twiml = r.PostForm.Get("Twiml")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"CA2","status":"queued"}`))
	}))
	defer srv.Close()

	svc := NewTwilioService(twilioTestConfig(srv.URL))
	res, err := svc.placeCall(context.Background(), map[string]string{
		"to": "+919876543210", "message": "stay safe", "voice": "Polly.Aditi",
	})
	if err != nil {
		t.Fatalf("placeCall: %v", err)
	}
	if !res.OK {
		t.Fatalf("result = %+v", res)
	}
	if !strings.Contains(twiml, `voice="Polly.Aditi"`) {
		t.Errorf("twiml = %q", twiml)
	}
}

func TestCallSchemaDefaults(t *testing.T) {
	schema := NewTwilioService(config.TwilioConfig{}).CallCapability().Schema

	args, err := schema.Validate(map[string]any{"to": "+91987"})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if args["voice"] != "alice" {
		t.Errorf("voice = %q, want default alice", args["voice"])
	}
	if args["message"] == "" {
		t.Error("message default missing")
	}

	if _, err := schema.Validate(map[string]any{"to": "12345"}); err == nil || !strings.Contains(err.Error(), "at least 6") {
		t.Errorf("short number: err = %v", err)
	}
}

func TestTwilioUnconfigured(t *testing.T) {
	svc := NewTwilioService(config.TwilioConfig{})
	res, err := svc.sendSMS(context.Background(), map[string]string{"to": "+91987", "body": "x"})
	if err != nil {
		t.Fatalf("sendSMS: %v", err)
	}
	if res.OK || !strings.Contains(res.Error, "not configured") {
		t.Errorf("result = %+v", res)
	}

	res, err = svc.placeCall(context.Background(), map[string]string{"to": "+91987", "message": "x"})
	if err != nil {
		t.Fatalf("placeCall: %v", err)
	}
	if res.OK || !strings.Contains(res.Error, "not configured") {
		t.Errorf("result = %+v", res)
	}
}
