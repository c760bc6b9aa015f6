package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pookal/internal/config"
)

// TwilioService sends SMS and places voice calls through the Twilio REST
// API. Both capabilities are sensitive: they reach another person's phone,
// so they are never executed without explicit user confirmation.
type TwilioService struct {
	cfg    config.TwilioConfig
	client *http.Client
}

// NewTwilioService creates a Twilio-backed messaging service.
func NewTwilioService(cfg config.TwilioConfig) *TwilioService {
	return &TwilioService{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *TwilioService) configured() bool {
	return s.cfg.AccountSID != "" && s.cfg.AuthToken != "" && s.cfg.FromNumber != ""
}

// post sends a form-encoded request to a Twilio account resource and
// decodes the JSON response.
func (s *TwilioService) post(ctx context.Context, resource string, form url.Values) (map[string]any, error) {
	u := fmt.Sprintf("%s/2010-04-01/Accounts/%s/%s.json", s.cfg.BaseURL, s.cfg.AccountSID, resource)
	req, err := http.NewRequestWithContext(ctx, "POST", u, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(s.cfg.AccountSID, s.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("twilio: bad response: %w", err)
	}
	if resp.StatusCode >= 300 {
		msg, _ := body["message"].(string)
		if msg == "" {
			msg = fmt.Sprintf("twilio error %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("twilio: %s", msg)
	}
	return body, nil
}

// SMSCapability returns the twilio.sms capability.
func (s *TwilioService) SMSCapability() *Capability {
	return &Capability{
		Name:        "twilio.sms",
		Description: "Send an SMS to a phone number, for example to alert a trusted contact.",
		Sensitive:   true,
		Schema: Schema{
			{Name: "to", Required: true, MinLen: 6, Description: "Recipient in E.164 form, e.g. +919876543210"},
			{Name: "body", Required: true, MinLen: 1, Description: "Message text"},
		},
		Run: s.sendSMS,
	}
}

func (s *TwilioService) sendSMS(ctx context.Context, args map[string]string) (*ExecutionResult, error) {
	if !s.configured() {
		return &ExecutionResult{OK: false, Error: "messaging is not configured (missing Twilio credentials)"}, nil
	}

	body, err := s.post(ctx, "Messages", url.Values{
		"To":   {args["to"]},
		"From": {s.cfg.FromNumber},
		"Body": {args["body"]},
	})
	if err != nil {
		return nil, err
	}

	return &ExecutionResult{
		OK: true,
		Data: map[string]any{
			"sid":    body["sid"],
			"status": body["status"],
			"to":     args["to"],
		},
	}, nil
}

// CallCapability returns the twilio.call capability. The call speaks a
// short message to the recipient via TwiML.
func (s *TwilioService) CallCapability() *Capability {
	return &Capability{
		Name:        "twilio.call",
		Description: "Place a voice call that reads a short message to the recipient.",
		Sensitive:   true,
		Schema: Schema{
			{Name: "to", Required: true, MinLen: 6, Description: "Recipient in E.164 form"},
			{Name: "message", Default: "This is a safety check-in call.", Description: "What the call should say"},
			{Name: "voice", Default: "alice", Description: "TwiML voice to speak with"},
		},
		Run: s.placeCall,
	}
}

func (s *TwilioService) placeCall(ctx context.Context, args map[string]string) (*ExecutionResult, error) {
	if !s.configured() {
		return &ExecutionResult{OK: false, Error: "calling is not configured (missing Twilio credentials)"}, nil
	}

	voice := args["voice"]
	if voice == "" {
		voice = "alice"
	}
	twiml := fmt.Sprintf(`<Response><Say language="en-IN" voice="%s">%s</Say></Response>`,
		xmlEscape(voice), xmlEscape(args["message"]))

	body, err := s.post(ctx, "Calls", url.Values{
		"To":    {args["to"]},
		"From":  {s.cfg.FromNumber},
		"Twiml": {twiml},
	})
	if err != nil {
		return nil, err
	}

	return &ExecutionResult{
		OK: true,
		Data: map[string]any{
			"sid":    body["sid"],
			"status": body["status"],
			"to":     args["to"],
		},
	}, nil
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func xmlEscape(s string) string {
	return xmlEscaper.Replace(s)
}
