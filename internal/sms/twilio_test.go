package sms

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"336-553-8933", "+13365538933"},
		{"+13365538933", "+13365538933"},
		{"13365538933", "+13365538933"},
		{"(336) 555-0100", "+13365550100"},
		{"336.555.0100", "+13365550100"},
		{"3365550100", "+13365550100"},
	}
	for _, tt := range tests {
		if got := NormalizePhone(tt.in); got != tt.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSendMissingInput(t *testing.T) {
	c := NewClient("sid", "token", "+15550000000")

	if _, err := c.Send(context.Background(), "", "hello"); !errors.Is(err, ErrMissingInput) {
		t.Errorf("empty to: err = %v, want ErrMissingInput", err)
	}
	if _, err := c.Send(context.Background(), "+13365550100", ""); !errors.Is(err, ErrMissingInput) {
		t.Errorf("empty message: err = %v, want ErrMissingInput", err)
	}
}

func TestSendNotConfigured(t *testing.T) {
	c := NewClient("", "", "")
	if c.Configured() {
		t.Error("expected not configured")
	}
	if _, err := c.Send(context.Background(), "+13365550100", "hi"); err == nil {
		t.Error("expected error when credentials are missing")
	}
}

func TestSend(t *testing.T) {
	var gotPath, gotAuth string
	var gotForm map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, token, _ := r.BasicAuth()
		gotAuth = token
		r.ParseForm()
		gotForm = map[string]string{
			"To":   r.PostFormValue("To"),
			"From": r.PostFormValue("From"),
			"Body": r.PostFormValue("Body"),
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM123","status":"queued"}`))
	}))
	defer srv.Close()

	c := NewClient("AC123", "secret", "+15550000000", WithBaseURL(srv.URL))

	body, err := c.Send(context.Background(), "336-555-0100", "hello there")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if string(body) != `{"sid":"SM123","status":"queued"}` {
		t.Errorf("body = %s, want provider response verbatim", body)
	}
	if gotPath != "/2010-04-01/Accounts/AC123/Messages.json" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "secret" {
		t.Errorf("basic auth token = %q, want %q", gotAuth, "secret")
	}
	if gotForm["To"] != "+13365550100" {
		t.Errorf("To = %q, want normalized +13365550100", gotForm["To"])
	}
	if gotForm["From"] != "+15550000000" {
		t.Errorf("From = %q", gotForm["From"])
	}
	if gotForm["Body"] != "hello there" {
		t.Errorf("Body = %q", gotForm["Body"])
	}
}

func TestSendProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":20003,"message":"Authentication Error"}`))
	}))
	defer srv.Close()

	c := NewClient("AC123", "wrong", "+15550000000", WithBaseURL(srv.URL))

	body, err := c.Send(context.Background(), "+13365550100", "hi")
	if err == nil {
		t.Fatal("expected error on provider 4xx")
	}
	// The provider body still comes back so callers can surface it
	if len(body) == 0 {
		t.Error("expected provider error body")
	}
}
