package portal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/mcastro/wifiauth/internal/config"
)

func testProfile(loginURL string) config.Profile {
	return config.Profile{
		SSID:        "Home-5G",
		LoginURL:    loginURL,
		Username:    "alice",
		Password:    "secret",
		ProductType: "0",
	}
}

func TestExtractMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			"signed in",
			`<?xml version="1.0"?><response><message><![CDATA[You are signed in as alice]]></message></response>`,
			"You are signed in as alice",
		},
		{
			"empty cdata",
			`<message><![CDATA[]]></message>`,
			"",
		},
		{"no message element", `<html><body>error</body></html>`, "Unknown response"},
		{"empty body", "", "Unknown response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractMessage(tt.body); got != tt.want {
				t.Errorf("ExtractMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoginPostsForm(t *testing.T) {
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm() error = %v", err)
		}
		gotForm = map[string]string{
			"mode":        r.PostFormValue("mode"),
			"username":    r.PostFormValue("username"),
			"password":    r.PostFormValue("password"),
			"producttype": r.PostFormValue("producttype"),
			"a":           r.PostFormValue("a"),
		}
		_, _ = w.Write([]byte(`<message><![CDATA[You are signed in]]></message>`))
	}))
	defer srv.Close()

	c := NewClient(zap.NewNop())
	res := c.Login(context.Background(), testProfile(srv.URL))

	if res.Err != nil {
		t.Fatalf("Login() error = %v", res.Err)
	}
	if !res.OK() || res.Status != "200" {
		t.Errorf("Status = %q, want 200", res.Status)
	}
	if res.Message != "You are signed in" {
		t.Errorf("Message = %q", res.Message)
	}
	if gotForm["mode"] != "191" {
		t.Errorf("mode = %q, want 191", gotForm["mode"])
	}
	if gotForm["username"] != "alice" || gotForm["password"] != "secret" {
		t.Errorf("credentials = (%q, %q)", gotForm["username"], gotForm["password"])
	}
	if gotForm["producttype"] != "0" {
		t.Errorf("producttype = %q, want 0", gotForm["producttype"])
	}
	if gotForm["a"] == "" || gotForm["a"] != res.SessionToken {
		t.Errorf("a = %q, SessionToken = %q", gotForm["a"], res.SessionToken)
	}
}

func TestLoginServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("portal down"))
	}))
	defer srv.Close()

	c := NewClient(zap.NewNop())
	res := c.Login(context.Background(), testProfile(srv.URL))

	if res.Err != nil {
		t.Fatalf("Login() error = %v (transport succeeded)", res.Err)
	}
	if res.OK() || res.Status != "500" {
		t.Errorf("Status = %q, want 500", res.Status)
	}
	if res.Message != "Unknown response" {
		t.Errorf("Message = %q, want Unknown response", res.Message)
	}
}

func TestLoginUnreachable(t *testing.T) {
	c := NewClient(zap.NewNop())
	res := c.Login(context.Background(), testProfile("http://127.0.0.1:1/login"))

	if res.Err == nil {
		t.Fatal("Login() expected transport error")
	}
	if res.Status != "FAILED" {
		t.Errorf("Status = %q, want FAILED", res.Status)
	}
	if res.SessionToken == "" {
		t.Error("SessionToken should be set even on failure")
	}
}

func TestProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method = %q, want HEAD", r.Method)
		}
	}))
	defer srv.Close()

	c := NewClient(zap.NewNop())
	status, err := c.Probe(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if status != 200 {
		t.Errorf("status = %d, want 200", status)
	}

	if _, err := c.Probe(context.Background(), "http://127.0.0.1:1/"); err == nil {
		t.Error("Probe() expected error for unreachable host")
	}
}
