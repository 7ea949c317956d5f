package assistant_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/app"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/assistant"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/clock"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/model"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/seed"
)

var nineAM = time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC)

func newApp() (*app.App, *clock.FakeClock) {
	c := clock.Fake(nineAM)
	return app.New(app.Options{Clock: c, Logger: zerolog.Nop(), Seed: seed.Default(nineAM), Policy: app.DefaultPolicy()}), c
}

type failing struct{}

func (failing) Send(context.Context, string, []assistant.Message) (assistant.Reply, error) {
	return assistant.Reply{}, assistant.ErrUnavailable
}

type scripted struct {
	reply assistant.Reply
	seen  []assistant.Message
}

func (s *scripted) Send(_ context.Context, _ string, history []assistant.Message) (assistant.Reply, error) {
	s.seen = history
	return s.reply, nil
}

func TestMockIntents(t *testing.T) {
	tests := []struct {
		input    string
		wantCall string
		wantLoc  string
	}{
		{"Please check in", assistant.FuncCheckIn, "Office"},
		{"check in from home today", assistant.FuncCheckIn, "Home"},
		{"I'm at the client, check in", assistant.FuncCheckIn, "Customer Site"},
		{"check out: wrapped up the release", assistant.FuncCheckOut, ""},
		{"what is my status?", assistant.FuncGetStatus, ""},
		{"hello there", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			reply, err := assistant.Mock{}.Send(context.Background(), tt.input, nil)
			if err != nil {
				t.Fatal(err)
			}
			if tt.wantCall == "" {
				if reply.Call != nil || reply.Text == "" {
					t.Errorf("reply = %+v, want text only", reply)
				}
				return
			}
			if reply.Call == nil || reply.Call.Name != tt.wantCall {
				t.Fatalf("reply = %+v, want call %s", reply, tt.wantCall)
			}
			if tt.wantLoc != "" && reply.Call.Args["locationType"] != tt.wantLoc {
				t.Errorf("locationType = %q, want %q", reply.Call.Args["locationType"], tt.wantLoc)
			}
		})
	}
}

func TestDispatcherFailureTakesNoAction(t *testing.T) {
	a, _ := newApp()
	logs := len(a.AuditLogs())
	d := assistant.NewDispatcher(failing{}, a, zerolog.Nop())

	if got := d.Handle(context.Background(), "check in"); got != assistant.Apology {
		t.Errorf("Handle = %q, want apology", got)
	}
	if a.IsCheckedIn() || len(a.AuditLogs()) != logs {
		t.Error("failed delegate call changed state")
	}
}

func TestDispatcherCheckInOutStatus(t *testing.T) {
	a, c := newApp()
	d := assistant.NewDispatcher(assistant.Mock{}, a, zerolog.Nop())
	ctx := context.Background()

	if got := d.Handle(ctx, "check in from home"); got != "Successfully checked in at Home." {
		t.Errorf("check in reply = %q", got)
	}
	rec, ok := a.ActiveRecord()
	if !ok || rec.LocationType != model.LocationHome || rec.Coordinates == nil || *rec.Coordinates != assistant.DeviceCoordinates {
		t.Fatalf("active record = %+v, %v", rec, ok)
	}

	c.Advance(9*time.Hour + 30*time.Second)
	if got := d.Handle(ctx, "check out: documentation"); got != "Successfully checked out." {
		t.Errorf("check out reply = %q", got)
	}
	closed := a.TodayRecords()[0]
	if len(closed.Segments) != 1 || closed.Segments[0].DurationMinutes != 540 || closed.Segments[0].Notes != "documentation" {
		t.Errorf("segments = %+v", closed.Segments)
	}

	if got := d.Handle(ctx, "status"); got != "You have been present for 2 days this month." {
		t.Errorf("status reply = %q", got)
	}
	if len(d.History()) != 6 {
		t.Errorf("history = %d messages, want 6", len(d.History()))
	}
}

func TestDispatcherReportsDomainErrorsInline(t *testing.T) {
	a, _ := newApp()
	d := assistant.NewDispatcher(assistant.Mock{}, a, zerolog.Nop())
	got := d.Handle(context.Background(), "check out")
	if !strings.HasPrefix(got, "Could not check you out") {
		t.Errorf("reply = %q", got)
	}
}

func TestDispatcherEarlyCheckOutAsksForReason(t *testing.T) {
	a, c := newApp()
	d := assistant.NewDispatcher(assistant.Mock{}, a, zerolog.Nop())
	ctx := context.Background()
	d.Handle(ctx, "check in")
	c.Advance(3 * time.Hour)

	got := d.Handle(ctx, "check out please")
	if !strings.Contains(got, "leaving early") {
		t.Errorf("reply = %q, want a request for a reason", got)
	}
	if !a.IsCheckedIn() {
		t.Fatal("check-out without a reason closed the session")
	}

	if got := d.Handle(ctx, "check out: doctor appointment"); got != "Successfully checked out." {
		t.Fatalf("reply = %q", got)
	}
	if rec := a.TodayRecords()[0]; rec.EarlyExitReason != "doctor appointment" {
		t.Errorf("EarlyExitReason = %q", rec.EarlyExitReason)
	}
}

func TestDispatcherPassesHistory(t *testing.T) {
	a, _ := newApp()
	s := &scripted{reply: assistant.Reply{Text: "Hi"}}
	d := assistant.NewDispatcher(s, a, zerolog.Nop())
	d.Handle(context.Background(), "first")
	d.Handle(context.Background(), "second")
	if len(s.seen) != 2 || s.seen[0].Text != "first" || s.seen[1].Role != assistant.RoleModel {
		t.Errorf("history sent = %+v", s.seen)
	}
}

func TestGeminiFunctionCall(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/test-model:generateContent" || r.URL.Query().Get("key") != "secret" {
			t.Errorf("request to %s", r.URL)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Error(err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[
			{"functionCall":{"name":"performCheckIn","args":{"locationType":"Home"}}}]}}]}`))
	}))
	defer srv.Close()

	g, err := assistant.NewGemini(assistant.GeminiConfig{Endpoint: srv.URL, Model: "test-model", APIKey: "secret"})
	if err != nil {
		t.Fatal(err)
	}
	history := []assistant.Message{{Role: assistant.RoleUser, Text: "hi"}, {Role: assistant.RoleModel, Text: "hello"}}
	reply, err := g.Send(context.Background(), "check me in from home", history)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if reply.Call == nil || reply.Call.Name != assistant.FuncCheckIn || reply.Call.Args["locationType"] != "Home" {
		t.Errorf("reply = %+v", reply)
	}
	if contents, _ := got["contents"].([]any); len(contents) != 3 {
		t.Errorf("contents sent = %d, want 3", len(contents))
	}
	if _, ok := got["tools"]; !ok {
		t.Error("tools not sent")
	}
}

func TestGeminiText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Office hours "},{"text":"are 9 to 6."}]}}]}`))
	}))
	defer srv.Close()

	g, _ := assistant.NewGemini(assistant.GeminiConfig{Endpoint: srv.URL, APIKey: "k"})
	reply, err := g.Send(context.Background(), "hours?", nil)
	if err != nil {
		t.Fatal(err)
	}
	if reply.Call != nil || reply.Text != "Office hours are 9 to 6." {
		t.Errorf("reply = %+v", reply)
	}
}

func TestGeminiErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("{"))
		}},
		{"no candidates", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"candidates":[]}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			g, _ := assistant.NewGemini(assistant.GeminiConfig{Endpoint: srv.URL, APIKey: "k"})
			if _, err := g.Send(context.Background(), "x", nil); !errors.Is(err, assistant.ErrUnavailable) {
				t.Errorf("err = %v, want ErrUnavailable", err)
			}
		})
	}
}

func TestNewGeminiNeedsKey(t *testing.T) {
	if _, err := assistant.NewGemini(assistant.GeminiConfig{}); err == nil {
		t.Error("NewGemini without key succeeded")
	}
}
