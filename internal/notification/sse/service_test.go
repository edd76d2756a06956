package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"consulting_leads_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestBroadcastDropsWhenBufferFull(t *testing.T) {
	s := New(logger.NewNop())
	slow := &client{userID: uuid.New(), events: make(chan Event, 1)}
	fast := &client{userID: uuid.New(), events: make(chan Event, clientBuffer)}
	s.addClient(slow)
	s.addClient(fast)

	if got := s.Broadcast(Event{Type: EventLeadCreated}); got != 2 {
		t.Fatalf("first broadcast delivered %d, want 2", got)
	}
	if got := s.Broadcast(Event{Type: EventLeadCreated}); got != 1 {
		t.Fatalf("second broadcast delivered %d, want 1", got)
	}
}

func TestCloseRejectsNewClients(t *testing.T) {
	s := New(logger.NewNop())
	c := &client{userID: uuid.New(), events: make(chan Event, 1)}
	s.addClient(c)

	s.Close()
	if s.ClientCount() != 0 {
		t.Fatal("close must drop clients")
	}
	// Removing after Close must not close the channel twice.
	s.removeClient(c)
	if s.addClient(&client{events: make(chan Event, 1)}) {
		t.Fatal("closed service must reject clients")
	}
}

func TestHandlerStreamsEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := New(logger.NewNop())
	userID := uuid.New()

	r := gin.New()
	r.GET("/events", s.Handler(func(*gin.Context) (uuid.UUID, bool) { return userID, true }))
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("content type = %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	waitFor := func(prefix string) {
		t.Helper()
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if strings.HasPrefix(line, prefix) {
				return
			}
		}
	}

	waitFor("event:connected")
	s.Broadcast(Event{Type: EventLeadStatusChanged, LeadID: uuid.New()})
	waitFor("event:lead_status_changed")
}

func TestHandlerRejectsAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := New(logger.NewNop())
	r := gin.New()
	r.GET("/events", s.Handler(func(*gin.Context) (uuid.UUID, bool) { return uuid.Nil, false }))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
}
