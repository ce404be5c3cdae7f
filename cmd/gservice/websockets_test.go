package main

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Comcast/glushkov/match"

	"github.com/gorilla/websocket"
)

func TestWebSockets(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s := demoService(t)
	mux := s.Mux()
	s.WebSockets(ctx, mux, false)

	ts := httptest.NewServer(mux)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/api"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	c.SetReadDeadline(time.Now().Add(5 * time.Second))

	op := `{"oid":"42","match":{"name":"star-ab","words":["","ab","ba"]}}`
	if err = c.WriteMessage(websocket.TextMessage, []byte(op)); err != nil {
		t.Fatal(err)
	}

	_, bs, err := c.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}

	var reply Op
	if err = json.Unmarshal(bs, &reply); err != nil {
		t.Fatal(err)
	}
	if reply.Oid != "42" || reply.Match == nil {
		t.Fatalf("%s", bs)
	}
	if !reflect.DeepEqual(reply.Match.Matched, match.Indices{0, 1}) {
		t.Fatalf("%s", bs)
	}

	if err = c.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatal(err)
	}
	if _, bs, err = c.ReadMessage(); err != nil {
		t.Fatal(err)
	}
	var x map[string]interface{}
	if err = json.Unmarshal(bs, &x); err != nil {
		t.Fatalf("%s: %v", bs, err)
	}
	if _, have := x["err"]; !have {
		t.Fatalf("%s", bs)
	}
}

func TestWebSocketsFirehose(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s := demoService(t)
	mux := s.Mux()
	s.WebSockets(ctx, mux, true)

	ts := httptest.NewServer(mux)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/api"
	watcher, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer watcher.Close()
	watcher.SetReadDeadline(time.Now().Add(5 * time.Second))

	// The watcher might not be registered until its connection
	// has been handled, so keep doing ops until it sees one.
	done := make(chan []byte, 1)
	go func() {
		_, bs, err := watcher.ReadMessage()
		if err != nil {
			t.Error(err)
			close(done)
			return
		}
		done <- bs
	}()

	for {
		op := &Op{List: true}
		op.Do(ctx, s)
		select {
		case bs := <-done:
			if !strings.HasPrefix(string(bs), `{"op":{"list":true`) {
				t.Fatalf("%s", bs)
			}
			return
		case <-ctx.Done():
			t.Fatal(ctx.Err())
		case <-time.After(10 * time.Millisecond):
		}
	}
}
