package main

import (
	"context"
	"encoding/json"
	"testing"
)

func TestParseTopic(t *testing.T) {
	tests := []struct {
		in    string
		topic string
		qos   byte
	}{
		{"glushkov/in", "glushkov/in", 0},
		{"glushkov/in:1", "glushkov/in", 1},
		{" glushkov/in:2 ", "glushkov/in", 2},
		{"glushkov/in:3", "glushkov/in:3", 0},
		{"a:b", "a:b", 0},
		{"", "", 0},
	}

	for _, tt := range tests {
		topic, qos := parseTopic(tt.in)
		if topic != tt.topic || qos != tt.qos {
			t.Errorf("%q: %q %d", tt.in, topic, qos)
		}
	}
}

func TestMQTTHandle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := demoService(t)

	// The client isn't connected, and handle doesn't need it.
	c := NewMQTTCoupling(ctx, s, &MQTTConfig{
		Broker:   "tcp://localhost:1883",
		InTopics: "in",
		OutTopic: "out",
	})

	js := c.handle(ctx, []byte(`{"match":{"name":"deadend","words":["ab"]}}`))
	var op Op
	if err := json.Unmarshal(js, &op); err != nil {
		t.Fatal(err)
	}
	if op.Match == nil || len(op.Match.Matched) != 0 || op.Err != "" {
		t.Fatalf("%s", js)
	}

	js = c.handle(ctx, []byte(`nope`))
	var x map[string]interface{}
	if err := json.Unmarshal(js, &x); err != nil {
		t.Fatal(err)
	}
	if _, have := x["err"]; !have {
		t.Fatalf("%s", js)
	}
}
