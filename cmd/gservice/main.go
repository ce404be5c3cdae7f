// Package main is a service that stores named automata and matches
// words against them.
//
// The control plane is HTTP (with optional websockets).  There's also
// a TCP line protocol, an optional stdin REPL that speaks the same
// protocol, and an optional MQTT coupling.
package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"

	"github.com/Comcast/glushkov/interpreters"
	"github.com/Comcast/glushkov/storage"
	"github.com/Comcast/glushkov/storage/bolt"
	"github.com/Comcast/glushkov/util"
)

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.LUTC)
}

func main() {

	cfg := DefaultConfig()

	var (
		configFile = flag.String("c", "", "optional YAML config file (flags override it)")
		tcpPort    = flag.String("t", "", "optional data plane (TCP) port")
		repl       = flag.Bool("r", false, "REPL on stdin")
		examples   = flag.Bool("x", false, "define the built-in examples")

		mqttBroker = flag.String("mqtt", "", "optional MQTT broker (e.g. tcp://localhost:1883)")
		mqttIn     = flag.String("mqtt-in", "glushkov/in", "MQTT topic(s) for ops")
		mqttOut    = flag.String("mqtt-out", "glushkov/out", "MQTT topic for replies")
	)

	flag.StringVar(&cfg.HTTP, "h", cfg.HTTP, "control plane (HTTP) port")
	flag.StringVar(&cfg.Static, "static", cfg.Static, "optional directory served at /static/")
	flag.StringVar(&cfg.Store, "s", cfg.Store, "optional bbolt file for persistence")
	flag.StringVar(&cfg.Defs, "d", cfg.Defs, "optional directory of defs to load")
	flag.BoolVar(&cfg.Websockets, "w", cfg.Websockets, "start websockets service")
	flag.BoolVar(&cfg.Firehose, "f", cfg.Firehose, "send every op to every websocket client")
	flag.DurationVar(&cfg.TTL, "e", cfg.TTL, "automaton cache TTL (0 to disable)")
	flag.IntVar(&cfg.CacheSize, "cache-size", cfg.CacheSize, "automaton cache size")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "goroutines per batch")
	flag.StringVar(&cfg.Stats, "stats", cfg.Stats, "cron expression for logging stats")
	flag.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "verbose")

	flag.Parse()

	if *configFile != "" {
		if err := ReadConfig(*configFile, cfg); err != nil {
			log.Fatalf("config %s: %v", *configFile, err)
		}
		// Explicit flags win over the file.
		flag.Parse()
	}

	if *mqttBroker != "" {
		cfg.MQTT = &MQTTConfig{
			Broker:   *mqttBroker,
			InTopics: *mqttIn,
			OutTopic: *mqttOut,
			Quiesce:  100,
		}
	}

	util.Logging = cfg.Verbose
	TimerOutput = cfg.Verbose

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var st storage.Storage
	if cfg.Store != "" {
		bs, err := bolt.NewStorage(cfg.Store)
		if err != nil {
			log.Fatal(err)
		}
		bs.Debug = cfg.Verbose
		if err = bs.Open(ctx); err != nil {
			log.Fatal(err)
		}
		defer bs.Close(ctx)
		st = bs
	}

	s := NewService(st, interpreters.Standard())
	s.Matcher.Workers = cfg.Workers

	if 0 < cfg.TTL {
		s.EnableCache(NewAutomatonCache(cfg.TTL, cfg.CacheSize))
	}

	if *examples {
		if err := defineExamples(ctx, s); err != nil {
			log.Fatal(err)
		}
	}

	if cfg.Defs != "" {
		if _, err := s.LoadDefs(ctx, cfg.Defs); err != nil {
			log.Fatal(err)
		}
	}

	if cfg.Stats != "" {
		err := s.Stats.Report(ctx, cfg.Stats, func(ss *StatsSnapshot) {
			log.Printf("stats %s", JS(ss))
		})
		if err != nil {
			log.Fatalf("stats schedule: %v", err)
		}
	}

	if cfg.MQTT != nil {
		c := NewMQTTCoupling(ctx, s, cfg.MQTT)
		if err := c.Start(ctx); err != nil {
			log.Fatal(err)
		}
	}

	if *tcpPort != "" {
		go func() {
			if err := s.TCPListener(ctx, *tcpPort); err != nil {
				log.Printf("TCPListener: %v", err)
			}
			cancel()
		}()
	}

	if *repl {
		go func() {
			in := bufio.NewReader(os.Stdin)
			if err := s.Listener(ctx, in, os.Stdout, nil); err != nil {
				log.Printf("REPL: %s", err)
			}
			cancel()
		}()
	}

	mux := s.Mux()

	if cfg.Static != "" {
		fs := http.FileServer(http.Dir(cfg.Static))
		mux.Handle("/static/", http.StripPrefix("/static", fs))
	}

	if cfg.Websockets {
		s.WebSockets(ctx, mux, cfg.Firehose)
	}

	if err := s.HTTPServer(ctx, cfg.HTTP, mux); err != nil {
		log.Fatal(err)
	}

	log.Printf("main terminating")
}
