package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/jsccast/yaml"
)

// TCPListener serves the line protocol (see Listener) on the given
// port until the context is done or a client says "shutdown".
func (s *Service) TCPListener(ctx context.Context, port string) error {
	log.Printf("Starting TCP listener on %s", port)

	l, err := net.Listen("tcp", port)
	if err != nil {
		return err
	}
	ctl := make(chan bool, 1)

	go func() {
		select {
		case <-ctx.Done():
		case <-ctl:
		}
		l.Close()
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-ctl:
				return nil
			default:
				return err
			}
		}

		go func() {
			in := bufio.NewReader(conn)

			if err := s.Listener(ctx, in, conn, ctl); err != nil {
				if err != io.EOF {
					log.Printf("TCPListener: %s", err)
				}
			}
			conn.Close()
		}()
	}
}

// Listener reads lines from in and writes replies to out.
//
// A line is an Op in JSON or one of these commands:
//
//   json, prettyjson, yaml   set the reply rendering
//   sub NAME                 report every match against NAME
//   unsub NAME
//   sleep DURATION
//   shutdown                 (only when ctl isn't nil)
//
// Blank lines and lines starting with '#' are ignored.
func (s *Service) Listener(ctx context.Context, in *bufio.Reader, out io.Writer, ctl chan bool) error {
	log.Printf("Service listener %p", in)
	defer log.Printf("Service listener closed %p", in)

	render := "json"

	sayMutex := sync.Mutex{}

	say := func(x interface{}) bool {
		sayMutex.Lock()
		defer sayMutex.Unlock()

		var js []byte
		var err error
		switch render {
		case "prettyjson":
			js, err = json.MarshalIndent(&x, "", "  ")
		case "yaml":
			js, err = yaml.Marshal(&x)
		default:
			js, err = json.Marshal(&x)
		}
		if err != nil {
			log.Printf("Service.listener warning on rendering: %s on %#v", err, x)
			js = []byte(fmt.Sprintf("error: %s on %#v", err, x))
		}

		js = append(js, '\n')

		if _, err = out.Write(js); err != nil {
			log.Printf("Service.listener warning on Write: %s", err)
			return false
		}

		return true
	}

	subs := make(map[string]int, 4)
	matched := func(x interface{}) {
		say(map[string]interface{}{
			"matched": x,
		})
	}

	defer func() {
		for name, id := range subs {
			s.Subs.Rem(name, id)
		}
	}()

	complain := func(err error) bool {
		return say(map[string]interface{}{
			"err": err.Error(),
		})
	}

	okay := func() bool {
		return say("okay")
	}

	for {
		line, err := in.ReadBytes('\n')
		if err == io.EOF && len(line) == 0 {
			break
		}

		if err != nil && err != io.EOF {
			return err
		}

		sl := strings.TrimSpace(string(line))

		if strings.HasPrefix(sl, "#") || sl == "" {
			continue
		}

		switch sl {
		case "shutdown":
			if ctl == nil {
				complain(fmt.Errorf("can't shutdown"))
				continue
			}
			log.Printf("Client says to shutdown")
			ctl <- true
			return nil
		case "prettyjson", "yaml", "json":
			render = sl
			okay()
			continue
		}

		parts := strings.Fields(sl)
		switch parts[0] {
		case "sub", "unsub":
			if len(parts) != 2 {
				if !complain(fmt.Errorf("%s NAME", parts[0])) {
					return nil
				}
				continue
			}
			name := parts[1]
			if parts[0] == "sub" {
				if _, have := subs[name]; !have {
					subs[name] = s.Subs.Add(name, matched)
				}
			} else if id, have := subs[name]; have {
				s.Subs.Rem(name, id)
				delete(subs, name)
			}
			okay()
			continue
		case "sleep":
			if len(parts) != 2 {
				if !complain(fmt.Errorf("sleep DURATION")) {
					return nil
				}
				continue
			}
			d, err := time.ParseDuration(parts[1])
			if err != nil {
				if !complain(err) {
					return nil
				}
				continue
			}
			time.Sleep(d)
			continue
		}

		var op Op
		if err := json.Unmarshal([]byte(sl), &op); err != nil {
			if !complain(err) {
				return err
			}
			continue
		}

		// Errors are in the reply.
		op.Do(ctx, s)

		if !say(&op) {
			return nil
		}
	}

	return nil
}
