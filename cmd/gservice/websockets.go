package main

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// WebSockets adds Websockets support to the given mux.
//
// Each text message from a client is an Op, and the reply is the Op
// after it's been done.  With firehose, every client also sees every
// Op that any client (or the HTTP API) performs.
func (s *Service) WebSockets(ctx context.Context, mux *http.ServeMux, firehose bool) {
	var upgrader = websocket.Upgrader{} // use default options

	conns := sync.Map{}

	if firehose {
		s.firehose = make(chan interface{}, 1024)

		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case x := <-s.firehose:
					conns.Range(func(k, v interface{}) bool {
						c := v.(chan interface{})
						select {
						case c <- x:
						default:
							log.Printf("%v firehose blocked", k)
						}
						return true
					})
				}
			}
		}()
	}

	api := func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error", err)
			return
		}
		defer c.Close()

		// Only one goroutine can write to a websocket.Conn at a
		// time.
		var writeMutex sync.Mutex
		write := func(mt int, bs []byte) error {
			writeMutex.Lock()
			defer writeMutex.Unlock()
			return c.WriteMessage(mt, bs)
		}

		ctl := make(chan bool)
		defer close(ctl)

		out := make(chan interface{}, 32)

		id := c.RemoteAddr().String()
		conns.Store(id, out)
		defer conns.Delete(id)

		go func() {
			mt := websocket.TextMessage

			for {
				select {
				case <-ctl:
					return
				case <-ctx.Done():
					return
				case x := <-out:
					js, err := json.Marshal(&x)
					if err != nil {
						log.Printf("s.firehose Marshal error %v on %#v", err, x)
						continue
					}
					if err = write(mt, js); err != nil {
						log.Println("s.firehose write:", err)
					}
				}
			}
		}()

		for {
			mt, message, err := c.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Println("read error", err)
				}
				break
			}

			var op Op
			if err := json.Unmarshal(message, &op); err != nil {
				msg, _ := json.Marshal(map[string]string{
					"err": fmt.Sprintf("can't parse: %v", err),
				})
				if err = write(mt, msg); err != nil {
					log.Println("write (err)", err)
				}
				continue
			}

			// Errors are conveyed in the reply.
			op.Do(ctx, s)

			js, err := json.Marshal(&op)
			if err != nil {
				log.Printf("op Marshal error %v", err)
				continue
			}
			if err = write(mt, js); err != nil {
				log.Println("write", err)
				break
			}
		}
	}

	var uiTemplate = template.Must(template.New("").Parse(`
<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<script>
window.addEventListener("load", function(evt) {

    var output = document.getElementById("output");
    var input = document.getElementById("input");
    var ws;

    var print = function(message) {
        var d = document.createElement("div");
        d.textContent = message;
        output.insertBefore(d, output.firstChild);
    };

    document.getElementById("open").onclick = function(evt) {
        if (ws) {
            return false;
        }
        ws = new WebSocket("ws://{{.}}/ws/api");
        ws.onopen = function(evt) {
            print("OPEN");
        }
        ws.onclose = function(evt) {
            print("CLOSE");
            ws = null;
        }
        ws.onmessage = function(evt) {
            print("RESPONSE: " + evt.data);
        }
        ws.onerror = function(evt) {
            print("ERROR: " + evt.data);
        }
        return false;
    };

    document.getElementById("send").onclick = function(evt) {
        if (!ws) {
            return false;
        }
        print("SEND: " + input.value);
        ws.send(input.value);
        return false;
    };

    document.getElementById("close").onclick = function(evt) {
        if (!ws) {
            return false;
        }
        ws.close();
        return false;
    };

});
</script>
<style>
body { margin: 2em }
</style>
</head>
<body>
<form>
<button id="open">Open connection</button>
<button id="close">Close connection</button>
<br><input id="input" size="100" type="text" value='{"match":{"name":"binary","words":["011","01"]}}'>
<br><button id="send">Send</button>
<hr>
<div id="output"></div>
</body>
</html>
`))

	ui := func(w http.ResponseWriter, r *http.Request) {
		uiTemplate.Execute(w, r.Host)
	}

	mux.HandleFunc("/ws/api", api)
	mux.HandleFunc("/ws/ui", ui)

	log.Printf("Service has Websockets (firehose: %v)", firehose)
}
