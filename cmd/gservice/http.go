package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"runtime/pprof"
	"strings"

	"github.com/Comcast/glushkov/core"
	"github.com/Comcast/glushkov/storage"
	"github.com/Comcast/glushkov/tools"
)

// CSSFiles are linked from rendered def pages.  Nil gives the
// default stylesheet.
var CSSFiles []string

// status picks an HTTP status for an error.
func status(err error) int {
	var (
		bt *core.BadTree
		it *core.InvalidTree
		nc *core.DefNotCompiled
	)
	switch {
	case errors.Is(err, storage.NotFound):
		return http.StatusNotFound
	case errors.Is(err, NoName), errors.As(err, &bt), errors.As(err, &it), errors.As(err, &nc):
		return http.StatusBadRequest
	case errors.Is(err, core.InterpreterNotFound):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func complain(w http.ResponseWriter, x interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	js, _ := json.Marshal(map[string]string{"error": fmt.Sprintf("%v", x)})
	fmt.Fprintf(w, "%s\n", js)
}

func reply(w http.ResponseWriter, x interface{}) {
	replyStatus(w, x, http.StatusOK)
}

func replyStatus(w http.ResponseWriter, x interface{}, code int) {
	js, err := json.Marshal(&x)
	if err != nil {
		complain(w, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(append(js, '\n')); err != nil {
		log.Printf("Service.HTTPServer warning on Write(): %v", err)
	}
}

func readBody(r *http.Request) ([]byte, error) {
	bs, err := ioutil.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if err := r.Body.Close(); err != nil {
		log.Printf("Service.HTTPServer warning on Body.Close(): %v", err)
	}
	return bs, nil
}

// Mux makes the HTTP control plane.
//
//   POST   /api                   an Op
//   GET    /automata              names
//   PUT    /automata/NAME         a def (YAML or JSON)
//   GET    /automata/NAME         the record
//   DELETE /automata/NAME
//   GET    /automata/NAME.html    the def rendered as a page
//   POST   /automata/NAME/match   a JSON array of words
//   POST   /match                 a MatchOp with an inline def
//   GET    /stats
func (s *Service) Mux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/goroutines", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pprof.Lookup("goroutine").WriteTo(w, 1)
	}))

	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		reply(w, s.Stats.Snapshot())
	})

	mux.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			complain(w, "POST only", http.StatusMethodNotAllowed)
			return
		}
		js, err := readBody(r)
		if err != nil {
			complain(w, err, http.StatusBadRequest)
			return
		}

		var op Op
		if err := json.Unmarshal(js, &op); err != nil {
			complain(w, err, http.StatusBadRequest)
			return
		}
		code := http.StatusOK
		if err = op.Do(r.Context(), s); err != nil {
			code = status(err)
		}
		replyStatus(w, &op, code)
	})

	mux.HandleFunc("/match", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			complain(w, "POST only", http.StatusMethodNotAllowed)
			return
		}
		js, err := readBody(r)
		if err != nil {
			complain(w, err, http.StatusBadRequest)
			return
		}
		var m MatchOp
		if err = json.Unmarshal(js, &m); err != nil {
			complain(w, err, http.StatusBadRequest)
			return
		}
		if m.Def == nil {
			complain(w, "no def given", http.StatusBadRequest)
			return
		}
		if err = m.Do(r.Context(), s); err != nil {
			complain(w, err, status(err))
			return
		}
		reply(w, &m)
	})

	mux.HandleFunc("/automata", func(w http.ResponseWriter, r *http.Request) {
		names, err := s.List(r.Context())
		if err != nil {
			complain(w, err, status(err))
			return
		}
		reply(w, names)
	})

	mux.HandleFunc("/automata/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/automata/")

		switch {
		case strings.HasSuffix(name, "/match"):
			s.serveMatch(w, r, strings.TrimSuffix(name, "/match"))
		case strings.HasSuffix(name, ".html"):
			s.servePage(w, r, strings.TrimSuffix(name, ".html"))
		default:
			s.serveAutomaton(w, r, name)
		}
	})

	return mux
}

func (s *Service) serveAutomaton(w http.ResponseWriter, r *http.Request, name string) {
	if name == "" || strings.Contains(name, "/") {
		complain(w, "bad name", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	switch r.Method {
	case http.MethodPut:
		bs, err := readBody(r)
		if err != nil {
			complain(w, err, http.StatusBadRequest)
			return
		}
		d, err := core.ParseDef(bs)
		if err != nil {
			complain(w, err, http.StatusBadRequest)
			return
		}
		d.Name = name
		rec, err := s.Define(ctx, d)
		if err != nil {
			complain(w, err, status(err))
			return
		}
		reply(w, rec)

	case http.MethodGet:
		rec, err := s.Get(ctx, name)
		if err != nil {
			complain(w, err, status(err))
			return
		}
		reply(w, rec)

	case http.MethodDelete:
		if err := s.Rem(ctx, name); err != nil {
			complain(w, err, status(err))
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		complain(w, "unsupported method "+r.Method, http.StatusMethodNotAllowed)
	}
}

func (s *Service) serveMatch(w http.ResponseWriter, r *http.Request, name string) {
	if r.Method != http.MethodPost {
		complain(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	js, err := readBody(r)
	if err != nil {
		complain(w, err, http.StatusBadRequest)
		return
	}
	var words []string
	if err = json.Unmarshal(js, &words); err != nil {
		complain(w, err, http.StatusBadRequest)
		return
	}
	m := &MatchOp{
		Name:  name,
		Words: words,
	}
	if err = m.Do(r.Context(), s); err != nil {
		complain(w, err, status(err))
		return
	}
	reply(w, m)
}

func (s *Service) servePage(w http.ResponseWriter, r *http.Request, name string) {
	rec, err := s.Get(r.Context(), name)
	if err != nil {
		complain(w, err, status(err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err = tools.RenderDefPage(rec.Def, w, CSSFiles, true); err != nil {
		log.Printf("Service.servePage %s error %v", name, err)
	}
}

// HTTPServer runs the control plane on the given port.
func (s *Service) HTTPServer(ctx context.Context, port string, mux *http.ServeMux) error {
	log.Printf("Service.HTTPServer starting on %s", port)

	server := &http.Server{
		Addr:    port,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		server.Close()
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
