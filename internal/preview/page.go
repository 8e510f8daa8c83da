package preview

import (
	"fmt"
	"html"
	"net/http"
	"strconv"

	"github.com/vango-dev/dilithium/internal/errors"
	"github.com/vango-dev/dilithium/pkg/memdom"
)

const pageTemplate = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>%s</title></head>
<body><main>%s</main></body>
</html>
`

// renderTo replays the scene and returns the fragment after at most steps
// steps. A negative count applies every step.
func (s *Server) renderTo(r *http.Request, steps int) (string, error) {
	rp := s.newReplay(r.Context())
	defer rp.release()

	if err := rp.player.Start(); err != nil {
		return "", err
	}
	for i := 0; steps < 0 || i < steps; i++ {
		more, err := rp.player.Step()
		if err != nil {
			return "", err
		}
		if !more {
			break
		}
	}
	return memdom.InnerHTML(rp.target), nil
}

func stepParam(r *http.Request) (int, error) {
	v := r.URL.Query().Get("step")
	if v == "" {
		return -1, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("step must be a non-negative integer, got %q", v)
	}
	return n, nil
}

func (s *Server) fragment(w http.ResponseWriter, r *http.Request) (string, bool) {
	steps, err := stepParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	out, err := s.renderTo(r, steps)
	if err != nil {
		e := errors.Classify(err, "E143")
		s.logger.Error("render failed", "code", e.Code, "error", err)
		http.Error(w, e.FormatCompact(), http.StatusInternalServerError)
		return "", false
	}
	return out, true
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	out, ok := s.fragment(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, pageTemplate, html.EscapeString(s.opts.Scene.Name), out)
}

func (s *Server) handleFragment(w http.ResponseWriter, r *http.Request) {
	out, ok := s.fragment(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, out)
}
