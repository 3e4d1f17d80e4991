package session

import (
	"net/http"
	"sync"
)

// Navigator performs a full-page navigation. It is fire-and-forget: nothing after a
// Navigate call should assume the current request or view is still in control.
type Navigator interface {
	Navigate(target string)
}

// HTTPNavigator answers the current request with a redirect. htmx requests get an
// HX-Redirect header so the whole page is replaced instead of a fragment.
type HTTPNavigator struct {
	w http.ResponseWriter
	r *http.Request
}

func NewHTTPNavigator(w http.ResponseWriter, r *http.Request) HTTPNavigator {
	return HTTPNavigator{w: w, r: r}
}

func (n HTTPNavigator) Navigate(target string) {
	if n.r.Header.Get("HX-Request") == "true" {
		n.w.Header().Set("HX-Redirect", target)
		n.w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(n.w, n.r, target, http.StatusSeeOther)
}

// RecordingNavigator records navigation targets instead of performing them.
type RecordingNavigator struct {
	mu      sync.Mutex
	targets []string
}

func (n *RecordingNavigator) Navigate(target string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.targets = append(n.targets, target)
}

// Targets returns every recorded navigation in order.
func (n *RecordingNavigator) Targets() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.targets...)
}

// Last returns the most recent navigation target, or "" if none.
func (n *RecordingNavigator) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.targets) == 0 {
		return ""
	}
	return n.targets[len(n.targets)-1]
}
