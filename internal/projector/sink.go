// Package projector writes a resolved theme onto CSS custom properties.
package projector

import (
	"sort"
	"strings"
	"sync"
)

// StyleSink receives projected custom properties. In a browser this is the
// document root style; here it is whatever the caller injects.
type StyleSink interface {
	SetProperty(name, value string)
	GetAll() map[string]string
}

// MemorySink is a concurrency-safe in-memory StyleSink.
type MemorySink struct {
	mu    sync.RWMutex
	props map[string]string
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{props: make(map[string]string)}
}

func (s *MemorySink) SetProperty(name, value string) {
	s.mu.Lock()
	s.props[name] = value
	s.mu.Unlock()
}

// GetAll returns a copy of every property.
func (s *MemorySink) GetAll() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.props))
	for k, v := range s.props {
		out[k] = v
	}
	return out
}

// Get returns a single property.
func (s *MemorySink) Get(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.props[name]
	return v, ok
}

// Len returns the number of properties held.
func (s *MemorySink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.props)
}

// RenderCSS renders the sink as a CSS rule for selector (":root" when empty),
// with properties in lexical order.
func RenderCSS(sink StyleSink, selector string) string {
	if selector == "" {
		selector = ":root"
	}
	props := sink.GetAll()
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString(selector)
	sb.WriteString(" {\n")
	for _, name := range names {
		sb.WriteString("  ")
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(props[name])
		sb.WriteString(";\n")
	}
	sb.WriteString("}\n")
	return sb.String()
}
