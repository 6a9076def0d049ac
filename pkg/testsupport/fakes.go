package testsupport

import (
	"context"
	"sync"
)

// TranslateCall records one translator lookup.
type TranslateCall struct {
	Key    string
	Domain string
}

// KeyTranslator returns Messages[domain+":"+key] when present and the key
// itself otherwise, recording every call.
type KeyTranslator struct {
	Messages map[string]string

	mu    sync.Mutex
	calls []TranslateCall
}

func (t *KeyTranslator) Translate(key, domain string) string {
	t.mu.Lock()
	t.calls = append(t.calls, TranslateCall{Key: key, Domain: domain})
	t.mu.Unlock()

	if msg, ok := t.Messages[domain+":"+key]; ok {
		return msg
	}
	return key
}

// Calls returns the recorded lookups in order.
func (t *KeyTranslator) Calls() []TranslateCall {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]TranslateCall(nil), t.calls...)
}

// StaticResolver resolves stored files from fixed per-field maps. A field
// missing from Paths (or URIs) resolves to nothing.
type StaticResolver struct {
	Paths   map[string]string
	URIs    map[string]string
	PathErr error
	URIErr  error

	mu       sync.Mutex
	pathHits int
	uriHits  int
}

func (r *StaticResolver) ResolvePath(_ context.Context, _ any, field string) (string, bool, error) {
	r.mu.Lock()
	r.pathHits++
	r.mu.Unlock()
	if r.PathErr != nil {
		return "", false, r.PathErr
	}
	path, ok := r.Paths[field]
	return path, ok && path != "", nil
}

func (r *StaticResolver) ResolveURI(_ context.Context, _ any, field string) (string, bool, error) {
	r.mu.Lock()
	r.uriHits++
	r.mu.Unlock()
	if r.URIErr != nil {
		return "", false, r.URIErr
	}
	uri, ok := r.URIs[field]
	return uri, ok && uri != "", nil
}

// PathCalls returns how many times ResolvePath ran.
func (r *StaticResolver) PathCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pathHits
}

// URICalls returns how many times ResolveURI ran.
func (r *StaticResolver) URICalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uriHits
}

// RemoveCall records one removal.
type RemoveCall struct {
	Entity any
	Field  string
}

// RecordingRemover records removals and returns Err. OnRemove runs before
// returning, letting tests clear resolver state the way a real handler would.
type RecordingRemover struct {
	Err      error
	OnRemove func(entity any, field string)

	mu    sync.Mutex
	calls []RemoveCall
}

func (r *RecordingRemover) Remove(_ context.Context, entity any, field string) error {
	r.mu.Lock()
	r.calls = append(r.calls, RemoveCall{Entity: entity, Field: field})
	r.mu.Unlock()
	if r.OnRemove != nil {
		r.OnRemove(entity, field)
	}
	return r.Err
}

// Calls returns the recorded removals in order.
func (r *RecordingRemover) Calls() []RemoveCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RemoveCall(nil), r.calls...)
}
