// Package session holds the per-user state of one retrieval session: the
// ranked documents, their analyses, selected sentences and rewrites. State
// lives in memory from Create until Delete.
package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/article"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/classify"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/segment"
)

var (
	// ErrNotFound is returned for an unknown session id.
	ErrNotFound = errors.New("session not found")
	// ErrUnknownDocument is returned for a page id not in the ranked list.
	ErrUnknownDocument = errors.New("document not in session")
	// ErrNotAnalyzed is returned when sentence-level state is requested for a
	// document that has not been analyzed yet.
	ErrNotAnalyzed = errors.New("document not analyzed")
)

// Analysis is the segmentation and classification of one document.
type Analysis struct {
	Records []segment.Record  `json:"records"`
	Results []classify.Result `json:"results"`
	Summary classify.Summary  `json:"summary"`
	Markup  string            `json:"-"`
}

// Session is safe for concurrent use.
type Session struct {
	ID      string
	Created time.Time

	mu       sync.Mutex
	lastUsed time.Time
	topics   []string
	docs     []article.Document
	analyses map[int64]*Analysis
	selected map[int64]map[int]struct{}
	rewrites map[int64]map[string]string
}

func newSession(now time.Time) *Session {
	return &Session{
		ID:       uuid.NewString(),
		Created:  now,
		lastUsed: now,
		analyses: map[int64]*Analysis{},
		selected: map[int64]map[int]struct{}{},
		rewrites: map[int64]map[string]string{},
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	if now.After(s.lastUsed) {
		s.lastUsed = now
	}
	s.mu.Unlock()
}

// LastUsed reports when the session was last looked up.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// SetDocuments starts a new retrieval cycle. Analyses, selections and
// rewrites of the previous cycle are discarded.
func (s *Session) SetDocuments(topics []string, docs []article.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics = append([]string(nil), topics...)
	s.docs = append([]article.Document(nil), docs...)
	s.analyses = map[int64]*Analysis{}
	s.selected = map[int64]map[int]struct{}{}
	s.rewrites = map[int64]map[string]string{}
}

// Documents returns the current topics and ranked documents.
func (s *Session) Documents() ([]string, []article.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.topics...), append([]article.Document(nil), s.docs...)
}

// Document returns the ranked document with the given page id.
func (s *Session) Document(id int64) (article.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.docs {
		if d.ID == id {
			return d, nil
		}
	}
	return article.Document{}, ErrUnknownDocument
}

// SetAnalysis stores the analysis of a document, replacing any earlier one
// together with its selection and rewrites.
func (s *Session) SetAnalysis(id int64, a Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasDoc(id) {
		return ErrUnknownDocument
	}
	s.analyses[id] = &a
	delete(s.selected, id)
	delete(s.rewrites, id)
	return nil
}

func (s *Session) hasDoc(id int64) bool {
	for _, d := range s.docs {
		if d.ID == id {
			return true
		}
	}
	return false
}

// Analysis returns the stored analysis of a document.
func (s *Session) Analysis(id int64) (Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.analyses[id]
	if !ok {
		return Analysis{}, ErrNotAnalyzed
	}
	return *a, nil
}

// Select replaces the set of selected sentence indices of a document.
func (s *Session) Select(id int64, indices []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.analyses[id]
	if !ok {
		return ErrNotAnalyzed
	}
	set := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(a.Records) {
			return fmt.Errorf("sentence index %d out of range [0,%d)", i, len(a.Records))
		}
		set[i] = struct{}{}
	}
	s.selected[id] = set
	return nil
}

// Selected returns the selected sentence records of a document in index
// order.
func (s *Session) Selected(id int64) ([]int, []segment.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.analyses[id]
	idx := make([]int, 0, len(s.selected[id]))
	for i := range s.selected[id] {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	recs := make([]segment.Record, 0, len(idx))
	for _, i := range idx {
		recs = append(recs, a.Records[i])
	}
	return idx, recs
}

// AddRewrites merges original -> rewrite pairs for a document.
func (s *Session) AddRewrites(id int64, rewrites map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.rewrites[id]
	if m == nil {
		m = map[string]string{}
		s.rewrites[id] = m
	}
	for k, v := range rewrites {
		m[k] = v
	}
}

// Rewrites returns a copy of the rewrites of a document.
func (s *Session) Rewrites(id int64) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.rewrites[id]))
	for k, v := range s.rewrites[id] {
		out[k] = v
	}
	return out
}

// Store owns all live sessions.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{sessions: map[string]*Session{}, now: time.Now}
}

// Create starts a session.
func (st *Store) Create() *Session {
	s := newSession(st.now())
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get returns a live session and marks it as used.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	s.touch(st.now())
	return s, nil
}

// Delete ends a session and drops its state.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(st.sessions, id)
	return nil
}

// Expire deletes sessions idle for longer than maxAge and returns how many
// were removed.
func (st *Store) Expire(maxAge time.Duration) int {
	cutoff := st.now().Add(-maxAge)
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for id, s := range st.sessions {
		if s.LastUsed().Before(cutoff) {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
