// Package githubtest provides an in-memory fake of the GitHub REST endpoints
// labelsync uses, served over httptest.
package githubtest

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Label is a label stored by the fake
type Label struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Request records one request received by the fake
type Request struct {
	Method string
	Path   string
}

// Server is a fake GitHub API. Every exported method is safe for concurrent use.
type Server struct {
	*httptest.Server

	// Delay is slept inside every handler
	Delay time.Duration

	// Scopes is reported in X-OAuth-Scopes by GET /user
	Scopes string

	mu            sync.Mutex
	repos         map[string]map[string][]Label
	files         map[string][]byte
	failedPages   map[int]int
	failedWrites  map[string]int
	requests      []Request
	inFlight      int
	peakInFlight  int
	rateRemaining int
}

// NewServer starts a fake GitHub API server. Close it when done.
func NewServer() *Server {
	s := &Server{
		Scopes:        "repo",
		repos:         make(map[string]map[string][]Label),
		files:         make(map[string][]byte),
		failedPages:   make(map[int]int),
		failedWrites:  make(map[string]int),
		rateRemaining: 5000,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /user", s.handleUser)
	mux.HandleFunc("GET /orgs/{org}/repos", s.handleListRepos)
	mux.HandleFunc("GET /repos/{owner}/{repo}/labels", s.handleListLabels)
	mux.HandleFunc("POST /repos/{owner}/{repo}/labels", s.handleCreateLabel)
	mux.HandleFunc("PATCH /repos/{owner}/{repo}/labels/{name}", s.handleEditLabel)
	mux.HandleFunc("DELETE /repos/{owner}/{repo}/labels/{name}", s.handleDeleteLabel)
	mux.HandleFunc("GET /repos/{owner}/{repo}/contents/{path...}", s.handleGetContents)

	s.Server = httptest.NewServer(s.track(mux))
	return s
}

// BaseURL returns the URL to configure clients with
func (s *Server) BaseURL() string {
	return s.Server.URL + "/"
}

// AddOrganization creates owner without repositories
func (s *Server) AddOrganization(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repos[owner] == nil {
		s.repos[owner] = make(map[string][]Label)
	}
}

// AddRepository creates owner/repo holding labels
func (s *Server) AddRepository(owner, repo string, labels ...Label) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repos[owner] == nil {
		s.repos[owner] = make(map[string][]Label)
	}
	s.repos[owner][repo] = append([]Label{}, labels...)
}

// AddFile stores a file served by the contents API
func (s *Server) AddFile(owner, repo, path string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[owner+"/"+repo+"/"+path] = content
}

// FailPage makes the repository listing answer page with status
func (s *Server) FailPage(page, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failedPages[page] = status
}

// FailWrites makes every label mutation on owner/repo answer with status
func (s *Server) FailWrites(owner, repo string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failedWrites[owner+"/"+repo] = status
}

// Labels returns the labels of owner/repo
func (s *Server) Labels(owner, repo string) []Label {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Label{}, s.repos[owner][repo]...)
}

// Requests returns every request received so far
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request{}, s.requests...)
}

// CountRequests returns the number of requests with the given method
func (s *Server) CountRequests(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, r := range s.requests {
		if r.Method == method {
			count++
		}
	}
	return count
}

// PeakInFlight returns the highest number of concurrently served requests
func (s *Server) PeakInFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peakInFlight
}

func (s *Server) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path})
		s.inFlight++
		if s.inFlight > s.peakInFlight {
			s.peakInFlight = s.inFlight
		}
		s.rateRemaining--
		remaining := s.rateRemaining
		delay := s.Delay
		s.mu.Unlock()

		defer func() {
			s.mu.Lock()
			s.inFlight--
			s.mu.Unlock()
		}()

		if delay > 0 {
			time.Sleep(delay)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-RateLimit-Limit", "5000")
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10))
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, status int, message string, errs ...map[string]string) {
	body := map[string]any{"message": message}
	if len(errs) > 0 {
		body["errors"] = errs
	}
	writeJSON(w, status, body)
}

func (s *Server) handleUser(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("X-OAuth-Scopes", s.Scopes)
	writeJSON(w, http.StatusOK, map[string]any{"login": "octocat", "id": 1})
}

func (s *Server) handleListRepos(w http.ResponseWriter, r *http.Request) {
	org := r.PathValue("org")
	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 30)

	s.mu.Lock()
	status, failed := s.failedPages[page]
	repos, ok := s.repos[org]
	names := make([]string, 0, len(repos))
	for name := range repos {
		names = append(names, name)
	}
	s.mu.Unlock()

	if failed {
		writeError(w, status, "Server Error")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}

	sort.Strings(names)
	start := min((page-1)*perPage, len(names))
	end := min(start+perPage, len(names))

	body := make([]map[string]any, 0, end-start)
	for _, name := range names[start:end] {
		body = append(body, map[string]any{"name": name, "full_name": org + "/" + name})
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleListLabels(w http.ResponseWriter, r *http.Request) {
	owner, repo := r.PathValue("owner"), r.PathValue("repo")
	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 30)

	s.mu.Lock()
	labels, ok := s.repos[owner][repo]
	labels = append([]Label{}, labels...)
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}

	start := min((page-1)*perPage, len(labels))
	end := min(start+perPage, len(labels))
	if end < len(labels) {
		next := fmt.Sprintf("%s%s?page=%d&per_page=%d", s.Server.URL, r.URL.Path, page+1, perPage)
		w.Header().Set("Link", fmt.Sprintf(`<%s>; rel="next"`, next))
	}
	writeJSON(w, http.StatusOK, labels[start:end])
}

func (s *Server) handleCreateLabel(w http.ResponseWriter, r *http.Request) {
	owner, repo := r.PathValue("owner"), r.PathValue("repo")

	var label Label
	if err := json.NewDecoder(r.Body).Decode(&label); err != nil {
		writeError(w, http.StatusBadRequest, "Problems parsing JSON")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if status, ok := s.failedWrites[owner+"/"+repo]; ok {
		writeError(w, status, "Server Error")
		return
	}
	labels, ok := s.repos[owner][repo]
	if !ok {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}
	if indexOf(labels, label.Name) >= 0 {
		writeError(w, http.StatusUnprocessableEntity, "Validation Failed",
			map[string]string{"resource": "Label", "code": "already_exists", "field": "name"})
		return
	}

	s.repos[owner][repo] = append(labels, label)
	writeJSON(w, http.StatusCreated, label)
}

func (s *Server) handleEditLabel(w http.ResponseWriter, r *http.Request) {
	owner, repo, name := r.PathValue("owner"), r.PathValue("repo"), r.PathValue("name")

	var patch Label
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Problems parsing JSON")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if status, ok := s.failedWrites[owner+"/"+repo]; ok {
		writeError(w, status, "Server Error")
		return
	}
	labels := s.repos[owner][repo]
	index := indexOf(labels, name)
	if index < 0 {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}
	if patch.Name != "" && patch.Name != name && indexOf(labels, patch.Name) >= 0 {
		writeError(w, http.StatusUnprocessableEntity, "Validation Failed",
			map[string]string{"resource": "Label", "code": "already_exists", "field": "name"})
		return
	}

	if patch.Name != "" {
		labels[index].Name = patch.Name
	}
	if patch.Color != "" {
		labels[index].Color = patch.Color
	}
	writeJSON(w, http.StatusOK, labels[index])
}

func (s *Server) handleDeleteLabel(w http.ResponseWriter, r *http.Request) {
	owner, repo, name := r.PathValue("owner"), r.PathValue("repo"), r.PathValue("name")

	s.mu.Lock()
	defer s.mu.Unlock()

	if status, ok := s.failedWrites[owner+"/"+repo]; ok {
		writeError(w, status, "Server Error")
		return
	}
	labels := s.repos[owner][repo]
	index := indexOf(labels, name)
	if index < 0 {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}

	s.repos[owner][repo] = append(labels[:index], labels[index+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetContents(w http.ResponseWriter, r *http.Request) {
	owner, repo, path := r.PathValue("owner"), r.PathValue("repo"), r.PathValue("path")

	s.mu.Lock()
	content, ok := s.files[owner+"/"+repo+"/"+path]
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"type":     "file",
		"encoding": "base64",
		"name":     path[strings.LastIndex(path, "/")+1:],
		"path":     path,
		"content":  base64.StdEncoding.EncodeToString(content),
	})
}

func indexOf(labels []Label, name string) int {
	for i, label := range labels {
		if label.Name == name {
			return i
		}
	}
	return -1
}

func queryInt(r *http.Request, key string, fallback int) int {
	value, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
