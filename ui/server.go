// Copyright 2026 The chequedesk Authors
// This file is part of the chequedesk library.
//
// The chequedesk library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The chequedesk library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the chequedesk library. If not, see <http://www.gnu.org/licenses/>.


package ui

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/chequedesk/chequedesk/chequedb"
	"github.com/chequedesk/chequedesk/contracts/cheque"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

//go:embed templates
var templates embed.FS

var pageTemplate = template.Must(template.ParseFS(templates, "templates/page.html"))

// page is the data the page template renders.
type page struct {
	Tab      Tab
	User     *chequedb.LoginUser
	Contract common.Address
	Message  *Message
	Form     chequedb.Form
	Header   []string
	Rows     [][]string
}

// Server exposes a controller over HTTP.
type Server struct {
	ctrl     *Controller
	contract common.Address
	origins  []string
	log      log.Logger
}

// NewServer creates the HTTP front end. Cross origin requests to the JSON API
// are allowed from the given origins.
func NewServer(ctrl *Controller, contract common.Address, corsOrigins []string) *Server {
	return &Server{
		ctrl:     ctrl,
		contract: contract,
		origins:  corsOrigins,
		log:      log.New("module", "ui"),
	}
}

// Handler returns the http.Handler serving both the pages and the API.
func (s *Server) Handler() http.Handler {
	pages := s.newRouter()
	pages.GET("/", s.handleIssueTab)
	pages.GET("/status", s.handleStatusTab)
	pages.GET("/logout", s.handleLogout)
	pages.POST("/issue", s.handleIssue)
	pages.POST("/verify/:id", s.handleVerify)

	api := s.newRouter()
	api.GET("/api/cheques", s.handleListCheques)
	api.POST("/api/cheques", s.handleCreateCheque)
	api.POST("/api/cheques/:id/verify", s.handleVerifyCheque)
	apiHandler := newCorsHandler(api, s.origins)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			apiHandler.ServeHTTP(w, r)
			return
		}
		pages.ServeHTTP(w, r)
	})
}

// newRouter creates a router that turns handler panics into a logged 500
// answer instead of tearing the server down.
func (s *Server) newRouter() *httprouter.Router {
	router := httprouter.New()
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v interface{}) {
		s.log.Error("Request handler panicked", "method", r.Method, "path", r.URL.Path, "err", v, "stack", string(debug.Stack()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
	return router
}

func newCorsHandler(srv http.Handler, allowedOrigins []string) http.Handler {
	// disable CORS support if user has not specified a custom CORS configuration
	if len(allowedOrigins) == 0 {
		return srv
	}
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodPost, http.MethodGet},
		AllowedHeaders: []string{"*"},
		MaxAge:         600,
	})
	return c.Handler(srv)
}

func (s *Server) render(w http.ResponseWriter, status int, p *page) {
	user, err := s.ctrl.Open()
	if err != nil {
		s.log.Warn("Failed to open session", "err", err)
	}
	p.User = user
	p.Contract = s.contract
	if p.Tab == TabStatus && p.Rows == nil {
		view, err := s.ctrl.Tab(string(TabStatus))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		p.Rows = view.Rows
	}
	p.Header = chequedb.Header

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, p); err != nil {
		s.log.Warn("Failed to render page", "tab", p.Tab, "err", err)
	}
}

func (s *Server) handleIssueTab(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.render(w, http.StatusOK, &page{Tab: TabIssue})
}

func (s *Server) handleStatusTab(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.render(w, http.StatusOK, &page{Tab: TabStatus})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	view, err := s.ctrl.Tab(string(TabLogout))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, view.Redirect, http.StatusSeeOther)
}

func (s *Server) handleIssue(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	form := chequedb.Form{
		BankName:     r.PostForm.Get("bankName"),
		ReceiverName: r.PostForm.Get("receiverName"),
		Amount:       r.PostForm.Get("amount"),
		ChequeDate:   r.PostForm.Get("chequeDate"),
	}
	out := s.ctrl.Submit(r.Context(), form)
	p := &page{Tab: TabIssue, Message: out.Message}
	if out.Err != nil {
		p.Form = form
	}
	s.render(w, outcomeStatus(out), p)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	seq, err := strconv.ParseUint(params.ByName("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid cheque number", http.StatusBadRequest)
		return
	}
	out := s.ctrl.Verify(r.Context(), seq)
	s.render(w, outcomeStatus(out), &page{Tab: TabStatus, Message: out.Message})
}

func (s *Server) handleListCheques(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	records, err := s.ctrl.Records()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, failure(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCreateCheque(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var form chequedb.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeJSON(w, http.StatusBadRequest, failure(err.Error()))
		return
	}
	out := s.ctrl.Submit(r.Context(), form)
	status := outcomeStatus(out)
	if status == http.StatusOK && out.Record != nil {
		status = http.StatusCreated
	}
	writeJSON(w, status, out)
}

func (s *Server) handleVerifyCheque(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	seq, err := strconv.ParseUint(params.ByName("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, failure("invalid cheque number"))
		return
	}
	out := s.ctrl.Verify(r.Context(), seq)
	writeJSON(w, outcomeStatus(out), out)
}

// outcomeStatus maps an action outcome to an HTTP status code.
func outcomeStatus(out *Outcome) int {
	switch {
	case out.Err == nil:
		return http.StatusOK
	case errors.Is(out.Err, ErrIncompleteForm), errors.Is(out.Err, cheque.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(out.Err, chequedb.ErrUnknownCheque):
		return http.StatusNotFound
	case errors.Is(out.Err, ErrNoChequeID):
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
