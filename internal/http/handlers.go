package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/gus-tavo01/forums-api-sub000/internal/auth"
	"github.com/gus-tavo01/forums-api-sub000/internal/forum"
	"github.com/gus-tavo01/forums-api-sub000/internal/metrics"
	"github.com/gus-tavo01/forums-api-sub000/internal/repository"
	"github.com/gus-tavo01/forums-api-sub000/internal/response"
	"github.com/gus-tavo01/forums-api-sub000/internal/validation"
)

const (
	apiPrefix    = "/api/v0"
	maxBodyBytes = 1 << 20
)

type TokenParser interface {
	Parse(token string) (username string, err error)
}

type Deps struct {
	Service  *forum.Service
	Tokens   TokenParser
	Accounts repository.Accounts
	Logger   logrus.FieldLogger
	Metrics  *metrics.Metrics

	// RateLimit applies per client address to /auth routes. Zero disables it.
	RateLimit      rate.Limit
	RateBurst      int
	RequestTimeout time.Duration
}

type Server struct {
	svc      *forum.Service
	tokens   TokenParser
	accounts repository.Accounts
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
	limiter  *rateLimiter

	Router  *mux.Router
	handler http.Handler
}

func NewServer(d Deps) *Server {
	s := &Server{
		svc:      d.Service,
		tokens:   d.Tokens,
		accounts: d.Accounts,
		log:      d.Logger,
		metrics:  d.Metrics,
		Router:   mux.NewRouter(),
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if d.RateLimit > 0 {
		s.limiter = newRateLimiter(d.RateLimit, max(d.RateBurst, 1))
	}

	r := s.Router
	r.Use(s.metrics.Middleware, WithTimeout(d.RequestTimeout))
	r.NotFoundHandler = http.HandlerFunc(routeNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(routeNotFound)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, response.OK("ok"))
	}).Methods(http.MethodGet)

	api := r.PathPrefix(apiPrefix).Subrouter()

	// routes
	authr := api.PathPrefix("/auth").Subrouter()
	authr.Use(s.limiter.Middleware(s.log))
	authr.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	authr.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	authr.Handle("/users/{userId}/password", s.requireAuth(http.HandlerFunc(s.handleResetPassword))).Methods(http.MethodPost)
	authr.Handle("/users/{userId}", s.requireAuth(http.HandlerFunc(s.handleDeactivate))).Methods(http.MethodDelete)

	api.HandleFunc("/users", s.handleListUsers).Methods(http.MethodGet)
	api.Handle("/users", s.requireAuth(http.HandlerFunc(s.handleCreateUser))).Methods(http.MethodPost)
	api.HandleFunc("/users/{userId}", s.handleGetUser).Methods(http.MethodGet)

	api.HandleFunc("/forums", s.handleListForums).Methods(http.MethodGet)
	api.Handle("/forums", s.requireAuth(http.HandlerFunc(s.handleCreateForum))).Methods(http.MethodPost)
	api.HandleFunc("/forums/{forumId}", s.handleGetForum).Methods(http.MethodGet)

	f := api.PathPrefix("/forums/{forumId}").Subrouter()
	f.HandleFunc("/topics", s.handleListTopics).Methods(http.MethodGet)
	f.Handle("/topics", s.requireAuth(http.HandlerFunc(s.handleCreateTopic))).Methods(http.MethodPost)
	f.HandleFunc("/topics/{topicId}", s.handleGetTopic).Methods(http.MethodGet)
	f.Handle("/topics/{topicId}", s.requireAuth(http.HandlerFunc(s.handleDeleteTopic))).Methods(http.MethodDelete)
	f.HandleFunc("/topics/{topicId}/comments", s.handleListComments).Methods(http.MethodGet)
	f.Handle("/topics/{topicId}/comments", s.requireAuth(http.HandlerFunc(s.handleCreateComment))).Methods(http.MethodPost)
	f.Handle("/topics/{topicId}/comments/{commentId}/{reaction}", s.requireAuth(http.HandlerFunc(s.handleReact))).Methods(http.MethodPost)
	f.HandleFunc("/participants", s.handleListParticipants).Methods(http.MethodGet)
	f.Handle("/participants", s.requireAuth(http.HandlerFunc(s.handleAddParticipant))).Methods(http.MethodPost)
	f.Handle("/participants/{userId}", s.requireAuth(http.HandlerFunc(s.handleRemoveParticipant))).Methods(http.MethodDelete)

	s.handler = s.withRecover(WithAccessLog(s.log)(r))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.handler.ServeHTTP(w, r) }

// writeEnvelope sends env as JSON with a status equal to its status code.
func writeEnvelope(w http.ResponseWriter, env response.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.StatusCode)
	_ = json.NewEncoder(w).Encode(env)
}

func routeNotFound(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, response.NotFound(fmt.Sprintf("Route %s %s is not found", r.Method, r.URL.Path)))
}

// decode reads a JSON body into dst. An empty body leaves dst untouched so
// that validation reports the missing fields.
func decode(r *http.Request, dst any) (response.Envelope, bool) {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	err := dec.Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return response.Envelope{}, true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		rule := validation.Rule{Expect: typeErr.Type.String()}
		return response.BadRequest([]string{validation.Message(typeErr.Field, rule, typeErr.Value)}), false
	}
	var sizeErr *http.MaxBytesError
	if errors.As(err, &sizeErr) {
		return response.BadRequest(nil, fmt.Sprintf("Request body exceeds %d bytes", sizeErr.Limit)), false
	}
	return response.BadRequest(nil, "Request body must be a JSON object"), false
}

// withBody decodes the request into a T and hands it to call.
func withBody[T any](w http.ResponseWriter, r *http.Request, call func(in T) response.Envelope) {
	var in T
	if env, ok := decode(r, &in); !ok {
		writeEnvelope(w, env)
		return
	}
	writeEnvelope(w, call(in))
}

func requestor(r *http.Request) string {
	username, _ := auth.UsernameFrom(r.Context())
	return username
}

func pageQuery(r *http.Request) forum.PageQuery {
	var q forum.PageQuery
	values := r.URL.Query()
	if values.Has("page") {
		v := values.Get("page")
		q.Page = &v
	}
	if values.Has("limit") {
		v := values.Get("limit")
		q.Limit = &v
	}
	return q
}

// ——— auth ———

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	withBody(w, r, func(in forum.Credentials) response.Envelope {
		return s.svc.Login(r.Context(), in)
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	withBody(w, r, func(in forum.RegisterInput) response.Envelope {
		return s.svc.Register(r.Context(), in)
	})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	withBody(w, r, func(in forum.PasswordInput) response.Envelope {
		return s.svc.ResetPassword(r.Context(), requestor(r), mux.Vars(r)["userId"], in)
	})
}

func (s *Server) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, s.svc.DeactivateAccount(r.Context(), requestor(r), mux.Vars(r)["userId"]))
}

// ——— users ———

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, s.svc.ListUsers(r.Context(), pageQuery(r)))
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	withBody(w, r, func(in forum.RegisterInput) response.Envelope {
		return s.svc.CreateUser(r.Context(), requestor(r), in)
	})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, s.svc.GetUser(r.Context(), mux.Vars(r)["userId"]))
}

// ——— forums ———

func (s *Server) handleListForums(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, s.svc.ListForums(r.Context(), pageQuery(r)))
}

func (s *Server) handleCreateForum(w http.ResponseWriter, r *http.Request) {
	withBody(w, r, func(in forum.ForumInput) response.Envelope {
		return s.svc.CreateForum(r.Context(), requestor(r), in)
	})
}

func (s *Server) handleGetForum(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, s.svc.GetForum(r.Context(), mux.Vars(r)["forumId"]))
}

// ——— topics ———

func (s *Server) handleListTopics(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, s.svc.ListTopics(r.Context(), mux.Vars(r)["forumId"], pageQuery(r)))
}

func (s *Server) handleCreateTopic(w http.ResponseWriter, r *http.Request) {
	withBody(w, r, func(in forum.TopicInput) response.Envelope {
		return s.svc.CreateTopic(r.Context(), requestor(r), mux.Vars(r)["forumId"], in)
	})
}

func (s *Server) handleGetTopic(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	writeEnvelope(w, s.svc.GetTopic(r.Context(), v["forumId"], v["topicId"]))
}

func (s *Server) handleDeleteTopic(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	writeEnvelope(w, s.svc.DeleteTopic(r.Context(), requestor(r), v["forumId"], v["topicId"]))
}

// ——— comments ———

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	writeEnvelope(w, s.svc.ListComments(r.Context(), v["forumId"], v["topicId"], pageQuery(r)))
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	withBody(w, r, func(in forum.CommentInput) response.Envelope {
		return s.svc.CreateComment(r.Context(), requestor(r), v["forumId"], v["topicId"], in)
	})
}

func (s *Server) handleReact(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	writeEnvelope(w, s.svc.React(r.Context(), requestor(r), v["forumId"], v["topicId"], v["commentId"], v["reaction"]))
}

// ——— participants ———

func (s *Server) handleListParticipants(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, s.svc.ListParticipants(r.Context(), mux.Vars(r)["forumId"], pageQuery(r)))
}

func (s *Server) handleAddParticipant(w http.ResponseWriter, r *http.Request) {
	withBody(w, r, func(in forum.ParticipantInput) response.Envelope {
		return s.svc.AddParticipant(r.Context(), requestor(r), mux.Vars(r)["forumId"], in)
	})
}

func (s *Server) handleRemoveParticipant(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	writeEnvelope(w, s.svc.RemoveParticipant(r.Context(), requestor(r), v["forumId"], v["userId"]))
}
