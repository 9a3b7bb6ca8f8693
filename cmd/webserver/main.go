package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"quizforge"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const sessionName = "quizforge-session"

type server struct {
	cfg      *quizforge.Config
	log      *zap.SugaredLogger
	store    quizforge.QuizStore
	flow     *quizforge.Flow
	sessions *sessions.CookieStore
}

func main() {
	cfg := quizforge.LoadConfig()

	log, err := quizforge.NewLogger(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	var rec *quizforge.DebugRecorder
	if !cfg.Production() {
		rec, err = quizforge.NewDebugRecorder(cfg.DebugLogDir, "webserver-"+time.Now().Format("20060102-150405"))
		if err != nil {
			log.Warnw("debug recorder disabled", "error", err)
		} else {
			defer rec.Close()
		}
	}

	gen, err := quizforge.NewGenerator(cfg, log, rec)
	if err != nil {
		log.Fatalw("failed to build generator", "error", err)
	}

	store, err := quizforge.NewQuizStore(cfg, log)
	if err != nil {
		log.Fatalw("failed to open quiz store", "error", err)
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	flow := quizforge.NewFlow(gen,
		quizforge.WithStore(store),
		quizforge.WithFlowLogger(log),
		quizforge.WithNotifier(quizforge.NewLogNotifier(log)),
	)

	srv := &server{
		cfg:      cfg,
		log:      log,
		store:    store,
		flow:     flow,
		sessions: sessions.NewCookieStore([]byte(cfg.SessionSecret)),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", srv.handleLogin)
	mux.HandleFunc("POST /api/logout", srv.handleLogout)
	mux.HandleFunc("POST /api/quizzes/generate", srv.requireUser(srv.handleGenerate))
	mux.HandleFunc("GET /api/quizzes", srv.requireUser(srv.handleListQuizzes))
	mux.HandleFunc("GET /api/quizzes/{id}", srv.requireUser(srv.handleGetQuiz))
	mux.HandleFunc("DELETE /api/quizzes/{id}", srv.requireUser(srv.handleDeleteQuiz))
	mux.HandleFunc("POST /api/quizzes/{id}/answers", srv.requireUser(srv.handleSubmitAnswers))
	mux.HandleFunc("GET /api/stats", srv.requireUser(srv.handleStats))

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.logRequests(mux),
	}

	go func() {
		log.Infow("starting server", "addr", cfg.ListenAddr, "store", cfg.StoreBackend, "generator", cfg.GeneratorBackend)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Infow("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)
	flow.WaitSaves()
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Infow("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

// requireUser resolves the session user and rejects unauthenticated calls
// with 401 so the client can redirect to login.
func (s *server) requireUser(next func(w http.ResponseWriter, r *http.Request, userID string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := s.sessions.Get(r, sessionName)
		userID, _ := session.Values["user_id"].(string)
		if userID == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
			return
		}
		next(w, r, userID)
	}
}

type loginRequest struct {
	Username string `json:"username"`
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "username is required"})
		return
	}

	session, _ := s.sessions.Get(r, sessionName)
	session.Values["user_id"] = username
	session.Values["session_id"] = uuid.NewString()
	if err := session.Save(r, w); err != nil {
		s.log.Errorw("session save failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to start session"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"user_id": username})
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := s.sessions.Get(r, sessionName)
	session.Options.MaxAge = -1
	_ = session.Save(r, w)
	w.WriteHeader(http.StatusNoContent)
}

type generateRequest struct {
	Title         string `json:"title"`
	Text          string `json:"text"`
	NumStatements int    `json:"num_statements"`
}

func (s *server) handleGenerate(w http.ResponseWriter, r *http.Request, userID string) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.NumStatements <= 0 {
		req.NumStatements = s.cfg.NumStatements
	}
	if req.Title == "" {
		req.Title = quizTitle(req.Text)
	}

	result, err := s.flow.Generate(r.Context(), userID, req.Title, req.Text, req.NumStatements)
	if err != nil {
		s.writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleListQuizzes(w http.ResponseWriter, r *http.Request, userID string) {
	opts := quizforge.ListOptions{
		Offset: intParam(r, "offset", 0),
		Limit:  intParam(r, "limit", 0),
		Search: r.URL.Query().Get("search"),
	}
	quizzes, err := s.store.FetchUserQuizzes(r.Context(), userID, opts)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if quizzes == nil {
		quizzes = []quizforge.Quiz{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"quizzes": quizzes})
}

func (s *server) handleGetQuiz(w http.ResponseWriter, r *http.Request, userID string) {
	quiz, ok := s.ownedQuiz(w, r, userID)
	if !ok {
		return
	}

	questions, err := quiz.DecodeQuestions()
	if err != nil {
		s.log.Errorw("stored questions unreadable", "quiz_id", quiz.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "stored quiz questions are unreadable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"quiz":      quiz,
		"questions": quizforge.BuildQuestionViews(questions, true),
	})
}

func (s *server) handleDeleteQuiz(w http.ResponseWriter, r *http.Request, userID string) {
	quiz, ok := s.ownedQuiz(w, r, userID)
	if !ok {
		return
	}
	if err := s.store.DeleteQuiz(r.Context(), quiz.ID); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type answersRequest struct {
	Answers []string `json:"answers"`
}

func (s *server) handleSubmitAnswers(w http.ResponseWriter, r *http.Request, userID string) {
	quiz, ok := s.ownedQuiz(w, r, userID)
	if !ok {
		return
	}

	var req answersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	questions, err := quiz.DecodeQuestions()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "stored quiz questions are unreadable"})
		return
	}
	writeJSON(w, http.StatusOK, quizforge.EvaluateAnswers(questions, req.Answers))
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request, userID string) {
	stats, err := s.store.UserStats(r.Context(), userID)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ownedQuiz loads the path quiz and enforces user ownership. Foreign quizzes
// read as not-found so ids cannot be probed.
func (s *server) ownedQuiz(w http.ResponseWriter, r *http.Request, userID string) (*quizforge.Quiz, bool) {
	quiz, err := s.store.GetQuizByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return nil, false
	}
	if quiz.UserID != userID {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "quiz not found"})
		return nil, false
	}
	return quiz, true
}

func (s *server) writeFlowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quizforge.ErrSuperseded):
		// The newer request owns the response; nothing to report.
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, quizforge.ErrEmptyText):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, quizforge.ErrUnrecognizedShape), errors.Is(err, quizforge.ErrNoQuestions):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
	case quizforge.IsUnauthorized(err):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "generation backend rejected credentials"})
	default:
		s.log.Errorw("generation failed", "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "quiz generation failed"})
	}
}

func (s *server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quizforge.ErrQuizNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "quiz not found"})
	case errors.Is(err, quizforge.ErrUserIDRequired):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, quizforge.ErrConfig):
		s.log.Errorw("store misconfigured", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "persistence backend is not configured"})
	default:
		s.log.Errorw("store request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "request failed"})
	}
}

// quizTitle derives a fallback title from the first words of the text.
func quizTitle(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return "Untitled quiz"
	}
	if len(words) > 6 {
		words = words[:6]
	}
	return strings.Join(words, " ")
}

func intParam(r *http.Request, key string, defaultValue int) int {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return defaultValue
	}
	return parsed
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
