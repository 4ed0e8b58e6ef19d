package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"shield-quiz-service/internal/app"
)

// Handler serves the JSON API. It only translates between wire and domain shapes.
type Handler struct {
	engine   *app.AttemptEngine
	catalog  *app.CatalogService
	accounts *app.AccountService
	news     *app.NewsService
	log      *zap.Logger
}

func NewHandler(engine *app.AttemptEngine, catalog *app.CatalogService, accounts *app.AccountService, news *app.NewsService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		engine:   engine,
		catalog:  catalog,
		accounts: accounts,
		news:     news,
		log:      log,
	}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) StartAttempt(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if _, err := decodeBody(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgInvalidPayload)
		return
	}
	attempt, err := h.engine.StartAttempt(r.Context(), req.ChildEmail, int64(req.QuizID))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, startResponse{
		AttemptID:      attempt.ID,
		QuizID:         attempt.QuizID,
		TotalQuestions: attempt.TotalQuestions,
	})
}

func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if _, err := decodeBody(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgInvalidPayload)
		return
	}
	res, err := h.engine.SubmitAnswer(r.Context(), int64(req.AttemptID), int64(req.QuestionID), req.SelectedAnswer)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{
		IsCorrect:     res.Correct,
		CorrectAnswer: res.CorrectAnswer,
		CurrentScore:  res.Score,
	})
}

func (h *Handler) CompleteAttempt(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if _, err := decodeBody(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgInvalidPayload)
		return
	}
	completion, err := h.engine.CompleteAttempt(r.Context(), int64(req.AttemptID))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, completeResponse{
		AttemptID:      completion.AttemptID,
		Score:          completion.Score,
		TotalQuestions: completion.TotalQuestions,
		Percentage:     completion.Percentage,
		CompletedAt:    completion.CompletedAt,
	})
}

func (h *Handler) Progress(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := h.engine.GetProgress(r.Context(), q.Get("role"), q.Get("identifier"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]progressResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toProgressResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.catalog.ListQuizzes(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]quizSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, quizSummaryResponse{
			ID:            s.ID,
			Level:         s.Level,
			Title:         s.Title,
			BadgeName:     s.BadgeName,
			QuestionCount: s.QuestionCount,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	quizID, err := strconv.ParseInt(chi.URLParam(r, "quizID"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Quiz not found.")
		return
	}
	quiz, err := h.catalog.GetQuiz(r.Context(), quizID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuizDetail(quiz))
}

func (h *Handler) News(w http.ResponseWriter, r *http.Request) {
	articles, err := h.news.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]articleResponse, 0, len(articles))
	for _, a := range articles {
		out = append(out, articleResponse{
			ID:          a.Slug,
			Title:       a.Title,
			Summary:     a.Summary,
			Category:    a.Category,
			PublishedAt: a.PublishedAt.Format("2006-01-02"),
			SourceURL:   a.SourceURL,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if _, err := decodeBody(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgInvalidPayload)
		return
	}
	attempt, err := h.accounts.RecordLogin(r.Context(), app.LoginRequest{
		Role:       req.Role,
		Identifier: req.Identifier,
		Password:   req.Password,
		Metadata:   req.Metadata,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Message:   "Login request received.",
		AttemptID: attempt.ID,
		Role:      attempt.Role,
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	body, err := decodeBody(w, r, &req)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, msgInvalidPayload)
		return
	}
	var extra map[string]any
	if err := json.Unmarshal(body, &extra); err != nil {
		writeMessage(w, http.StatusBadRequest, msgInvalidPayload)
		return
	}
	for _, key := range registerKnownKeys {
		delete(extra, key)
	}

	reg, err := h.accounts.Register(r.Context(), app.RegistrationRequest{
		Role:     req.Role,
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Metadata: req.Metadata,
		Extra:    extra,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, registerResponse{
		Message:   "Registration request received.",
		RequestID: reg.ID,
		Role:      reg.Role,
	})
}
