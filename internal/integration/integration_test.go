package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"

	"shield-quiz-service/internal/app"
	"shield-quiz-service/internal/domain"
	"shield-quiz-service/internal/infra/memory"
	"shield-quiz-service/internal/infra/postgres"
	infraredis "shield-quiz-service/internal/infra/redis"
)

func TestAttemptLifecycleEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := postgres.Open(pgURL)
	defer db.Close()
	applied, err := postgres.Migrate(ctx, db)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if len(applied) == 0 {
		t.Fatalf("expected migrations to be applied")
	}
	if again, err := postgres.Migrate(ctx, db); err != nil || len(again) != 0 {
		t.Fatalf("expected second migrate to be a no-op, got %v err=%v", again, err)
	}

	result, err := postgres.NewCatalogImporter(db).Import(ctx, sampleCatalog(), false)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Quizzes != 2 || result.Questions != 4 {
		t.Fatalf("unexpected import result %+v", result)
	}

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	catalog := memory.NewCatalog(postgres.NewCatalogLoader(pool), zaptest.NewLogger(t))
	quizzes, err := catalog.ListQuizzes(ctx)
	if err != nil {
		t.Fatalf("list quizzes: %v", err)
	}
	if len(quizzes) != 2 || quizzes[0].Level != 1 || quizzes[0].QuestionCount != 3 {
		t.Fatalf("unexpected catalog %+v", quizzes)
	}
	quiz, err := catalog.GetQuiz(ctx, quizzes[0].ID)
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	engine := app.NewAttemptEngine(catalog,
		postgres.NewAttemptStore(db),
		infraredis.NewAttemptLocker(redisClient, 5*time.Second, 2*time.Second))

	attempt, err := engine.StartAttempt(ctx, " Kid@Example.com ", quiz.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if attempt.ChildID != "kid@example.com" || attempt.TotalQuestions != 3 {
		t.Fatalf("unexpected attempt %+v", attempt)
	}

	answers := []string{quiz.Questions[0].CorrectAnswer, "wrong", quiz.Questions[0].CorrectAnswer}
	questions := []int64{quiz.Questions[0].ID, quiz.Questions[1].ID, quiz.Questions[0].ID}
	var last domain.AnswerResult
	for i := range answers {
		last, err = engine.SubmitAnswer(ctx, attempt.ID, questions[i], answers[i])
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	if last.Score != 1 {
		t.Fatalf("resubmitting a correct answer must not double count, score=%d", last.Score)
	}

	completion, err := engine.CompleteAttempt(ctx, attempt.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completion.Score != 1 || completion.TotalQuestions != 3 || completion.Percentage != 33 {
		t.Fatalf("unexpected completion %+v", completion)
	}
	again, err := engine.CompleteAttempt(ctx, attempt.ID)
	if err != nil {
		t.Fatalf("complete again: %v", err)
	}
	if !again.CompletedAt.Equal(completion.CompletedAt) {
		t.Fatalf("completion time changed: %v -> %v", completion.CompletedAt, again.CompletedAt)
	}

	progress, err := engine.GetProgress(ctx, "child", "KID@example.com")
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if len(progress) != 1 || progress[0].QuizTitle != quiz.Title || !progress[0].Completed {
		t.Fatalf("unexpected progress %+v", progress)
	}

	if _, err := engine.SubmitAnswer(ctx, 999999, quiz.Questions[0].ID, "x"); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected attempt not found, got %v", err)
	}
	if n, err := redisClient.Exists(ctx, fmt.Sprintf("quiz:attempt:%d:lock", attempt.ID)).Result(); err != nil || n != 0 {
		t.Fatalf("expected lock key released, exists=%d err=%v", n, err)
	}
}

func TestConcurrentSubmitsAcrossEngines(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := postgres.Open(pgURL)
	defer db.Close()
	if _, err := postgres.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := postgres.NewCatalogImporter(db).Import(ctx, sampleCatalog(), false); err != nil {
		t.Fatalf("import: %v", err)
	}
	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	// Two engines share storage and the Redis lock, like two service instances.
	var engines []*app.AttemptEngine
	for i := 0; i < 2; i++ {
		client, err := redisClientFromURL(redisURL)
		if err != nil {
			t.Fatalf("redis client: %v", err)
		}
		defer client.Close()
		catalog := memory.NewCatalog(postgres.NewCatalogLoader(pool), zaptest.NewLogger(t))
		engines = append(engines, app.NewAttemptEngine(catalog,
			postgres.NewAttemptStore(db),
			infraredis.NewAttemptLocker(client, 5*time.Second, 5*time.Second)))
	}

	progress, err := engines[0].GetProgress(ctx, "counselor", "ops@example.com")
	if err != nil || len(progress) != 0 {
		t.Fatalf("expected no attempts yet, got %v err=%v", progress, err)
	}
	catalog := app.NewCatalogService(memory.NewCatalog(postgres.NewCatalogLoader(pool), zaptest.NewLogger(t)))
	summaries, err := catalog.ListQuizzes(ctx)
	if err != nil || len(summaries) == 0 {
		t.Fatalf("list quizzes: %v err=%v", summaries, err)
	}
	quiz, err := catalog.GetQuiz(ctx, summaries[0].ID)
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	attempt, err := engines[0].StartAttempt(ctx, "kid@example.com", quiz.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			question := quiz.Questions[i%len(quiz.Questions)]
			_, err := engines[i%2].SubmitAnswer(ctx, attempt.ID, question.ID, question.CorrectAnswer)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	responses, err := engines[1].Responses(ctx, attempt.ID)
	if err != nil {
		t.Fatalf("responses: %v", err)
	}
	if len(responses) != len(quiz.Questions) {
		t.Fatalf("expected one response per question, got %d", len(responses))
	}
	completion, err := engines[1].CompleteAttempt(ctx, attempt.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completion.Score != len(quiz.Questions) || completion.Percentage != 100 {
		t.Fatalf("unexpected completion %+v", completion)
	}
}

func TestCatalogReimportKeepsQuestionIDs(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()

	db := postgres.Open(pgURL)
	defer db.Close()
	if _, err := postgres.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	importer := postgres.NewCatalogImporter(db)
	if _, err := importer.Import(ctx, sampleCatalog(), false); err != nil {
		t.Fatalf("import: %v", err)
	}

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	loader := postgres.NewCatalogLoader(pool)

	before, err := loader.LoadCatalog(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	store := postgres.NewAttemptStore(db)
	attempt, err := store.CreateAttempt(ctx, domain.Attempt{
		ChildID:        "kid@example.com",
		QuizID:         before[0].ID,
		StartedAt:      time.Now().UTC(),
		TotalQuestions: 3,
	})
	if err != nil {
		t.Fatalf("create attempt: %v", err)
	}
	for _, q := range before[0].Questions {
		if _, err := store.SaveResponse(ctx, domain.Response{
			AttemptID:      attempt.ID,
			QuestionID:     q.ID,
			SelectedAnswer: q.CorrectAnswer,
			Correct:        true,
			AnsweredAt:     time.Now().UTC(),
		}); err != nil {
			t.Fatalf("save response: %v", err)
		}
	}

	// Level 1 shrinks to two questions with a reworded first prompt.
	updated := sampleCatalog()
	updated[0].Questions = updated[0].Questions[:2]
	updated[0].Questions[0].Text = "Which parts of your body are private? (updated)"
	if _, err := importer.Import(ctx, updated, false); err != nil {
		t.Fatalf("reimport: %v", err)
	}

	after, err := loader.LoadCatalog(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(after[0].Questions) != 2 {
		t.Fatalf("expected trimmed quiz, got %d questions", len(after[0].Questions))
	}
	if after[0].Questions[0].ID != before[0].Questions[0].ID || !strings.HasSuffix(after[0].Questions[0].Text, "(updated)") {
		t.Fatalf("expected question updated in place, got %+v", after[0].Questions[0])
	}

	reloaded, err := store.GetAttempt(ctx, attempt.ID)
	if err != nil {
		t.Fatalf("get attempt: %v", err)
	}
	if reloaded.Score != 2 {
		t.Fatalf("expected score recounted to 2, got %d", reloaded.Score)
	}

	audit := postgres.NewAuditStore(db)
	if err := audit.SaveArticles(ctx, app.PlaceholderArticles()); err != nil {
		t.Fatalf("save articles: %v", err)
	}
	if _, err := audit.CreateRegistration(ctx, domain.Registration{
		Role: "parent", FullName: "Pat", Email: "pat@example.com", PasswordHash: "x", CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("create registration: %v", err)
	}
	if _, err := audit.CreateLoginAttempt(ctx, domain.LoginAttempt{Role: "parent", Successful: true, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("create login attempt: %v", err)
	}

	if _, err := importer.Import(ctx, updated[1:], true); err != nil {
		t.Fatalf("purge import: %v", err)
	}
	if _, err := store.GetAttempt(ctx, attempt.ID); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected attempts purged, got %v", err)
	}
	purged, err := loader.LoadCatalog(ctx)
	if err != nil {
		t.Fatalf("load after purge: %v", err)
	}
	if len(purged) != 1 || purged[0].Level != 2 {
		t.Fatalf("unexpected catalog after purge %+v", purged)
	}
	if articles, err := audit.ListArticles(ctx); err != nil || len(articles) != 0 {
		t.Fatalf("expected articles purged, got %d err=%v", len(articles), err)
	}
	for _, table := range []string{"registration_requests", "login_attempts"} {
		var n int
		if err := db.NewRaw("SELECT count(*) FROM " + table).Scan(ctx, &n); err != nil || n != 0 {
			t.Fatalf("expected %s purged, got %d err=%v", table, n, err)
		}
	}
}

func TestAuditStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()

	db := postgres.Open(pgURL)
	defer db.Close()
	if _, err := postgres.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	audit := postgres.NewAuditStore(db)

	news := app.NewNewsService(audit)
	articles, err := news.List(ctx)
	if err != nil {
		t.Fatalf("list news: %v", err)
	}
	if len(articles) != len(app.PlaceholderArticles()) {
		t.Fatalf("expected placeholders on empty table, got %d", len(articles))
	}
	if err := audit.SaveArticles(ctx, app.PlaceholderArticles()); err != nil {
		t.Fatalf("save articles: %v", err)
	}
	if err := audit.SaveArticles(ctx, app.PlaceholderArticles()); err != nil {
		t.Fatalf("save articles twice: %v", err)
	}
	stored, err := audit.ListArticles(ctx)
	if err != nil {
		t.Fatalf("list articles: %v", err)
	}
	if len(stored) != 3 || !stored[0].PublishedAt.After(stored[1].PublishedAt) {
		t.Fatalf("unexpected stored articles %+v", stored)
	}

	accounts := app.NewAccountService(audit, app.BcryptHasher)
	reg, err := accounts.Register(ctx, app.RegistrationRequest{
		Role:     "parent",
		FullName: "Pat Parent",
		Email:    "Pat@Example.com",
		Password: "s3cret-pass",
		Metadata: map[string]any{"children": 2},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.ID == 0 || reg.PasswordHash == "s3cret-pass" || reg.CreatedAt.IsZero() {
		t.Fatalf("unexpected registration %+v", reg)
	}

	login, err := accounts.RecordLogin(ctx, app.LoginRequest{
		Role:       "parent",
		Identifier: "pat@example.com",
		Password:   "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.ID == 0 || !login.Successful {
		t.Fatalf("unexpected login attempt %+v", login)
	}
	if _, ok := login.Payload["password"]; ok {
		t.Fatalf("password must not be stored in login payload")
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func sampleCatalog() []domain.Quiz {
	return []domain.Quiz{
		{
			Level:     1,
			Title:     "My Body, My Rules",
			BadgeName: "Safety Star",
			Questions: []domain.Question{
				{Text: "Which parts of your body are private?", Options: []string{"Swimsuit parts", "Hands"}, CorrectAnswer: "Swimsuit parts"},
				{Text: "Someone asks you to keep a secret touch. What do you do?", Options: []string{"Keep it", "Tell a trusted adult"}, CorrectAnswer: "Tell a trusted adult"},
				{Text: "Can you say NO to an unwanted touch?", Options: []string{"Yes", "No"}, CorrectAnswer: "Yes"},
			},
		},
		{
			Level:     2,
			Title:     "Safe and Unsafe Secrets",
			BadgeName: "Secret Keeper",
			Questions: []domain.Question{
				{Text: "A surprise party is a...", Options: []string{"Safe secret", "Unsafe secret"}, CorrectAnswer: "Safe secret"},
			},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
