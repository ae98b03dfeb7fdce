package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"osint-challenge-service/internal/app"
	pgstore "osint-challenge-service/internal/infra/postgres"
	pgmigrations "osint-challenge-service/internal/infra/postgres/migrations"
	infraredis "osint-challenge-service/internal/infra/redis"
)

func TestSubmitAnswerEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := openDB(pgURL)
	defer db.Close()
	migrateAndSeed(t, ctx, db)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgstore.NewChallengeLoader(pool)
	archive := pgstore.NewCertificateStore(db)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()
	challenges := infraredis.NewChallengeRepository(redisClient, loader, 5*time.Minute)
	attempts := infraredis.NewAttemptStore(redisClient, 5*time.Minute)
	service := app.NewChallengeService(attempts, challenges,
		app.WithChallengeLister(loader),
		app.WithCertificateSinks(archive),
		app.WithCertificateArchive(archive),
	)

	list, err := service.ListChallenges(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != "C1" {
		t.Fatalf("expected only the active challenge, got %+v", list)
	}

	questions, err := service.Questions(ctx, "C1")
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	if len(questions) != 3 || questions[0].ID != "q1" || questions[2].ID != "q3" {
		t.Fatalf("unexpected question order %+v", questions)
	}

	attempt, err := service.OpenAttempt(ctx, "C1", "analyst@example.com")
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	answers := []string{"192.168.1.100", "80", "ubuntu"}
	for i, answer := range answers {
		res, err := service.SubmitAnswer(ctx, attempt.ID, "C1", questions[i].ID, answer)
		if err != nil {
			t.Fatalf("submit %s: %v", questions[i].ID, err)
		}
		if !res.Verdict {
			t.Fatalf("expected correct verdict for %s", questions[i].ID)
		}
		if last := i == len(answers)-1; (res.Certificate != nil) != last {
			t.Fatalf("certificate presence mismatch at step %d: %+v", i, res)
		}
	}

	certs, err := service.Certificates(ctx, "analyst@example.com")
	if err != nil {
		t.Fatalf("certificates: %v", err)
	}
	if len(certs) != 1 || certs[0].ChallengeID != "C1" || certs[0].Points != 120 {
		t.Fatalf("expected archived certificate, got %+v", certs)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "forge", "POSTGRES_PASSWORD": "forgepass", "POSTGRES_DB": "forgedb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
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
	dsn := fmt.Sprintf("postgres://forge:forgepass@%s:%s/forgedb?sslmode=disable", host, port.Port())
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

func openDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func migrateAndSeed(t *testing.T, ctx context.Context, db *bun.DB) {
	t.Helper()
	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	statements := []string{
		`INSERT INTO challenges (id, title, description, difficulty, category, points, is_active)
		 VALUES ('C1', 'Recon the target', 'Staging host recon', 'medium', 'network', 0, TRUE),
		        ('C0', 'Retired', 'Old challenge', 'easy', 'misc', 10, FALSE)`,
		`INSERT INTO questions (id, challenge_id, prompt, points, order_index, answer)
		 VALUES ('q3', 'C1', 'Operating system?', 40, 3, 'Ubuntu'),
		        ('q1', 'C1', 'Server IP?', 50, 1, '192.168.1.100'),
		        ('q2', 'C1', 'Web port?', 30, 2, '80')`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
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
