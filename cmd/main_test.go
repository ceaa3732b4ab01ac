package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// resetFlags resets the global flag.CommandLine to avoid "flag redefined" panic
func resetFlags() {
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)
}

// resetEnv clears env vars used by parseConfig
func resetEnv() {
	os.Clearenv()
}

func TestParseFlags_Default(t *testing.T) {
	resetFlags()
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"cmd"}
	configPath := parseFlags()
	expected := "config.env"

	if configPath != expected {
		t.Errorf("expected %s, got %s", expected, configPath)
	}
}

func TestParseFlags_Custom(t *testing.T) {
	resetFlags()
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"cmd", "-c", "myconfig.env"}
	configPath := parseFlags()
	expected := "myconfig.env"

	if configPath != expected {
		t.Errorf("expected %s, got %s", expected, configPath)
	}
}

func TestPrintBuildInfo_Output(t *testing.T) {
	// Capture stdout
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	buildVersion = "v1.0.0"
	buildCommit = "abcd1234"
	buildDate = "2026-08-28"

	printBuildInfo()

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	output := buf.String()
	os.Stdout = oldStdout

	if !contains(output, "Version: v1.0.0") ||
		!contains(output, "Commit: abcd1234") ||
		!contains(output, "Build: 2026-08-28") {
		t.Errorf("printBuildInfo output unexpected:\n%s", output)
	}
}

func contains(s, substr string) bool {
	return bytes.Contains([]byte(s), []byte(substr))
}

func TestParseConfig_Defaults(t *testing.T) {
	resetEnv()

	appHost, appPort, logLevel,
		pgHost, pgPort, pgUser, pgPassword, pgDB,
		pgMaxOpenConns, pgMaxIdleConns,
		redisHost, redisPort, redisDB, redisPassword,
		redisPoolSize, redisMinIdleConns, redisExpSecond,
		s3Endpoint, s3Region, s3Bucket, s3AccessKey, s3SecretKey,
		kafkaAddrs, kafkaTopic,
		accessSecret, accessExp, refreshSecret, refreshExp,
		err := parseConfig("nonexistent.env")

	if err != nil {
		t.Fatalf("parseConfig returned error: %v", err)
	}

	if appHost != "localhost" || appPort != "8080" || logLevel != "info" {
		t.Errorf("unexpected app config: %v/%v/%v", appHost, appPort, logLevel)
	}
	if pgHost != "localhost" || pgPort != 5432 || pgUser != "user" || pgPassword != "password" || pgDB != "database" ||
		pgMaxOpenConns != 16 || pgMaxIdleConns != 8 {
		t.Errorf("unexpected postgres config")
	}
	if redisHost != "localhost" || redisPort != 6379 || redisDB != 0 || redisPassword != "" ||
		redisPoolSize != 10 || redisMinIdleConns != 2 || redisExpSecond != 3300 {
		t.Errorf("unexpected redis config")
	}
	if s3Endpoint != "" || s3Region != "us-east-1" || s3Bucket != "images" ||
		s3AccessKey != "minioadmin" || s3SecretKey != "minioadmin" {
		t.Errorf("unexpected s3 config")
	}
	if kafkaAddrs != "" || kafkaTopic != "image-events" {
		t.Errorf("unexpected kafka config")
	}
	if accessSecret != "my_super_secret_key" || accessExp != 15*time.Minute {
		t.Errorf("unexpected access token config")
	}
	if refreshSecret != "my_other_super_secret_key" || refreshExp != 168*time.Hour {
		t.Errorf("unexpected refresh token config")
	}
}

func TestParseConfig_CustomEnv(t *testing.T) {
	resetEnv()
	os.Setenv("APP_HOST", "127.0.0.1")
	os.Setenv("APP_PORT", "9090")
	os.Setenv("APP_LOG_LEVEL", "debug")

	os.Setenv("POSTGRES_HOST", "pg.example.com")
	os.Setenv("POSTGRES_PORT", "5433")
	os.Setenv("POSTGRES_USER", "admin")
	os.Setenv("POSTGRES_PASSWORD", "secret")
	os.Setenv("POSTGRES_DB", "mydb")
	os.Setenv("POSTGRES_MAX_OPEN_CONNS", "20")
	os.Setenv("POSTGRES_MAX_IDLE_CONNS", "10")

	os.Setenv("REDIS_HOST", "redis.example.com")
	os.Setenv("REDIS_PORT", "6380")
	os.Setenv("REDIS_DB", "2")
	os.Setenv("REDIS_PASSWORD", "redispass")
	os.Setenv("REDIS_POOL_SIZE", "15")
	os.Setenv("REDIS_MIN_IDLE_CONNS", "5")
	os.Setenv("REDIS_EXP_SECOND", "120")

	os.Setenv("S3_ENDPOINT", "http://minio:9000")
	os.Setenv("S3_REGION", "eu-west-1")
	os.Setenv("S3_BUCKET", "photos")
	os.Setenv("S3_ACCESS_KEY", "access")
	os.Setenv("S3_SECRET_KEY", "secret")

	os.Setenv("KAFKA_ADDRS", "kafka1:9092,kafka2:9092")
	os.Setenv("KAFKA_TOPIC", "events")

	os.Setenv("JWT_ACCESS_SECRET_KEY", "accesssecret")
	os.Setenv("JWT_ACCESS_EXP", "5m")
	os.Setenv("JWT_REFRESH_SECRET_KEY", "refreshsecret")
	os.Setenv("JWT_REFRESH_EXP", "24h")

	appHost, appPort, logLevel,
		pgHost, pgPort, pgUser, pgPassword, pgDB,
		pgMaxOpenConns, pgMaxIdleConns,
		redisHost, redisPort, redisDB, redisPassword,
		redisPoolSize, redisMinIdleConns, redisExpSecond,
		s3Endpoint, s3Region, s3Bucket, s3AccessKey, s3SecretKey,
		kafkaAddrs, kafkaTopic,
		accessSecret, accessExp, refreshSecret, refreshExp,
		err := parseConfig("nonexistent.env")

	if err != nil {
		t.Fatalf("parseConfig returned error: %v", err)
	}

	if appHost != "127.0.0.1" || appPort != "9090" || logLevel != "debug" {
		t.Errorf("unexpected app config")
	}
	if pgHost != "pg.example.com" || pgPort != 5433 || pgUser != "admin" || pgPassword != "secret" || pgDB != "mydb" ||
		pgMaxOpenConns != 20 || pgMaxIdleConns != 10 {
		t.Errorf("unexpected postgres config")
	}
	if redisHost != "redis.example.com" || redisPort != 6380 || redisDB != 2 || redisPassword != "redispass" ||
		redisPoolSize != 15 || redisMinIdleConns != 5 || redisExpSecond != 120 {
		t.Errorf("unexpected redis config")
	}
	if s3Endpoint != "http://minio:9000" || s3Region != "eu-west-1" || s3Bucket != "photos" ||
		s3AccessKey != "access" || s3SecretKey != "secret" {
		t.Errorf("unexpected s3 config")
	}
	if kafkaAddrs != "kafka1:9092,kafka2:9092" || kafkaTopic != "events" {
		t.Errorf("unexpected kafka config")
	}
	if accessSecret != "accesssecret" || accessExp != 5*time.Minute {
		t.Errorf("unexpected access token config")
	}
	if refreshSecret != "refreshsecret" || refreshExp != 24*time.Hour {
		t.Errorf("unexpected refresh token config")
	}
}

func TestParseConfig_BadTokenLifetime(t *testing.T) {
	resetEnv()
	os.Setenv("JWT_ACCESS_EXP", "900") // bare number, not a duration string

	_, _, _,
		_, _, _, _, _,
		_, _,
		_, _, _, _,
		_, _, _,
		_, _, _, _, _,
		_, _,
		_, _, _, _,
		err := parseConfig("nonexistent.env")

	if err == nil {
		t.Fatal("expected error for non-duration token lifetime")
	}
}

// ------------------ Full integration test ------------------
func TestRun_Success(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()

	// ------------------ Postgres container ------------------
	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:15",
		Env:          map[string]string{"POSTGRES_PASSWORD": "password", "POSTGRES_DB": "testdb", "POSTGRES_USER": "user"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp"),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{ContainerRequest: pgReq, Started: true})
	if err != nil {
		t.Fatal(err)
	}
	defer pgContainer.Terminate(ctx)

	pgHost, _ := pgContainer.Host(ctx)
	pgPort, _ := pgContainer.MappedPort(ctx, "5432")

	// ------------------ Redis container ------------------
	redisReq := testcontainers.ContainerRequest{
		Image:        "redis:7",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	}
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{ContainerRequest: redisReq, Started: true})
	if err != nil {
		t.Fatal(err)
	}
	defer redisContainer.Terminate(ctx)

	redisHost, _ := redisContainer.Host(ctx)
	redisPort, _ := redisContainer.MappedPort(ctx, "6379")

	// ------------------ MinIO container ------------------
	minioReq := testcontainers.ContainerRequest{
		Image:        "minio/minio:latest",
		Env:          map[string]string{"MINIO_ROOT_USER": "minioadmin", "MINIO_ROOT_PASSWORD": "minioadmin"},
		Cmd:          []string{"server", "/data"},
		ExposedPorts: []string{"9000/tcp"},
		WaitingFor:   wait.ForListeningPort("9000/tcp"),
	}
	minioContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{ContainerRequest: minioReq, Started: true})
	if err != nil {
		t.Fatal(err)
	}
	defer minioContainer.Terminate(ctx)

	minioHost, _ := minioContainer.Host(ctx)
	minioPort, _ := minioContainer.MappedPort(ctx, "9000")

	// ------------------ Run ------------------
	testCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(testCtx,
			"127.0.0.1", "8086", "debug",
			pgHost, pgPort.Int(), "user", "password", "testdb",
			5, 2,
			redisHost, redisPort.Int(), 0, "", 10, 2, 3300,
			"http://"+minioHost+":"+minioPort.Port(), "us-east-1", "images", "minioadmin", "minioadmin",
			"", "image-events", // Kafka disabled
			"accesssecret", 15*time.Minute, "refreshsecret", 168*time.Hour,
		)
	}()

	select {
	case <-time.After(11 * time.Second):
		t.Fatal("test timed out")
	case err := <-errCh:
		if err != nil {
			t.Fatalf("expected run to succeed, got error: %v", err)
		}
	}
}
