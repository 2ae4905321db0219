package testhelper

import (
	"context"
	"fmt"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// NewPostgresDSN starts a disposable Postgres container and returns a DSN
// for it. The test is skipped when Docker is unavailable.
func NewPostgresDSN(t *testing.T) string {
	t.Helper()

	container := NewPostgresContainer(t)

	endpoint, err := container.PortEndpoint(context.Background(), nat.Port("5432/tcp"), "")
	if err != nil {
		t.Skipf("failed to get Postgres container endpoint: %v", err)
	}

	return fmt.Sprintf("postgres://postgres:postgres@%s/postgres?sslmode=disable", endpoint)
}

func NewPostgresContainer(t *testing.T) testcontainers.Container {
	t.Helper()

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_PASSWORD": "postgres",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}
	postgresC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("failed to create Postgres container: %v", err)
	}

	t.Cleanup(func() {
		if err := postgresC.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate Postgres container: %v", err)
		}
	})

	return postgresC
}
