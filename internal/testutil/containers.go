package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Default images, overridable through the environment of the caller
const (
	DefaultPostgresImage = "postgres:17-alpine"
	DefaultRedisImage    = "redis:7-alpine"
)

// Endpoint is a started container and the host:port it is reachable on
type Endpoint struct {
	Container testcontainers.Container
	Host      string
	Port      string
}

// Address returns host:port
func (e *Endpoint) Address() string {
	return fmt.Sprintf("%s:%s", e.Host, e.Port)
}

// Terminate stops and removes the container
func (e *Endpoint) Terminate(ctx context.Context) error {
	if e == nil || e.Container == nil {
		return nil
	}
	return e.Container.Terminate(ctx)
}

// PostgresCredentials are used for the started database
type PostgresCredentials struct {
	Database string
	User     string
	Password string
}

// StartPostgres starts a Postgres container and waits until it accepts connections
func StartPostgres(ctx context.Context, image string, creds PostgresCredentials) (*Endpoint, error) {
	if image == "" {
		image = DefaultPostgresImage
	}
	return start(ctx, testcontainers.ContainerRequest{
		Image:        image,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       creds.Database,
			"POSTGRES_USER":     creds.User,
			"POSTGRES_PASSWORD": creds.Password,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}, nat.Port("5432/tcp"))
}

// StartRedis starts a Redis container
func StartRedis(ctx context.Context, image string) (*Endpoint, error) {
	if image == "" {
		image = DefaultRedisImage
	}
	return start(ctx, testcontainers.ContainerRequest{
		Image:        image,
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}, nat.Port("6379/tcp"))
}

func start(ctx context.Context, req testcontainers.ContainerRequest, port nat.Port) (*Endpoint, error) {
	req.HostConfigModifier = func(hc *container.HostConfig) {
		hc.AutoRemove = true
	}

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", req.Image, err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	mapped, err := c.MappedPort(ctx, port)
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	return &Endpoint{Container: c, Host: host, Port: mapped.Port()}, nil
}
