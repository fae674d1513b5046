//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/meigma/jsystem"
)

var (
	registryOnce sync.Once
	registryAddr string
	registryErr  error
)

// getRegistry returns the shared registry address, starting the container if needed.
func getRegistry(tb testing.TB) string {
	tb.Helper()

	if os.Getenv("SKIP_DOCKER_TESTS") == "1" {
		tb.Skip("SKIP_DOCKER_TESTS is set")
	}

	registryOnce.Do(func() {
		registryAddr, registryErr = startRegistryContainer(context.Background())
	})
	if registryErr != nil {
		tb.Fatalf("start registry container: %v", registryErr)
	}
	return registryAddr
}

// startRegistryContainer starts a registry:2 container and returns the host:port address.
func startRegistryContainer(ctx context.Context) (string, error) {
	req := testcontainers.ContainerRequest{
		Image:        "registry:2",
		ExposedPorts: []string{"5000/tcp"},
		WaitingFor:   wait.ForHTTP("/v2/").WithPort("5000/tcp").WithStatusCodeMatcher(isOKStatus),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start registry container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve registry host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5000/tcp")
	if err != nil {
		return "", fmt.Errorf("resolve registry port: %w", err)
	}
	return fmt.Sprintf("%s:%s", host, port.Port()), nil
}

func isOKStatus(status int) bool {
	return status >= 200 && status < 300
}

// newTestClient creates a client configured for the local test registry.
func newTestClient(tb testing.TB, opts ...jsystem.Option) *jsystem.Client {
	tb.Helper()

	client, err := jsystem.NewClient(append([]jsystem.Option{jsystem.WithPlainHTTP(true)}, opts...)...)
	require.NoError(tb, err, "create test client")
	return client
}

// testRef generates a unique reference for a test to avoid collisions.
func testRef(registryAddr, name, tag string) string {
	return fmt.Sprintf("%s/test/%s:%s", registryAddr, name, tag)
}

// createTestFiles writes test files to a directory.
func createTestFiles(tb testing.TB, dir string, files map[string][]byte) {
	tb.Helper()
	for path, content := range files {
		fullPath := filepath.Join(dir, path)
		require.NoError(tb, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(tb, os.WriteFile(fullPath, content, 0o644))
	}
}

// assertDirContents verifies that a directory contains the expected files.
func assertDirContents(tb testing.TB, dir string, expected map[string][]byte) {
	tb.Helper()
	for path, want := range expected {
		got, err := os.ReadFile(filepath.Join(dir, path))
		require.NoError(tb, err, "ReadFile(%q)", path)
		require.Equal(tb, want, got, "content mismatch for %q", path)
	}
}

func makeCompressibleContent(size int) []byte {
	pattern := []byte("SceneObjInfo LightInfo MapPartsInfo ")
	out := make([]byte, 0, size)
	for len(out) < size {
		out = append(out, pattern...)
	}
	return out[:size]
}

// stageFiles is a small stage-like tree.
var stageFiles = map[string][]byte{
	"camera.bcam":             []byte("camera"),
	"jmp/placement/ObjInfo":   makeCompressibleContent(16 * 1024),
	"jmp/placement/LightInfo": makeCompressibleContent(2 * 1024),
	"jmp/path/CommonPathInfo": []byte{0, 0, 0, 0},
}
