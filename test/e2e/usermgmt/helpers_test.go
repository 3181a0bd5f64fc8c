package usermgmt_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/usermgmt/pkg/usersdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Container setup and shared helpers for the user management end-to-end tests.
 */

const (
	testImageName = "usermgmt-test:latest"

	bootstrapToken = "test-bootstrap-token-12345"
	adminUsername  = "platformadmin"
	adminEmail     = "admin@example.com"
	adminPassword  = "Admin123!"

	roleViewer         int64 = 4
	roleContentCreator int64 = 1
)

// TestMain builds the Docker image once before all tests and removes it
// after they complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building User Management Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up User Management Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/usermgmt/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

type serviceContainer struct {
	BaseURL   string
	container testcontainers.Container
}

func baseEnv() map[string]string {
	return map[string]string{
		"BOOTSTRAP_TOKEN":  bootstrapToken,
		"UM_DATABASE_FILE": "/data/usermgmt.db",
		"UM_PEPPER_FILE":   "/data/pepper",
		"UM_JWT_SECRET":    "e2e-secret-that-is-at-least-32-bytes-long",
		"UM_BCRYPT_COST":   "4",
		"ENV":              "test",
		"LOG_LEVEL":        "info",
		"LOG_FORMAT":       "json",
	}
}

// setupContainer starts the service with relaxed rate limits.
func setupContainer(t *testing.T) *serviceContainer {
	t.Helper()

	env := baseEnv()
	// Tests make many rapid requests from one address
	env["RATELIMIT_STRICT_REQUESTS"] = "1000"
	env["RATELIMIT_STRICT_WINDOW_SEC"] = "60"
	env["RATELIMIT_STRICT_BURST"] = "1000"
	env["RATELIMIT_MODERATE_REQUESTS"] = "1000"
	env["RATELIMIT_MODERATE_BURST"] = "1000"

	return startContainer(t, env)
}

// setupContainerWithDefaultRateLimits is for tests that assert limits apply.
func setupContainerWithDefaultRateLimits(t *testing.T) *serviceContainer {
	t.Helper()
	return startContainer(t, baseEnv())
}

func startContainer(t *testing.T, env map[string]string) *serviceContainer {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return &serviceContainer{
		BaseURL:   fmt.Sprintf("http://%s:%s", host, mappedPort.Port()),
		container: container,
	}
}

// mailedCode scrapes the code the log mailer printed for email. The service
// runs without SMTP so codes only appear in its logs.
func (c *serviceContainer) mailedCode(t *testing.T, email string) string {
	t.Helper()

	var code string
	require.Eventually(t, func() bool {
		rc, err := c.container.Logs(context.Background())
		if err != nil {
			return false
		}
		defer rc.Close()

		sc := bufio.NewScanner(rc)
		for sc.Scan() {
			line := sc.Bytes()
			// Docker log frames carry an 8 byte header
			if i := bytes.IndexByte(line, '{'); i >= 0 {
				line = line[i:]
			}
			var entry struct {
				To   string `json:"to"`
				Code string `json:"code"`
			}
			if json.Unmarshal(line, &entry) == nil && entry.To == email && entry.Code != "" {
				code = entry.Code
			}
		}
		return code != ""
	}, 10*time.Second, 200*time.Millisecond, "no code logged for %s", email)

	return code
}

// bootstrapAdmin creates the first platform admin and logs in as it.
func bootstrapAdmin(t *testing.T, client *usersdk.Client) *usersdk.Session {
	t.Helper()

	admin, err := client.Bootstrap(t.Context(), bootstrapToken, usersdk.BootstrapRequest{
		AdminUsername: adminUsername,
		AdminEmail:    adminEmail,
		AdminPassword: adminPassword,
	})
	require.NoError(t, err, "Bootstrap should succeed")
	require.NotZero(t, admin.Admin.ID)
	require.Empty(t, admin.GeneratedPassword)

	return login(t, client, adminUsername, adminPassword)
}

func login(t *testing.T, client *usersdk.Client, identifier, password string) *usersdk.Session {
	t.Helper()

	session, err := client.Login(t.Context(), usersdk.LoginRequest{Username: identifier, Password: password})
	require.NoError(t, err, "Login should succeed")
	require.NotEmpty(t, session.AccessToken())
	return session
}

func registerUser(t *testing.T, client *usersdk.Client, username, email, password string, roleID int64) *usersdk.UserInfo {
	t.Helper()

	user, err := client.Register(t.Context(), usersdk.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
		RoleID:   roleID,
	})
	require.NoError(t, err, "Register should succeed")
	return user
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *usersdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}
