package e2e_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nohumanman/descenders-modding/internal/factory"
	"github.com/nohumanman/descenders-modding/internal/model"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(projectRoot, "bin", "splitctl-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/splitctl")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	// Create temp token file
	tokenFile := filepath.Join(t.TempDir(), "token")

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  tokenFile,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *cliRunner) runWithToken(token string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token", token,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	app      *factory.TestApp
	server   *http.Server
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	app := factory.NewTestApp()

	server := &http.Server{
		Addr:    addr,
		Handler: app.Handler(false),
	}

	// Start server
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		app:    app,
		server: server,
		addr:   serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// gameClient is a websocket connection speaking the game protocol
type gameClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func joinGame(t *testing.T, ts *testServer, id, name string) *gameClient {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(ts.addr, "http") + "/ws/game"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	gc := &gameClient{t: t, conn: conn}
	gc.send("HELLO|" + id + "|" + name + "|0.2.1")
	require.Equal(t, "READY", gc.read())
	return gc
}

func (g *gameClient) send(frame string) {
	require.NoError(g.t, g.conn.WriteMessage(websocket.TextMessage, []byte(frame)))
}

func (g *gameClient) read() string {
	_ = g.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := g.conn.ReadMessage()
	require.NoError(g.t, err)
	return string(data)
}

// Response types for JSON parsing
type playerResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Spectating string `json:"spectating"`
	Monitored  bool   `json:"monitored"`
	BikeType   string `json:"bike_type"`
}

type playersResponse struct {
	Players []playerResponse `json:"players"`
}

type timeResponse struct {
	ID        string  `json:"id"`
	TrailName string  `json:"trail_name"`
	TotalTime float64 `json:"total_time"`
	Verified  bool    `json:"verified"`
	Ignored   bool    `json:"ignored"`
}

type leaderboardResponse struct {
	Trail string         `json:"trail"`
	Times []timeResponse `json:"times"`
}

type timesResponse struct {
	Times []timeResponse `json:"times"`
}

type trailsResponse struct {
	Trails []string `json:"trails"`
}

type worldsResponse struct {
	Worlds []string `json:"worlds"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type permissionResponse struct {
	Permission string `json:"permission"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_PlayersList(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	joinGame(t, ts, "p1", "Alice")
	joinGame(t, ts, "p2", "Bob")

	output, err := cli.run("players", "list")
	require.NoError(t, err, "output: %s", output)

	var resp playersResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	require.Len(t, resp.Players, 2)
	assert.Equal(t, "Alice", resp.Players[0].Name)
	assert.Equal(t, "Bob", resp.Players[1].Name)

	_, err = cli.run("players", "get", "ghost")
	assert.Error(t, err)
}

func TestCLI_TokenAndPermission(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	require.NoError(t, ts.app.Authorize(context.Background(), "tok-op", "op1"))
	cli := newCLIRunner(t, ts.addr)

	// No token yet
	output, err := cli.run("auth", "permission")
	require.NoError(t, err, "output: %s", output)
	var perm permissionResponse
	require.NoError(t, json.Unmarshal([]byte(output), &perm))
	assert.Equal(t, "UNKNOWN", perm.Permission)

	// Save a token, then it is picked up from the token file
	output, err = cli.run("auth", "set-token", "tok-op")
	require.NoError(t, err, "output: %s", output)
	var msg messageResponse
	require.NoError(t, json.Unmarshal([]byte(output), &msg))
	assert.Equal(t, "Token saved", msg.Message)

	output, err = cli.run("auth", "permission")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &perm))
	assert.Equal(t, "AUTHORIZED", perm.Permission)

	// Logging out forgets it
	output, err = cli.run("auth", "logout")
	require.NoError(t, err, "output: %s", output)
	output, err = cli.run("auth", "permission")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &perm))
	assert.Equal(t, "UNKNOWN", perm.Permission)
}

func TestCLI_SpectateFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	require.NoError(t, ts.app.Authorize(context.Background(), "tok-op", "op1"))
	ts.app.Identities.Set("tok-viewer", "viewer1")
	cli := newCLIRunner(t, ts.addr)

	joinGame(t, ts, "p1", "Alice")
	joinGame(t, ts, "p2", "Bob")

	// A non allow-listed identity is refused
	output, err := cli.runWithToken("tok-viewer", "spectate", "--observer", "p1", "--target", "p2")
	assert.Error(t, err)
	assert.Contains(t, output, "FORBIDDEN")

	// Nobody monitored yet
	_, err = cli.run("monitored")
	assert.Error(t, err)

	output, err = cli.runWithToken("tok-op", "spectate",
		"--observer", "p1", "--observer-name", "Alice", "--target", "p2")
	require.NoError(t, err, "output: %s", output)

	var monitored playerResponse
	require.NoError(t, json.Unmarshal([]byte(output), &monitored))
	assert.Equal(t, "p2", monitored.ID)
	assert.True(t, monitored.Monitored)

	output, err = cli.run("spectated")
	require.NoError(t, err, "output: %s", output)
	var spectated playerResponse
	require.NoError(t, json.Unmarshal([]byte(output), &spectated))
	assert.Equal(t, "Bob", spectated.Name)

	output, err = cli.run("players", "get", "p1")
	require.NoError(t, err, "output: %s", output)
	var observer playerResponse
	require.NoError(t, json.Unmarshal([]byte(output), &observer))
	assert.Equal(t, "Bob", observer.Spectating)
}

func TestCLI_CommandReachesGameClient(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	require.NoError(t, ts.app.Authorize(context.Background(), "tok-op", "op1"))
	cli := newCLIRunner(t, ts.addr)

	gc := joinGame(t, ts, "p1", "Alice")

	output, err := cli.runWithToken("tok-op", "command", "p1", "SET_BIKE|2")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, "SET_BIKE|2", gc.read())

	output, err = cli.run("players", "get", "p1")
	require.NoError(t, err, "output: %s", output)
	var player playerResponse
	require.NoError(t, json.Unmarshal([]byte(output), &player))
	assert.Equal(t, string(model.BikeHardtail), player.BikeType)
}

func TestCLI_ModerateTime(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	require.NoError(t, ts.app.Authorize(context.Background(), "tok-op", "op1"))
	ts.app.MockRandom.QueueString("run1")
	cli := newCLIRunner(t, ts.addr)

	gc := joinGame(t, ts, "p1", "Alice")
	gc.send("TRAIL_START|Igloo Bobsleigh|12.5")
	gc.send("TRAIL_END|Igloo Bobsleigh|61.25")

	// The run is stored asynchronously with respect to the websocket write
	var rec timeResponse
	require.Eventually(t, func() bool {
		output, err := cli.run("time", "get", "run1")
		if err != nil {
			return false
		}
		return json.Unmarshal([]byte(output), &rec) == nil
	}, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, "Igloo Bobsleigh", rec.TrailName)
	assert.InDelta(t, 61.25, rec.TotalTime, 0.0001)

	output, err := cli.run("time", "verify", "run1")
	assert.Error(t, err, "verify without a token must fail: %s", output)

	output, err = cli.runWithToken("tok-op", "time", "verify", "run1")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &rec))
	assert.True(t, rec.Verified)
	assert.Len(t, ts.app.Announced.Records(), 1)

	output, err = cli.runWithToken("tok-op", "time", "ignore", "run1")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &rec))
	assert.True(t, rec.Ignored)

	output, err = cli.runWithToken("tok-op", "time", "ignore", "run1", "--restore")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &rec))
	assert.False(t, rec.Ignored)
}

func TestCLI_LeaderboardAndListings(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	require.NoError(t, ts.app.Authorize(context.Background(), "tok-op", "op1"))
	cli := newCLIRunner(t, ts.addr)

	for _, rec := range []*model.TimeRecord{
		{ID: "a1", PlayerID: "alice", PlayerName: "Alice", TrailName: "Igloo Bobsleigh", WorldName: "Glaciers", TotalTime: 60.5},
		{ID: "b1", PlayerID: "bob", PlayerName: "Bob", TrailName: "Igloo Bobsleigh", WorldName: "Glaciers", TotalTime: 63.0},
		{ID: "c1", PlayerID: "carol", PlayerName: "Carol", TrailName: "Ridge Run", WorldName: "Highlands", TotalTime: 41.0},
	} {
		_, err := ts.app.Records.Submit(context.Background(), rec)
		require.NoError(t, err)
		ts.app.MockClock.Advance(time.Minute)
	}

	output, err := cli.run("leaderboard", "Igloo Bobsleigh")
	require.NoError(t, err, "output: %s", output)
	var board leaderboardResponse
	require.NoError(t, json.Unmarshal([]byte(output), &board))
	require.Len(t, board.Times, 2)
	assert.Equal(t, "a1", board.Times[0].ID)

	output, err = cli.runWithToken("tok-op", "time", "ignore", "a1")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("leaderboard", "Igloo Bobsleigh", "--limit", "5")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &board))
	require.Len(t, board.Times, 1)
	assert.Equal(t, "b1", board.Times[0].ID)

	output, err = cli.run("time", "list", "--limit", "2")
	require.NoError(t, err, "output: %s", output)
	var times timesResponse
	require.NoError(t, json.Unmarshal([]byte(output), &times))
	require.Len(t, times.Times, 2)
	assert.Equal(t, "c1", times.Times[0].ID)

	output, err = cli.run("trails")
	require.NoError(t, err, "output: %s", output)
	var trails trailsResponse
	require.NoError(t, json.Unmarshal([]byte(output), &trails))
	assert.Equal(t, []string{"Igloo Bobsleigh", "Ridge Run"}, trails.Trails)

	output, err = cli.run("worlds")
	require.NoError(t, err, "output: %s", output)
	var worlds worldsResponse
	require.NoError(t, json.Unmarshal([]byte(output), &worlds))
	assert.Equal(t, []string{"Glaciers", "Highlands"}, worlds.Worlds)
}
