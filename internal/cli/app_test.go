package cli

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/formflow/internal/testutils"
	"github.com/aretw0/formflow/pkg/persistence/middleware"
)

func yamlConfig(t *testing.T) Config {
	t.Helper()
	dir := testutils.WriteFiles(t, map[string]string{"survey.yaml": testutils.SurveyYAML})
	return Config{Dir: dir, Forms: FormsYAML}
}

func build(t *testing.T, cfg Config) *App {
	t.Helper()
	app, err := Build(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestBuild_ResumeAcrossRuns(t *testing.T) {
	cfg := yamlConfig(t)
	cfg.SQLitePath = filepath.Join(t.TempDir(), "data", "formflow.db")
	ctx := context.Background()

	app, err := Build(cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, app.Editor)

	var out bytes.Buffer
	state, err := RunSession(ctx, app, RunOptions{
		FormID: "survey", SessionID: "s1", Headless: true,
		Input: strings.NewReader("Ada\n30\n"), Output: &out,
	})
	require.NoError(t, err)
	assert.Equal(t, "3", state.CurrentNodeID)
	assert.False(t, state.Completed())
	assert.Contains(t, out.String(), "How old are you, Ada?")
	require.NoError(t, app.Close())

	app = build(t, cfg)
	out.Reset()
	state, err = RunSession(ctx, app, RunOptions{
		FormID: "survey", SessionID: "s1",
		Input: strings.NewReader("yes\n"), Output: &out,
	})
	require.NoError(t, err)
	assert.True(t, state.Completed())
	assert.Contains(t, out.String(), "Resuming at question '3'.")
	assert.Contains(t, out.String(), "Thank you for completing the form!")

	responses, err := app.Responses.ListResponses(ctx, "survey")
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Equal(t, "Ada", responses[0].Answers["name"])
	assert.Equal(t, true, responses[0].Answers["drives"])
}

func TestBuild_FreshDiscardsSession(t *testing.T) {
	app := build(t, yamlConfig(t))
	ctx := context.Background()

	_, err := RunSession(ctx, app, RunOptions{
		FormID: "survey", SessionID: "s1", Headless: true,
		Input: strings.NewReader("Ada\n"), Output: &bytes.Buffer{},
	})
	require.NoError(t, err)

	state, err := RunSession(ctx, app, RunOptions{
		FormID: "survey", SessionID: "s1", Headless: true, Fresh: true,
		Input: strings.NewReader(""), Output: &bytes.Buffer{},
	})
	require.NoError(t, err)
	assert.Equal(t, "1", state.CurrentNodeID)
	assert.Empty(t, state.Answers)
}

func TestRunSession_Errors(t *testing.T) {
	app := build(t, yamlConfig(t))
	ctx := context.Background()

	_, err := RunSession(ctx, app, RunOptions{FormID: "ghost", Input: strings.NewReader(""), Output: &bytes.Buffer{}})
	assert.Error(t, err)

	_, err = RunSession(ctx, app, RunOptions{
		FormID: "survey", SessionID: "s1", Headless: true,
		Input: strings.NewReader(""), Output: &bytes.Buffer{},
	})
	require.NoError(t, err)
	require.NoError(t, app.Editor.Delete(ctx, "survey"))
	_, err = app.Editor.Create(ctx, "other")
	require.NoError(t, err)

	_, err = RunSession(ctx, app, RunOptions{
		FormID: "other", SessionID: "s1", Headless: true,
		Input: strings.NewReader(""), Output: &bytes.Buffer{},
	})
	assert.ErrorContains(t, err, "belongs to form survey")
}

func TestRunSession_Exit(t *testing.T) {
	dir := testutils.WriteFiles(t, map[string]string{"survey.md": testutils.SurveyMarkdown})
	app := build(t, Config{Dir: dir})
	assert.Nil(t, app.Editor)

	var out bytes.Buffer
	state, err := RunSession(context.Background(), app, RunOptions{
		FormID: "survey", Input: strings.NewReader("exit\n"), Output: &out,
	})
	require.NoError(t, err)
	assert.Equal(t, "1", state.CurrentNodeID)
	assert.Contains(t, out.String(), "Stopped at question '1'.")
}

func TestBuild_RedisEncryptionAndPII(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := yamlConfig(t)
	cfg.RedisAddr = mr.Addr()
	cfg.EncryptionKey = bytes.Repeat([]byte{7}, 32)
	cfg.PIIPatterns = []string{"^name$"}
	app := build(t, cfg)
	ctx := context.Background()

	state, err := RunSession(ctx, app, RunOptions{
		FormID: "survey", SessionID: "s1", Headless: true,
		Input: strings.NewReader("Ada\n12\n"), Output: &bytes.Buffer{},
	})
	require.NoError(t, err)
	assert.True(t, state.Completed())

	ids, err := app.Sessions.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "s1")

	raw, err := mr.Get("formflow:session:s1")
	require.NoError(t, err)
	assert.NotContains(t, raw, "Ada")

	loaded, err := app.Sessions.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", loaded.Answers["name"])

	responses, err := app.Responses.ListResponses(ctx, "survey")
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Equal(t, middleware.Mask, responses[0].Answers["name"])
}

func TestBuild_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Build(Config{Dir: dir, Forms: "csv"}, nil)
	assert.ErrorContains(t, err, "unknown form source")

	_, err = Build(Config{Dir: dir, Forms: FormsSQLite}, nil)
	assert.ErrorContains(t, err, "needs --sqlite")

	t.Setenv("OPENAI_API_KEY", "")
	_, err = Build(Config{Dir: dir, Forms: FormsYAML, Phrase: true}, nil)
	assert.ErrorContains(t, err, "OPENAI_API_KEY")
}

func TestOpenForms(t *testing.T) {
	cfg := yamlConfig(t)
	forms, closeForms, err := OpenForms(cfg)
	require.NoError(t, err)
	defer closeForms()

	ids, err := forms.ListForms(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"survey"}, ids)

	_, _, err = OpenForms(Config{Forms: FormsSQLite})
	assert.Error(t, err)
}

func TestConfig_LoadEnv(t *testing.T) {
	t.Setenv("FORMFLOW_MAX_INPUT_SIZE", "500")
	t.Setenv("FORMFLOW_ENCRYPTION_KEY", strings.Repeat("ab", 32))
	t.Setenv("FORMFLOW_ENCRYPTION_FALLBACK_KEYS", strings.Repeat("cd", 32)+", "+strings.Repeat("ef", 32))
	t.Setenv("FORMFLOW_PII_KEYS", "email, ^phone")

	var cfg Config
	require.NoError(t, cfg.LoadEnv())
	assert.Equal(t, 500, cfg.MaxAnswerLength)
	assert.Len(t, cfg.EncryptionKey, 32)
	assert.Len(t, cfg.FallbackKeys, 2)
	assert.Equal(t, []string{"email", "^phone"}, cfg.PIIPatterns)

	t.Setenv("FORMFLOW_ENCRYPTION_KEY", "abcd")
	assert.ErrorContains(t, (&Config{}).LoadEnv(), "32 bytes")

	t.Setenv("FORMFLOW_ENCRYPTION_KEY", "")
	t.Setenv("FORMFLOW_MAX_INPUT_SIZE", "lots")
	assert.ErrorContains(t, (&Config{}).LoadEnv(), "FORMFLOW_MAX_INPUT_SIZE")
}

func TestServe(t *testing.T) {
	app := build(t, yamlConfig(t))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, app, ln) }()

	url := "http://" + ln.Addr().String()
	require.Eventually(t, func() bool {
		resp, err := http.Get(url + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	resp, err := http.Get(url + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("server did not stop")
	}
}
