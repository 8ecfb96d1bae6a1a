package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/roadmapper/internal/db"
	"github.com/alexanderramin/roadmapper/internal/intelligence"
	"github.com/alexanderramin/roadmapper/internal/llm"
	"github.com/alexanderramin/roadmapper/internal/roadmap"
	"github.com/alexanderramin/roadmapper/internal/testutil"
)

// fakeRoadmaps records its inputs and returns canned results.
type fakeRoadmaps struct {
	result *intelligence.Result
	err    error

	goal, resume, message string
	current              *roadmap.Graph
	requestID            string
}

func (f *fakeRoadmaps) Generate(ctx context.Context, goal, resume string) (*intelligence.Result, error) {
	f.goal, f.resume, f.requestID = goal, resume, llm.RequestIDFromContext(ctx)
	return f.result, f.err
}

func (f *fakeRoadmaps) Refine(ctx context.Context, message string, current *roadmap.Graph) (*intelligence.Result, error) {
	f.message, f.current, f.requestID = message, current, llm.RequestIDFromContext(ctx)
	return f.result, f.err
}

func (f *fakeRoadmaps) Continue(ctx context.Context, current *roadmap.Graph) (*intelligence.Result, error) {
	f.current, f.requestID = current, llm.RequestIDFromContext(ctx)
	return f.result, f.err
}

func twoPhaseGraph() roadmap.Graph {
	return roadmap.ToGraph(roadmap.Document{Roadmap: []roadmap.Phase{
		{Title: "Phase 1: Foundations", Topics: []roadmap.Topic{{Name: "Python Basics", Difficulty: roadmap.Beginner}}},
		{Title: "Phase 2: Data", Topics: []roadmap.Topic{{Name: "Pandas"}}},
	}})
}

func testApp(t *testing.T, svc *fakeRoadmaps) *App {
	t.Helper()
	return &App{
		Roadmaps: svc,
		Config:   DefaultConfig(),
		Now:      func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	}
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func saveGraph(t *testing.T, g roadmap.Graph) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roadmap.json")
	require.NoError(t, writeGraphFile(path, g))
	return path
}

func TestRootCmd_ListsCommands(t *testing.T) {
	out, err := executeCmd(t, testApp(t, &fakeRoadmaps{}), "--help")
	require.NoError(t, err)
	for _, name := range []string{"serve", "generate", "refine", "continue", "show", "traces"} {
		assert.Contains(t, out, name)
	}
}

func TestGenerateCmd_PrintsTreeAndSaves(t *testing.T) {
	svc := &fakeRoadmaps{result: &intelligence.Result{
		Graph: twoPhaseGraph(), Message: "Generated initial phase(s).", Phases: 2,
	}}
	out := filepath.Join(t.TempDir(), "out.json")

	output, err := executeCmd(t, testApp(t, svc), "generate", "I want to learn", "data science", "--out", out)

	require.NoError(t, err)
	assert.Equal(t, "I want to learn data science", svc.goal)
	assert.Empty(t, svc.resume)
	assert.NotEmpty(t, svc.requestID)
	assert.Contains(t, output, "Phase 1: Foundations")
	assert.Contains(t, output, "Python Basics")
	assert.Contains(t, output, "IN PROGRESS")
	assert.Contains(t, output, "Saved to "+out)

	saved, err := readGraphFile(out)
	require.NoError(t, err)
	assert.Len(t, saved.Nodes, 4)
	assert.Equal(t, []string{"Python Basics", "Pandas"}, saved.TopicLabels())
}

func TestGenerateCmd_JSON(t *testing.T) {
	svc := &fakeRoadmaps{result: &intelligence.Result{
		Graph: twoPhaseGraph(), Message: "Successfully generated the complete roadmap.", IsComplete: true,
	}}

	output, err := executeCmd(t, testApp(t, svc), "generate", "Become a backend engineer", "--json")
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &body))
	assert.Equal(t, true, body["is_complete"])
	assert.Contains(t, body, "roadmap")
}

func TestGenerateCmd_RequiresGoalWhenNotInteractive(t *testing.T) {
	_, err := executeCmd(t, testApp(t, &fakeRoadmaps{}), "generate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "learning goal is required")
}

func TestGenerateCmd_UnsupportedResume(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain"), 0o644))
	svc := &fakeRoadmaps{}

	_, err := executeCmd(t, testApp(t, svc), "generate", "Learn Go for the cloud", "--resume", path)

	assert.Error(t, err)
	assert.Empty(t, svc.goal, "service should not be called")
}

func TestGenerateCmd_ServiceError(t *testing.T) {
	svc := &fakeRoadmaps{err: &intelligence.ValidationError{Message: "Your request is too short."}}

	_, err := executeCmd(t, testApp(t, svc), "generate", "go")

	assert.ErrorIs(t, err, intelligence.ErrInvalidPrompt)
}

func TestRefineCmd_UpdatesFileInPlace(t *testing.T) {
	path := saveGraph(t, twoPhaseGraph())
	refined := roadmap.ToGraph(roadmap.Document{Roadmap: []roadmap.Phase{
		{Title: "Phase 1", Topics: []roadmap.Topic{{Name: "Rust"}}},
	}})
	svc := &fakeRoadmaps{result: &intelligence.Result{Graph: refined, Message: "OK, I've added 1 topic and removed 2 topics.", IsComplete: true}}

	output, err := executeCmd(t, testApp(t, svc), "refine", path, "Replace", "everything", "with", "Rust")

	require.NoError(t, err)
	assert.Equal(t, "Replace everything with Rust", svc.message)
	require.NotNil(t, svc.current)
	assert.Equal(t, []string{"Python Basics", "Pandas"}, svc.current.TopicLabels())
	assert.Contains(t, output, "COMPLETE")

	saved, err := readGraphFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rust"}, saved.TopicLabels())
}

func TestRefineCmd_NeedsMessage(t *testing.T) {
	path := saveGraph(t, twoPhaseGraph())
	_, err := executeCmd(t, testApp(t, &fakeRoadmaps{}), "refine", path)
	assert.Error(t, err)
}

func TestContinueCmd_UnchangedLeavesFile(t *testing.T) {
	path := saveGraph(t, twoPhaseGraph())
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	svc := &fakeRoadmaps{result: &intelligence.Result{
		Graph: twoPhaseGraph(), Message: "Roadmap generation is complete!", IsComplete: true, Unchanged: true,
	}}
	output, err := executeCmd(t, testApp(t, svc), "continue", path)

	require.NoError(t, err)
	assert.Contains(t, output, "Roadmap generation is complete!")
	assert.NotContains(t, output, "Saved to")
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestContinueCmd_EmptyGraphIsMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"nodes": [], "edges": []}`), 0o644))

	_, err := executeCmd(t, testApp(t, &fakeRoadmaps{}), "continue", path)

	assert.ErrorIs(t, err, intelligence.ErrMissingRoadmap)
}

func TestShowCmd_AcceptsWrappedResponse(t *testing.T) {
	data, err := json.Marshal(map[string]any{"roadmap": twoPhaseGraph(), "message": "x", "is_complete": false})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "response.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	output, err := executeCmd(t, testApp(t, &fakeRoadmaps{}), "show", path, "--check")

	require.NoError(t, err)
	assert.Contains(t, output, "Phase 2: Data")
	assert.Contains(t, output, "graph is consistent")
}

func TestShowCmd_CheckReportsProblems(t *testing.T) {
	g := twoPhaseGraph()
	g.Edges = append(g.Edges, roadmap.Edge{ID: "dangling", Source: "phase_0", Target: "nowhere"})
	path := saveGraph(t, g)

	output, err := executeCmd(t, testApp(t, &fakeRoadmaps{}), "show", path, "--check")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "structural problem")
	assert.Contains(t, output, "nowhere")
}

func TestTracesCmd_Disabled(t *testing.T) {
	_, err := executeCmd(t, testApp(t, &fakeRoadmaps{}), "traces")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ROADMAPPER_TRACE_DB")
}

func TestTracesCmd_ListsAndPrunes(t *testing.T) {
	store, _ := testutil.NewTestTraceStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Record(ctx, db.CallTrace{RequestID: "old-request", Backend: "ollama", Attempt: 1, CreatedAt: now.AddDate(0, -2, 0)}))
	require.NoError(t, store.Record(ctx, db.CallTrace{RequestID: "new-request", Backend: "ollama", Attempt: 1, Success: true, CreatedAt: now.Add(-time.Minute)}))

	app := testApp(t, &fakeRoadmaps{})
	app.Traces = store

	output, err := executeCmd(t, app, "traces", "--prune", "720h")

	require.NoError(t, err)
	assert.Contains(t, output, "Pruned 1 request(s)")
	assert.Contains(t, output, "new-requ")
	assert.NotContains(t, output, "old-requ")
}

// lazyApp has no roadmap service until OpenRoadmaps runs, and counts the opens.
func lazyApp(t *testing.T, svc *fakeRoadmaps, openErr error) (*App, *int) {
	t.Helper()
	opens := 0
	app := testApp(t, nil)
	app.Roadmaps = nil
	app.OpenRoadmaps = func(context.Context) (intelligence.RoadmapService, error) {
		opens++
		if openErr != nil {
			return nil, openErr
		}
		return svc, nil
	}
	return app, &opens
}

func TestShowAndTraces_DoNotOpenBackend(t *testing.T) {
	app, opens := lazyApp(t, nil, errors.New("ROADMAPPER_SQL_DSN is required"))
	store, _ := testutil.NewTestTraceStore(t)
	app.Traces = store

	_, err := executeCmd(t, app, "show", saveGraph(t, twoPhaseGraph()))
	require.NoError(t, err)
	_, err = executeCmd(t, app, "traces")
	require.NoError(t, err)

	assert.Equal(t, 0, *opens)
}

func TestGenerateCmd_OpensBackendOnce(t *testing.T) {
	svc := &fakeRoadmaps{result: &intelligence.Result{Graph: twoPhaseGraph(), Message: "Generated initial phase(s)."}}
	app, opens := lazyApp(t, svc, nil)

	_, err := executeCmd(t, app, "generate", "Become a backend engineer")
	require.NoError(t, err)
	_, err = executeCmd(t, app, "generate", "Become a data engineer")
	require.NoError(t, err)

	assert.Equal(t, 1, *opens)
	assert.Equal(t, "Become a data engineer", svc.goal)
}

func TestRoadmapCmds_ReportBackendOpenError(t *testing.T) {
	path := saveGraph(t, twoPhaseGraph())
	for _, args := range [][]string{
		{"generate", "Become a backend engineer"},
		{"refine", path, "Add a phase on testing"},
		{"continue", path},
	} {
		t.Run(args[0], func(t *testing.T) {
			app, _ := lazyApp(t, nil, errors.New("ROADMAPPER_SQL_DSN is required"))

			_, err := executeCmd(t, app, args...)

			require.Error(t, err)
			assert.Contains(t, err.Error(), "ROADMAPPER_SQL_DSN")
		})
	}
}

func TestServeCmd_UsesConfiguredAddr(t *testing.T) {
	var got string
	app := testApp(t, &fakeRoadmaps{})
	app.Config.Addr = ":7070"
	app.Serve = func(_ context.Context, addr string) error {
		got = addr
		return nil
	}

	_, err := executeCmd(t, app, "serve")
	require.NoError(t, err)
	assert.Equal(t, ":7070", got)

	_, err = executeCmd(t, app, "serve", "--addr", "127.0.0.1:9000")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", got)
}
