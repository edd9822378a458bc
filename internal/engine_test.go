package internal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gnoswap-labs/dissect/dissect"
	tt "github.com/gnoswap-labs/dissect/internal/types"
)

func testRules() []tt.ConfigRule {
	return []tt.ConfigRule{
		{Name: "access", Pattern: "%{ip} [%{ts}] %{msg}"},
		{Name: "kv", Pattern: "%{key}=%{value}", Prefix: "kv."},
		{Name: "comment", Pattern: "# %{a} %{b}", IgnoreFailure: true},
	}
}

func newTestEngine(t testing.TB) *Engine {
	t.Helper()
	engine, err := NewEngine(zap.NewNop(), " ", testRules())
	require.NoError(t, err)
	return engine
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	rules := engine.Rules()
	require.Len(t, rules, 3)
	assert.Equal(t, "access", rules[0].Name())
	assert.Equal(t, "%{key}=%{value}", rules[1].Pattern().String())
	assert.True(t, rules[2].IgnoreFailure())
}

func TestNewEngine_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		rules []tt.ConfigRule
		want  []string
	}{
		{
			name: "bad pattern",
			rules: []tt.ConfigRule{
				{Name: "broken", Pattern: "%{a"},
			},
			want: []string{`rule "broken"`, "not terminated"},
		},
		{
			name: "duplicate name",
			rules: []tt.ConfigRule{
				{Name: "a", Pattern: "%{a}"},
				{Name: "a", Pattern: "%{b}"},
			},
			want: []string{`rule "a": duplicate rule name`},
		},
		{
			name: "every error is reported",
			rules: []tt.ConfigRule{
				{Pattern: "%{a}%{b}"},
				{Pattern: "%{?x}"},
			},
			want: []string{`rule "rule-1"`, `rule "rule-2"`},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewEngine(nil, "", tt.rules)
			require.Error(t, err)
			for _, want := range tt.want {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestEngine_Dissect(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	tests := []struct {
		name     string
		line     string
		wantRule string
		want     map[string]string
	}{
		{
			name:     "first rule",
			line:     "1.2.3.4 [now] hello world",
			wantRule: "access",
			want:     map[string]string{"ip": "1.2.3.4", "ts": "now", "msg": "hello world"},
		},
		{
			name:     "prefixed fields",
			line:     "a=b",
			wantRule: "kv",
			want:     map[string]string{"kv.key": "a", "kv.value": "b"},
		},
		{
			name:     "configuration order wins",
			line:     "x=1 [t] m",
			wantRule: "access",
			want:     map[string]string{"ip": "x=1", "ts": "t", "msg": "m"},
		},
		{
			name:     "leading delimiter",
			line:     "# x y",
			wantRule: "comment",
			want:     map[string]string{"a": "x", "b": "y"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			record, err := engine.Dissect(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRule, record.Rule)
			assert.Equal(t, tt.want, record.Fields)
		})
	}
}

func TestEngine_DissectFailure(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	t.Run("no candidate", func(t *testing.T) {
		_, err := engine.Dissect("plain text")
		assert.ErrorIs(t, err, ErrNoCandidate)
	})

	t.Run("last match error", func(t *testing.T) {
		record, err := engine.Dissect("x] y [z")
		require.Error(t, err)
		assert.Equal(t, "access", record.Rule)
		assert.True(t, errors.Is(err, dissect.ErrNoMatch))

		var matchErr *dissect.MatchError
		require.True(t, errors.As(err, &matchErr))
		assert.Equal(t, "x] y [z", matchErr.Input)
	})
}

func TestEngine_IgnoreRule(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)
	engine.IgnoreRule("access")

	assert.True(t, engine.ignoredRules["access"])
	_, err := engine.Dissect("1.2.3.4 [now] hello")
	assert.ErrorIs(t, err, ErrNoCandidate)

	record, err := engine.Dissect("a=b")
	require.NoError(t, err)
	assert.Equal(t, "kv", record.Rule)
}

func TestEngine_IgnoreRuleKeepsFailures(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)
	engine.IgnoreRule("comment")

	report, err := engine.RunSource([]byte("# single\n# x y\n"))
	require.NoError(t, err)
	assert.Empty(t, report.Records)
	require.Len(t, report.Failures, 2)
	for i, failure := range report.Failures {
		assert.Equal(t, i+1, failure.Line)
		assert.Equal(t, "no candidate rule", failure.Message)
	}
}

func TestEngine_SkippedDelimiters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		line    string
		want    map[string]string
	}{
		{
			name:    "repeated first delimiter skips the second",
			pattern: "%{a},%{b};%{c}",
			line:    "x,,",
			want:    map[string]string{"a": "x", "b": "", "c": ""},
		},
		{
			name:    "trailing literal skipped by repeats",
			pattern: "%{a} %{b} %{c}]",
			line:    "x   ",
			want:    map[string]string{"a": "x", "b": "", "c": ""},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p, err := dissect.Compile(tc.pattern, "")
			require.NoError(t, err)
			direct, err := p.Parse(tc.line)
			require.NoError(t, err)
			require.Equal(t, tc.want, direct)

			engine, err := NewEngine(nil, "", []tt.ConfigRule{{Name: "r", Pattern: tc.pattern}})
			require.NoError(t, err)
			record, err := engine.Dissect(tc.line)
			require.NoError(t, err)
			assert.Equal(t, "r", record.Rule)
			assert.Equal(t, tc.want, record.Fields)
		})
	}
}

func TestEngine_ReloadLogsCacheStats(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.DebugLevel)
	engine, err := NewEngine(zap.New(core), " ", testRules())
	require.NoError(t, err)
	require.NoError(t, engine.Reload(" ", testRules()))

	entries := logs.FilterMessage("rules loaded").All()
	require.Len(t, entries, 2)
	fields := entries[1].ContextMap()
	assert.EqualValues(t, 3, fields["rules"])
	assert.EqualValues(t, 3, fields["cached_patterns"])
	assert.EqualValues(t, 3, fields["cache_hits"])
	assert.EqualValues(t, 3, fields["cache_misses"])
}

func TestEngine_AppendSeparator(t *testing.T) {
	t.Parallel()
	dash := "-"
	engine, err := NewEngine(nil, " ", []tt.ConfigRule{
		{Name: "default", Pattern: "A %{+a} %{+a}"},
		{Name: "override", Pattern: "B %{+a} %{+a}", AppendSeparator: &dash},
	})
	require.NoError(t, err)

	record, err := engine.Dissect("A x y")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "x y"}, record.Fields)

	record, err = engine.Dissect("B x y")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "x-y"}, record.Fields)
}

func TestEngine_RunSource(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	source := strings.Join([]string{
		"1.2.3.4 [now] hello\r",
		"",
		"a=b",
		"plain text",
		"# single",
		"# x y",
	}, "\n")

	report, err := engine.RunSource([]byte(source))
	require.NoError(t, err)

	require.Len(t, report.Records, 3)
	assert.Equal(t, tt.Record{
		Line:   1,
		Rule:   "access",
		Fields: map[string]string{"ip": "1.2.3.4", "ts": "now", "msg": "hello"},
	}, report.Records[0])
	assert.Equal(t, 3, report.Records[1].Line)
	assert.Equal(t, 6, report.Records[2].Line)

	// "# single" only reaches a rule that ignores failures
	require.Len(t, report.Failures, 1)
	assert.Equal(t, tt.Failure{
		Line:    4,
		Input:   "plain text",
		Message: "no candidate rule",
	}, report.Failures[0])
}

func TestEngine_Run(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte("a=b\nx] y [z\n"), 0o644))

	report, err := engine.Run(path)
	require.NoError(t, err)
	require.Len(t, report.Records, 1)
	assert.Equal(t, path, report.Records[0].Source)

	require.Len(t, report.Failures, 1)
	assert.Equal(t, path, report.Failures[0].Source)
	assert.Equal(t, 2, report.Failures[0].Line)
	assert.Equal(t, "access", report.Failures[0].Rule)
	assert.Contains(t, report.Failures[0].Message, "unable to find match")

	_, err = engine.Run(filepath.Join(t.TempDir(), "missing.log"))
	assert.Error(t, err)
}

func TestEngine_Reload(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	err := engine.Reload(" ", []tt.ConfigRule{{Name: "bad", Pattern: "%{}"}})
	require.Error(t, err)
	assert.Len(t, engine.Rules(), 3, "failed reload keeps the previous rules")

	require.NoError(t, engine.Reload(" ", []tt.ConfigRule{{Name: "pair", Pattern: "%{a}:%{b}"}}))
	record, err := engine.Dissect("x:y")
	require.NoError(t, err)
	assert.Equal(t, "pair", record.Rule)

	_, err = engine.Dissect("a=b")
	assert.ErrorIs(t, err, ErrNoCandidate)
}

func TestEngine_ConcurrentReload(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = engine.Dissect("a=b")
			}
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, engine.Reload(" ", testRules()))
		}()
	}
	wg.Wait()
	assert.Len(t, engine.Rules(), 3)
}

func TestEngine_WatchRules(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	dir := t.TempDir()
	path := filepath.Join(dir, ".dissect.yaml")
	require.NoError(t, os.WriteFile(path, []byte("%{a}=%{b}"), 0o644))

	// the rule file holds a single pattern
	load := func(p string) (string, []tt.ConfigRule, error) {
		content, err := os.ReadFile(p)
		if err != nil {
			return "", nil, err
		}
		return "", []tt.ConfigRule{{Name: "watched", Pattern: string(content)}}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- engine.WatchRules(ctx, path, load) }()

	assert.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("%{a}|%{b}"), 0o644)
		record, err := engine.Dissect("x|y")
		return err == nil && record.Rule == "watched"
	}, 5*time.Second, 200*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func BenchmarkEngine_Dissect(b *testing.B) {
	engine := newTestEngine(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = engine.Dissect("1.2.3.4 [now] hello world")
	}
}
