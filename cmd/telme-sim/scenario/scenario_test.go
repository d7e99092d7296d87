package scenario

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestBuiltinsAreValid(t *testing.T) {
	names := []string{}
	for _, s := range List() {
		names = append(names, s.Name)
		require.NoError(t, s.Validate(), s.Name)
	}
	assert.Equal(t, []string{"checkout", "health-check", "import"}, names)

	s, ok := Get("import")
	require.True(t, ok)
	assert.Equal(t, 4, s.SpanCount())

	_, ok = Get("missing")
	assert.False(t, ok)
}

func TestLoadFromFile(t *testing.T) {
	path := writeScenario(t, `
name: signup
description: Account signup
rootSpan:
  name: "POST /signup"
  kind: SERVER
  duration: "120ms"
  attributes:
    http.route: /signup
  counters:
    - name: signup.fields
      amount: 1
      times: 5
    - name: signup.score
      amount: 0.5
  events:
    - name: user.created
      attributes:
        plan: pro
  children:
    - name: send_welcome
      kind: PRODUCER
      duration: "10ms"
      logs:
        - level: INFO
          message: "welcome queued"
`)

	s, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "signup", s.Name)
	assert.Equal(t, SpanKindServer, s.RootSpan.Kind)
	assert.Equal(t, 120*time.Millisecond, s.RootSpan.Duration.AsDuration())
	assert.Equal(t, "/signup", s.RootSpan.Attributes["http.route"])

	require.Len(t, s.RootSpan.Counters, 2)
	assert.Equal(t, 5, s.RootSpan.Counters[0].Repeat())
	assert.Equal(t, 1, s.RootSpan.Counters[1].Repeat())
	assert.InDelta(t, 0.5, s.RootSpan.Counters[1].Amount, 1e-9)

	require.Len(t, s.RootSpan.Events, 1)
	assert.Equal(t, "pro", s.RootSpan.Events[0].Attributes["plan"])

	require.Len(t, s.RootSpan.Children, 1)
	assert.Equal(t, "welcome queued", s.RootSpan.Children[0].Logs[0].Message)
	assert.Equal(t, 2, s.SpanCount())
}

func TestLoadFromFile_Invalid(t *testing.T) {
	path := writeScenario(t, `
rootSpan:
  kind: SIDEWAYS
  errorRate: 2
  counters:
    - amount: 1
  children:
    - kind: CLIENT
`)

	s, err := LoadFromFile(path)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Nil(t, s)

	for _, want := range []string{
		"name is required",
		`rootSpan: unknown kind "SIDEWAYS"`,
		"errorRate 2 out of [0, 1]",
		"rootSpan: counters[0]: name is required",
		"rootSpan.children[0]: span name is required",
	} {
		assert.ErrorContains(t, err, want)
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	s, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Nil(t, s)
}

func TestDuration_YAML(t *testing.T) {
	out, err := Duration(1500 * time.Millisecond).MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, "1.5s", out)

	var d Duration
	require.NoError(t, d.UnmarshalYAML(func(v any) error {
		*(v.(*string)) = "250ms"

		return nil
	}))
	assert.Equal(t, 250*time.Millisecond, d.AsDuration())

	require.Error(t, d.UnmarshalYAML(func(v any) error {
		*(v.(*string)) = "soon"

		return nil
	}))
}
