package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadInterviewScript_MissingFileUsesDefaults(t *testing.T) {
	script, err := LoadInterviewScript(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	defaults := DefaultInterviewScript()
	assert.Equal(t, defaults, script)
}

func TestLoadInterviewScript_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "interview.yaml")
	content := []byte("intro_text: Custom intro\nmax_answers: 8\nmin_questions: 2\n")
	require.NoError(t, os.WriteFile(path, content, 0644))

	script, err := LoadInterviewScript(path)
	require.NoError(t, err)

	assert.Equal(t, "Custom intro", script.IntroText)
	assert.Equal(t, 8, script.MaxAnswers)
	assert.Equal(t, 2, script.MinQuestions)

	// Omitted fields keep the defaults.
	defaults := DefaultInterviewScript()
	assert.Equal(t, defaults.ClosingText, script.ClosingText)
	assert.Equal(t, defaults.FallbackQuestion, script.FallbackQuestion)
	assert.Equal(t, defaults.MaxRefusals, script.MaxRefusals)
}

func TestLoadInterviewScript_RejectsInvalidLimits(t *testing.T) {
	cases := map[string]string{
		"zero max_answers":               "max_answers: 0\n",
		"max below min":                  "min_questions: 5\nmax_answers: 3\n",
		"empty intro":                    "intro_text: \" \"\n",
		"non-positive max_refusals":      "max_refusals: 0\n",
		"non-positive max_short_answers": "max_short_answers: -1\n",
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "interview.yaml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0644))

			_, err := LoadInterviewScript(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadInterviewScript_RejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "interview.yaml")
	require.NoError(t, os.WriteFile(path, []byte("intro_text: [unclosed"), 0644))

	_, err := LoadInterviewScript(path)
	assert.Error(t, err)
}
