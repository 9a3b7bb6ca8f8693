package quizforge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"QUIZFORGE_ENV", "GENERATOR_BACKEND", "NUM_STATEMENTS",
		"QUIZ_STORE", "SQLITE_PATH", "QUESTIONS_POLICY", "LISTEN_ADDR",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	require.Equal(t, "development", cfg.Env)
	require.Equal(t, BackendHTTP, cfg.GeneratorBackend)
	require.Equal(t, 3, cfg.NumStatements)
	require.Equal(t, StoreSQLite, cfg.StoreBackend)
	require.Equal(t, LenientQuestions, cfg.Policy)
	require.Equal(t, ":8180", cfg.ListenAddr)
	require.False(t, cfg.Production())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("QUIZFORGE_ENV", "production")
	t.Setenv("GENERATOR_BACKEND", "openai")
	t.Setenv("NUM_STATEMENTS", "5")
	t.Setenv("QUIZ_STORE", "appwrite")
	t.Setenv("QUESTIONS_POLICY", "strict")
	t.Setenv("APPWRITE_PROJECT_ID", "proj")

	cfg := LoadConfig()
	require.Equal(t, BackendOpenAI, cfg.GeneratorBackend)
	require.Equal(t, 5, cfg.NumStatements)
	require.Equal(t, StoreDocument, cfg.StoreBackend)
	require.Equal(t, StrictQuestions, cfg.Policy)
	require.Equal(t, "proj", cfg.DocStore.ProjectID)
	require.True(t, cfg.Production())
}

func TestConfig_ProductionCaseInsensitive(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"prod", true},
		{"PROD", true},
		{"Production", true},
		{"development", false},
		{"", false},
	}
	for _, tt := range tests {
		cfg := &Config{Env: tt.env}
		require.Equal(t, tt.want, cfg.Production(), "env %q", tt.env)
	}
}

func TestLoadConfig_BadNumStatements(t *testing.T) {
	t.Setenv("NUM_STATEMENTS", "many")

	cfg := LoadConfig()
	require.Equal(t, 3, cfg.NumStatements)
}

func TestNewGenerator_ConfigErrors(t *testing.T) {
	log, err := NewLogger("development")
	require.NoError(t, err)

	_, err = NewGenerator(&Config{GeneratorBackend: BackendHTTP}, log, nil)
	require.ErrorIs(t, err, ErrConfig)

	_, err = NewGenerator(&Config{GeneratorBackend: BackendOpenAI}, log, nil)
	require.ErrorIs(t, err, ErrConfig)

	_, err = NewGenerator(&Config{GeneratorBackend: "carrier-pigeon"}, log, nil)
	require.ErrorIs(t, err, ErrConfig)

	gen, err := NewGenerator(&Config{GeneratorBackend: BackendHTTP, GenerationURL: "http://localhost:9000"}, log, nil)
	require.NoError(t, err)
	require.IsType(t, &HTTPGenerator{}, gen)
}
