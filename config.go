package quizforge

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Generator backend names accepted by NewGenerator.
const (
	BackendHTTP   = "http"
	BackendOpenAI = "openai"
)

// Store backend names accepted by NewQuizStore.
const (
	StoreSQLite   = "sqlite"
	StoreDocument = "appwrite"
)

// Config collects every environment-supplied setting. Loading never fails on
// missing values: incomplete configuration surfaces as ErrConfig when the
// affected component is constructed, so unrelated functionality keeps
// working.
type Config struct {
	Env string

	GeneratorBackend string
	GenerationURL    string
	OpenAIKey        string
	NumStatements    int

	StoreBackend string
	SQLitePath   string
	DocStore     DocumentStoreConfig
	Policy       QuestionsPolicy

	RedisAddr     string
	SessionSecret string
	ListenAddr    string
	DebugLogDir   string
}

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Env: envOr("QUIZFORGE_ENV", "development"),

		GeneratorBackend: envOr("GENERATOR_BACKEND", BackendHTTP),
		GenerationURL:    os.Getenv("GENERATION_API_URL"),
		OpenAIKey:        os.Getenv("OPENAI_API_KEY"),
		NumStatements:    envInt("NUM_STATEMENTS", 3),

		StoreBackend: envOr("QUIZ_STORE", StoreSQLite),
		SQLitePath:   envOr("SQLITE_PATH", "./quizforge.db"),
		DocStore: DocumentStoreConfig{
			Endpoint:     os.Getenv("APPWRITE_ENDPOINT"),
			ProjectID:    os.Getenv("APPWRITE_PROJECT_ID"),
			DatabaseID:   os.Getenv("APPWRITE_DATABASE_ID"),
			CollectionID: os.Getenv("APPWRITE_COLLECTION_ID"),
			APIKey:       os.Getenv("APPWRITE_API_KEY"),
		},
		Policy: ParseQuestionsPolicy(envOr("QUESTIONS_POLICY", "lenient")),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		SessionSecret: envOr("SESSION_SECRET", "quizforge-dev-secret"),
		ListenAddr:    envOr("LISTEN_ADDR", ":8180"),
		DebugLogDir:   envOr("DEBUG_LOG_DIR", "log"),
	}
}

// Production reports whether debug surfaces should stay off. Matches the
// logger's case-insensitive reading of the mode.
func (c *Config) Production() bool {
	switch strings.ToLower(c.Env) {
	case "prod", "production":
		return true
	}
	return false
}

func envOr(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	val, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}
