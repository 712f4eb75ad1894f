package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Configuration struct {
	Server struct {
		Host string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
		Port string `envconfig:"SERVER_PORT" default:"8080"`
		// AllowedOrigins is empty to accept any origin.
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`
	}
	Narrator struct {
		UseMock   bool          `envconfig:"NARRATOR_MOCK" default:"false"`
		MockDelay time.Duration `envconfig:"NARRATOR_MOCK_DELAY" default:"500ms"`
		// Backend is openai or ollama.
		Backend string        `envconfig:"NARRATOR_BACKEND" default:"openai"`
		APIKey  string        `envconfig:"OPENAI_API_KEY"`
		BaseURL string        `envconfig:"NARRATOR_BASE_URL"`
		Model   string        `envconfig:"NARRATOR_MODEL" default:"gpt-3.5-turbo"`
		Timeout time.Duration `envconfig:"NARRATOR_TIMEOUT" default:"60s"`
	}
	Database struct {
		Address      string `envconfig:"MONGO_ADDRESS"`
		DatabaseName string `envconfig:"MONGO_DATABASE" default:"chronicles"`
		Collection   string `envconfig:"MONGO_COLLECTION" default:"games"`
	}
	Stockfish struct {
		Path  string   `envconfig:"STOCKFISH_PATH"`
		Args  []string `envconfig:"STOCKFISH_ARGS"`
		Depth int      `envconfig:"STOCKFISH_DEPTH" default:"10"`
	}
	Log struct {
		Level    string `envconfig:"LOG_LEVEL" default:"info"`
		Encoding string `envconfig:"LOG_ENCODING" default:"json"`
	}
}

func InitConfig() (*Configuration, error) {
	var cfg Configuration
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
