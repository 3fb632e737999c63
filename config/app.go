package config

type App struct {
	Port           string `env:"APP_PORT" default:"8080"`
	DatabaseURL    string `env:"DATABASE_URL,required"`
	RedisAddr      string `env:"REDIS_ADDR" default:"localhost:6379"`
	JWTSecret      string `env:"JWT_SECRET,required"`
	SweepHour      int    `env:"SWEEP_HOUR" default:"9"`
	RankingCacheTTL int   `env:"RANKING_CACHE_SECONDS" default:"600"`
	Env            string `env:"APP_ENV" default:"dev"`
}
