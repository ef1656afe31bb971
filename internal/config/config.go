package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	Razorpay Razorpay `envPrefix:"RAZORPAY_"`
}

type Razorpay struct {
	BaseApiURL    string `env:"BASE_API_URL" envDefault:"https://api.razorpay.com/v1"`
	KeyID         string `env:"KEY_ID,required,notEmpty"`
	KeySecret     string `env:"KEY_SECRET,required,notEmpty"`
	WebhookSecret string `env:"WEBHOOK_SECRET,required,notEmpty"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
