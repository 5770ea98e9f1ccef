package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/caarlos0/env/v11"
)

const (
	TransportLocal   = "local"
	TransportProcess = "process"
	TransportAMQP    = "amqp"
	TransportNATS    = "nats"
)

var transports = []string{TransportLocal, TransportProcess, TransportAMQP, TransportNATS}

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"200"` // 要比求解超时长
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Engine struct {
		Transport     string   `env:"TRANSPORT" envDefault:"local"`
		SolveTimeout  int      `env:"SOLVE_TIMEOUT" envDefault:"180"` // 3 分钟
		ProcessBinary string   `env:"PROCESS_BINARY" envDefault:"solve"`
		ProcessArgs   []string `env:"PROCESS_ARGS" envSeparator:" "`
		ExchangeDir   string   `env:"EXCHANGE_DIR"` // 为空时使用系统临时目录
		MaxDateSpan   int      `env:"MAX_DATE_SPAN" envDefault:"731"`
		MaxNodes      int      `env:"MAX_NODES" envDefault:"20000"`
	} `envPrefix:"ENGINE_"`
	Cost struct {
		Weights     []float64 `env:"WEIGHTS" envDefault:"0,20,40,100" envSeparator:","`
		DefaultCost float64   `env:"DEFAULT_COST" envDefault:"1000"`
	} `envPrefix:"COST_"`
	RabbitMQ struct {
		DSN   string `env:"DSN"`
		Queue string `env:"QUEUE" envDefault:"solve_queue"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host           string `env:"HOST" envDefault:"localhost"`
		Port           int    `env:"PORT" envDefault:"6379"`
		Password       string `env:"PASSWORD"`
		ConnectTimeout int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		KeyPrefix      string `env:"KEY_PREFIX" envDefault:"schedule"`
		// 交换区中数据的过期时间，应当比求解超时长
		ExchangeExpiration int `env:"EXCHANGE_EXPIRATION" envDefault:"300"`
	} `envPrefix:"REDIS_"`
	NATS struct {
		URL     string `env:"URL" envDefault:"nats://127.0.0.1:4222"`
		Subject string `env:"SUBJECT" envDefault:"schedule.solve"`
		Queue   string `env:"QUEUE" envDefault:"solvers"`
	} `envPrefix:"NATS_"`
	Worker struct {
		Transport string `env:"TRANSPORT" envDefault:"amqp"`
	} `envPrefix:"WORKER_"`
	Seed struct {
		EmployeeCount int `env:"EMPLOYEE_COUNT" envDefault:"10"`
	} `envPrefix:"SEED_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate 检查不同调用方式各自需要的配置是否齐全
func (cfg *Config) Validate() error {
	if !slices.Contains(transports, cfg.Engine.Transport) {
		return fmt.Errorf("不支持的求解方式 %q", cfg.Engine.Transport)
	}
	if cfg.Worker.Transport != TransportAMQP && cfg.Worker.Transport != TransportNATS {
		return fmt.Errorf("worker 不支持的接收方式 %q", cfg.Worker.Transport)
	}
	if cfg.Engine.SolveTimeout <= 0 {
		return errors.New("ENGINE_SOLVE_TIMEOUT 必须为正数")
	}
	if cfg.Engine.Transport == TransportProcess && cfg.Engine.ProcessBinary == "" {
		return errors.New("使用子进程求解时必须设置 ENGINE_PROCESS_BINARY")
	}
	if cfg.Engine.Transport == TransportAMQP && cfg.RabbitMQ.DSN == "" {
		return errors.New("使用 RabbitMQ 求解时必须设置 RABBITMQ_DSN")
	}
	if cfg.Engine.Transport == TransportNATS && cfg.NATS.URL == "" {
		return errors.New("使用 NATS 求解时必须设置 NATS_URL")
	}
	return nil
}
