package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/costmodel"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/engine"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/exchange"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/handler"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/worker"
)

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * 加载配置
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法加载配置文件", "error", err)
		return
	}

	/**********************************************
	 * 创建成本模型
	 **********************************************/
	costs, err := costmodel.New(costmodel.Config{
		Weights:     cfg.Cost.Weights,
		DefaultCost: cfg.Cost.DefaultCost,
	})
	if err != nil {
		logger.Error("成本模型配置有误", "error", err)
		return
	}

	/**********************************************
	 * 根据配置选择求解方式
	 **********************************************/
	var invoker engine.Invoker

	switch cfg.Engine.Transport {
	case config.TransportLocal:
		invoker = &engine.Local{MaxNodes: cfg.Engine.MaxNodes}
	case config.TransportProcess:
		args := append([]string{}, cfg.Engine.ProcessArgs...)
		invoker = &engine.Process{
			Binary:   cfg.Engine.ProcessBinary,
			Args:     args,
			Area:     exchange.NewDirArea(cfg.Engine.ExchangeDir),
			MaxNodes: cfg.Engine.MaxNodes,
		}
	case config.TransportAMQP:
		// 连接 rabbitmq
		conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
		if err != nil {
			logger.Error("无法连接到 rabbitmq", "error", err)
			return
		}
		defer conn.Close()

		// 声明队列，保证 worker 还没启动时请求也不会丢失
		ch, err := conn.Channel()
		if err != nil {
			logger.Error("无法建立通道", "error", err)
			return
		}
		if _, err := worker.DeclareQueue(ch, cfg.RabbitMQ.Queue); err != nil {
			logger.Error("无法声明队列", "error", err)
			return
		}
		ch.Close()

		// 连接 redis，请求和结果通过 redis 交换
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       0,
		})
		defer rdb.Close()

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Redis.ConnectTimeout)*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("无法连接到 redis", "error", err)
			return
		}

		area := exchange.NewRedisArea(rdb, cfg.Redis.KeyPrefix, time.Duration(cfg.Redis.ExchangeExpiration)*time.Second)
		invoker = engine.NewAMQP(conn, cfg.RabbitMQ.Queue, area)
	case config.TransportNATS:
		nc, err := nats.Connect(cfg.NATS.URL, nats.Name("shift-assigner-api"))
		if err != nil {
			logger.Error("无法连接到 nats", "error", err)
			return
		}
		defer nc.Close()

		invoker = engine.NewNATS(nc, cfg.NATS.Subject)
	}

	eng := engine.New(engine.Options{
		Logger:    logger,
		Costs:     costs,
		Calendar:  calendar.New(cfg.Engine.MaxDateSpan),
		Invoker:   invoker,
		Transport: cfg.Engine.Transport,
		Timeout:   time.Duration(cfg.Engine.SolveTimeout) * time.Second,
	})

	/**********************************************
	 * 创建 handler
	 **********************************************/
	handler, err := handler.NewHandler(cfg, eng)
	if err != nil {
		logger.Error("无法创建 handler", "error", err)
		return
	}
	handler.RegisterRoutes()

	/**********************************************
	 * 启动 HTTP 服务器
	 **********************************************/
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      handler.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("正在启动服务器...", "port", cfg.Server.Port, "transport", cfg.Engine.Transport)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("无法启动服务器", slog.String("error", err.Error()))
			return
		}
	}()

	<-quit
	logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("关闭服务器失败", slog.String("error", err.Error()))
	}
	logger.Info("服务器已成功关闭")
}
