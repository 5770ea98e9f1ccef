package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/exchange"
	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/worker"
)

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * 读取配置文件
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		return
	}

	timeout := time.Duration(cfg.Engine.SolveTimeout) * time.Second

	// 监听 CTRL+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// 用于关闭 goroutine 的上下文
	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	switch cfg.Worker.Transport {
	case config.TransportAMQP:
		/**********************************************
		 * 连接 Redis
		 **********************************************/
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       0,
		})
		defer rdb.Close()

		pingCtx, pingCancel := context.WithTimeout(ctx, time.Duration(cfg.Redis.ConnectTimeout)*time.Second)
		defer pingCancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Error("无法连接到 Redis", slog.String("error", err.Error()))
			return
		}
		area := exchange.NewRedisArea(rdb, cfg.Redis.KeyPrefix, time.Duration(cfg.Redis.ExchangeExpiration)*time.Second)

		/**********************************************
		 * 连接 RabbitMQ
		 **********************************************/
		conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
		if err != nil {
			logger.Error("无法连接到 RabbitMQ", slog.String("error", err.Error()))
			return
		}
		defer conn.Close()

		// 创建通道
		ch, err := conn.Channel()
		if err != nil {
			logger.Error("无法创建通道", slog.String("error", err.Error()))
			return
		}
		defer ch.Close()

		// 声明队列
		q, err := worker.DeclareQueue(ch, cfg.RabbitMQ.Queue)
		if err != nil {
			logger.Error("无法声明队列", slog.String("error", err.Error()))
			return
		}

		// 每次只取一条消息，求解比较耗时，多个 worker 之间才能均匀分摊
		if err := ch.Qos(1, 0, false); err != nil {
			logger.Error("无法设置预取数量", slog.String("error", err.Error()))
			return
		}

		w := worker.New(logger, area, timeout, cfg.Engine.MaxNodes)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.ServeAMQP(ctx, ch, q.Name); err != nil {
				logger.Error("无法消费消息", slog.String("error", err.Error()))
				sigChan <- syscall.SIGTERM
			}
		}()
	case config.TransportNATS:
		/**********************************************
		 * 连接 NATS
		 **********************************************/
		nc, err := nats.Connect(cfg.NATS.URL, nats.Name("shift-assigner-worker"))
		if err != nil {
			logger.Error("无法连接到 NATS", slog.String("error", err.Error()))
			return
		}
		defer nc.Close()

		w := worker.New(logger, nil, timeout, cfg.Engine.MaxNodes)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.ServeNATS(ctx, nc, cfg.NATS.Subject, cfg.NATS.Queue); err != nil {
				logger.Error("无法订阅消息", slog.String("error", err.Error()))
				sigChan <- syscall.SIGTERM
			}
		}()
	}

	// 等待 CTRL+C 信号
	logger.Info("等待求解请求...（按 CTRL+C 退出）", slog.String("transport", cfg.Worker.Transport))
	<-sigChan

	// 优雅退出
	logger.Info("正在关闭 solve worker...")
	cancel()
	wg.Wait() // 等待所有 goroutine 完成
	logger.Info("solve worker 已成功关闭")
}
