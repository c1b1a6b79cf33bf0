package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "smart_dashboard"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr     = "localhost:6379"
	DefaultRedisDB       = 0
	DefaultSessionPrefix = "session:"

	DefaultKafkaLockTopic = "dashboard.lock-events"

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultSendBufferSize = 32
	DefaultMaxMessageSize = 4 * 1024 // 4KB, lock events are tiny
	DefaultWriteWait      = 10 * time.Second
	DefaultPongWait       = 60 * time.Second

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)
