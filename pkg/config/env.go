package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"
	EnvSessionPrefix = "SESSION_PREFIX"

	EnvKafkaBrokers   = "KAFKA_BROKERS"
	EnvKafkaLockTopic = "KAFKA_LOCK_TOPIC"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvSendBufferSize = "WS_SEND_BUFFER_SIZE"
	EnvMaxMessageSize = "WS_MAX_MESSAGE_SIZE"
	EnvWriteWait      = "WS_WRITE_WAIT"
	EnvPongWait       = "WS_PONG_WAIT"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
