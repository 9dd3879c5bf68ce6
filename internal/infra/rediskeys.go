package infra

const (
	// RedisNamespace prefixes every key and channel this service owns.
	RedisNamespace = "busapp"
)

// Pub/Sub channels
const (
	// RedisChanCatalogRefresh tells every console instance to reload the policy catalog.
	RedisChanCatalogRefresh = RedisNamespace + ":policies:refresh"
)

// Task queues (asynq)
const (
	QueueMail = RedisNamespace + ":mail"
)
