package config

import "time"

const defaultPort = 8080

var defaultLog = Log{
	Format: "json",
	Level:  "info",
}

var defaultStore = Store{
	Backend: BackendMemory,
	Redis:   Redis{Addr: "127.0.0.1:6379"},
	DB: DB{
		Host: "127.0.0.1",
		Port: "5432",
		User: "myuser",
		Pass: "mypassword",
		Name: "test_db",
	},
}

var defaultRetry = Retry{
	MaxAttempts: 3,
	BaseDelay:   150 * time.Millisecond,
	MaxDelay:    time.Second,
}

var defaultDispatch = Dispatch{
	Interval:         30 * time.Second,
	Workers:          1,
	Selection:        "lexicographic",
	OperationTimeout: 10 * time.Second,
}

var defaultKafka = Kafka{
	GroupID: "courier-dispatch",
	Topic:   "orders.events",
}

var defaultMQTT = MQTT{
	ClientID: "courier-dispatch",
	Topic:    "couriers/+/availability",
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultLog returns the default logger settings.
func DefaultLog() Log {
	return defaultLog
}

// DefaultStore returns the default store settings.
func DefaultStore() Store {
	return defaultStore
}

// DefaultRetry returns the default store retry settings.
func DefaultRetry() Retry {
	return defaultRetry
}

// DefaultDispatch returns the default dispatch settings.
func DefaultDispatch() Dispatch {
	return defaultDispatch
}

// DefaultKafka returns the default Kafka settings.
func DefaultKafka() Kafka {
	return defaultKafka
}

// DefaultMQTT returns the default MQTT settings.
func DefaultMQTT() MQTT {
	return defaultMQTT
}
