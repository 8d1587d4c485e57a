// Package mqtt listens for courier availability signals.
package mqtt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"courier-dispatch/internal/logx"
)

// Source labels passes requested by availability signals.
const Source = "mqtt"

const (
	connectTimeout = 5 * time.Second
	quiesceMillis  = 250
)

// ErrTimeout is returned when the broker does not acknowledge in time.
var ErrTimeout = errors.New("mqtt: timed out waiting for broker")

// Client is the subset of the paho client the listener uses.
type Client interface {
	Connect() paho.Token
	IsConnected() bool
	Disconnect(quiesce uint)
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newClient = func(opts *paho.ClientOptions) Client {
	return paho.NewClient(opts)
}

// Trigger asks the dispatch loop for a pass.
type Trigger interface {
	Trigger(source string) bool
}

// TriggerCounter counts trigger requests per source.
type TriggerCounter interface {
	IncTrigger(source string, accepted bool)
}

// Options configure the broker connection.
type Options struct {
	Broker   string
	ClientID string
	Topic    string
	Username string
	Password string
}

// Listener subscribes to availability topics and requests a dispatch pass
// for every message.
type Listener struct {
	client  Client
	topic   string
	trigger Trigger
	metrics TriggerCounter
	logger  logx.Logger
}

// NewListener builds a Listener. It returns nil when no broker is configured.
// metrics may be nil.
func NewListener(opts Options, trigger Trigger, metrics TriggerCounter, logger logx.Logger) (*Listener, error) {
	if strings.TrimSpace(opts.Broker) == "" {
		return nil, nil
	}
	if strings.TrimSpace(opts.Topic) == "" {
		return nil, errors.New("mqtt: topic is required")
	}

	co := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetConnectTimeout(connectTimeout).
		SetAutoReconnect(true).
		SetCleanSession(false).
		SetResumeSubs(true)
	if opts.Username != "" {
		co.SetUsername(opts.Username)
		co.SetPassword(opts.Password)
	}

	l := &Listener{
		topic:   opts.Topic,
		trigger: trigger,
		metrics: metrics,
		logger:  logger.With(logx.String("topic", opts.Topic)),
	}
	co.SetConnectionLostHandler(func(_ paho.Client, err error) {
		l.logger.Warn("mqtt connection lost", logx.Err(err))
	})
	l.client = newClient(co)
	return l, nil
}

// Run connects, subscribes and blocks until ctx is canceled.
func (l *Listener) Run(ctx context.Context) error {
	if l == nil {
		return nil
	}
	if err := wait(l.client.Connect()); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	defer l.Close()

	if err := wait(l.client.Subscribe(l.topic, 1, l.handle)); err != nil {
		return fmt.Errorf("mqtt subscribe %s: %w", l.topic, err)
	}
	l.logger.Info("mqtt listener subscribed")

	<-ctx.Done()
	return ctx.Err()
}

// Close disconnects from the broker.
func (l *Listener) Close() {
	if l == nil {
		return
	}
	if l.client.IsConnected() {
		l.client.Disconnect(quiesceMillis)
	}
}

func (l *Listener) handle(_ paho.Client, msg paho.Message) {
	accepted := l.trigger.Trigger(Source)
	if l.metrics != nil {
		l.metrics.IncTrigger(Source, accepted)
	}
	l.logger.Debug("courier availability signal",
		logx.String("courier_id", courierID(msg.Topic())),
		logx.Any("accepted", accepted),
	)
}

func wait(t paho.Token) error {
	if !t.WaitTimeout(connectTimeout) {
		return ErrTimeout
	}
	return t.Error()
}

// courierID extracts the wildcard segment of couriers/{id}/availability.
func courierID(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) < 3 {
		return ""
	}
	return parts[1]
}
