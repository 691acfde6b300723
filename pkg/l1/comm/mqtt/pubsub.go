// Package mqtt connects the rover to an MQTT broker.
//
// The broker URL has the form mqtt://[user:password@]host:port/topic-prefix,
// the path becomes the prefix of every topic used by the rover.
package mqtt

import (
	"net/url"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
)

// DefaultBrokerURL is used when no broker is configured explicitly.
const DefaultBrokerURL = "mqtt://localhost:1883/openrover/"

// DefaultTimeout is used to wait for a token.
const DefaultTimeout = time.Second

// Handler is the callback when a message is received.
type Handler func(topic string, payload []byte)

// ConnectHandler is to handle connect/disconnect events.
type ConnectHandler func(*Queue)

// Queue wraps MQTT client and dispatches received messages to
// subscriptions. Topics are relative to TopicPrefix.
type Queue struct {
	Client       paho.Client
	TopicPrefix  string
	OnConnect    ConnectHandler
	OnDisconnect ConnectHandler

	subsLock sync.RWMutex
	subs     map[string][]*Subscription
}

// Subscription is a subscribed topic.
type Subscription struct {
	Token paho.Token

	queue   *Queue
	topic   string
	handler Handler
}

// MatchTopic matches topic with pattern, supporting + and # wildcards.
func MatchTopic(topic, pattern string) bool {
	tokensT, tokensP := strings.Split(topic, "/"), strings.Split(pattern, "/")
	for i, token := range tokensP {
		if token == "#" && i+1 == len(tokensP) {
			return true
		}
		if i >= len(tokensT) {
			return false
		}
		if token != "+" && token != tokensT[i] {
			return false
		}
	}
	return len(tokensP) == len(tokensT)
}

func isWildcard(topic string) bool {
	return strings.Contains(topic, "+") || strings.HasSuffix(topic, "#")
}

// ClientOptionsFromURL creates ClientOptions from URL and returns
// the topic prefix from the path.
func ClientOptionsFromURL(serverURL string) (*paho.ClientOptions, string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, "", err
	}
	var server string
	if u.Scheme == "" || u.Scheme == "mqtt" {
		server = "tcp"
	} else {
		server = u.Scheme
	}
	server += "://" + u.Host

	topicPrefix := strings.TrimPrefix(u.Path, "/")
	if topicPrefix != "" && !strings.HasSuffix(topicPrefix, "/") {
		topicPrefix += "/"
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(server).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			opts.SetPassword(pwd)
		}
	}
	if clientID := u.Query().Get("client-id"); clientID != "" {
		opts.SetClientID(clientID)
	}
	return opts, topicPrefix, nil
}

// NewQueue creates Queue.
func NewQueue(options *paho.ClientOptions, topicPrefix string) *Queue {
	q := &Queue{TopicPrefix: topicPrefix, subs: make(map[string][]*Subscription)}
	options.SetOnConnectHandler(q.onConnect)
	options.SetConnectionLostHandler(q.onConnectionLost)
	q.Client = paho.NewClient(options)
	return q
}

// NewQueueFromURL creates Queue from URL.
func NewQueueFromURL(brokerURL string) (*Queue, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return NewQueue(opts, topicPrefix), nil
}

// Connect connects the client.
func (q *Queue) Connect() paho.Token {
	return q.Client.Connect()
}

// Close implements io.Closer.
func (q *Queue) Close() error {
	q.Client.Disconnect(uint(DefaultTimeout / time.Millisecond))
	return nil
}

// Sub subscribes a topic.
func (q *Queue) Sub(topic string, handler Handler) *Subscription {
	sub := &Subscription{queue: q, topic: topic, handler: handler}
	q.subsLock.Lock()
	subs := q.subs[topic]
	q.subs[topic] = append(subs, sub)
	q.subsLock.Unlock()

	if len(subs) == 0 && q.Client.IsConnected() {
		glog.V(2).Infof("SUB %q", q.TopicPrefix+topic)
		sub.Token = q.Client.Subscribe(q.TopicPrefix+topic, 0, q.dispatch)
	}
	return sub
}

// Pub publishes to a topic.
func (q *Queue) Pub(topic string, payload []byte) paho.Token {
	return q.PubWith(topic, payload, 0, false)
}

// PubWith publishes with QoS and retain settings.
func (q *Queue) PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token {
	return q.Client.Publish(q.TopicPrefix+topic, qos, retain, payload)
}

// Resubscribe subscribes all existing topics, after (re)connected.
func (q *Queue) Resubscribe() paho.Token {
	filters := make(map[string]byte)
	q.subsLock.RLock()
	for topic := range q.subs {
		filters[q.TopicPrefix+topic] = 0
	}
	q.subsLock.RUnlock()
	if len(filters) == 0 {
		return &paho.DummyToken{}
	}
	for key := range filters {
		glog.V(2).Infof("SUB %q", key)
	}
	return q.Client.SubscribeMultiple(filters, q.dispatch)
}

func (q *Queue) onConnect(paho.Client) {
	glog.Info("mqtt: connected")
	q.Resubscribe()
	if h := q.OnConnect; h != nil {
		h(q)
	}
}

func (q *Queue) onConnectionLost(_ paho.Client, err error) {
	glog.Warningf("mqtt: connection lost: %v", err)
	if h := q.OnDisconnect; h != nil {
		h(q)
	}
}

// handlers returns the handlers matching a topic relative to TopicPrefix.
func (q *Queue) handlers(topic string) []Handler {
	var handlers []Handler
	q.subsLock.RLock()
	defer q.subsLock.RUnlock()
	for key, subs := range q.subs {
		if key != topic && !(isWildcard(key) && MatchTopic(topic, key)) {
			continue
		}
		for _, sub := range subs {
			handlers = append(handlers, sub.handler)
		}
	}
	return handlers
}

func (q *Queue) dispatch(_ paho.Client, msg paho.Message) {
	topic := msg.Topic()
	if !strings.HasPrefix(topic, q.TopicPrefix) {
		return
	}
	glog.V(3).Infof("RCV %q", topic)
	topic = topic[len(q.TopicPrefix):]
	payload := msg.Payload()
	for _, h := range q.handlers(topic) {
		h(topic, payload)
	}
}

// Close unsubscribes the handler.
func (s *Subscription) Close() error {
	q := s.queue
	q.subsLock.Lock()
	subs := q.subs[s.topic]
	for i, sub := range subs {
		if sub == s {
			subs = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	unsub := len(subs) == 0
	if unsub {
		delete(q.subs, s.topic)
	} else {
		q.subs[s.topic] = subs
	}
	q.subsLock.Unlock()
	if !unsub || !q.Client.IsConnected() {
		return nil
	}
	glog.V(2).Infof("UNSUB %q", s.topic)
	token := q.Client.Unsubscribe(q.TopicPrefix + s.topic)
	if !token.WaitTimeout(DefaultTimeout) {
		return ErrTimeout
	}
	return token.Error()
}
