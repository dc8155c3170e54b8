package publisher

import (
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
)

type binding struct {
	queue, key, exchange string
}

type recordingDeclarer struct {
	exchanges map[string]string
	queueArgs map[string]amqp.Table
	bindings  []binding
}

func newRecordingDeclarer() *recordingDeclarer {
	return &recordingDeclarer{
		exchanges: make(map[string]string),
		queueArgs: make(map[string]amqp.Table),
	}
}

func (d *recordingDeclarer) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp.Table) error {
	d.exchanges[name] = kind
	return nil
}

func (d *recordingDeclarer) QueueDeclare(name string, _, _, _, _ bool, args amqp.Table) (amqp.Queue, error) {
	d.queueArgs[name] = args
	return amqp.Queue{Name: name}, nil
}

func (d *recordingDeclarer) QueueBind(name, key, exchange string, _ bool, _ amqp.Table) error {
	d.bindings = append(d.bindings, binding{queue: name, key: key, exchange: exchange})
	return nil
}

// route returns the queues a message published to exchange with key reaches.
func (d *recordingDeclarer) route(exchange, key string) []string {
	var out []string
	for _, b := range d.bindings {
		if b.exchange != exchange {
			continue
		}
		if d.exchanges[exchange] == "fanout" || b.key == key {
			out = append(out, b.queue)
		}
	}
	return out
}

func TestDeclareTopology_PublishReachesVerdictQueue(t *testing.T) {
	d := newRecordingDeclarer()
	if err := DeclareTopology(d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := d.route(ExchangeName, RoutingKey)
	if len(got) != 1 || got[0] != QueueName {
		t.Errorf("published event routed to %v, want [%s]", got, QueueName)
	}
}

func TestDeclareTopology_RejectedEventReachesDLQ(t *testing.T) {
	d := newRecordingDeclarer()
	if err := DeclareTopology(d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	args := d.queueArgs[QueueName]
	dlx, _ := args["x-dead-letter-exchange"].(string)
	if dlx != DLXName {
		t.Fatalf("dead-letter exchange = %q, want %q", dlx, DLXName)
	}
	// A nacked message keeps its routing key unless the queue overrides it.
	key := RoutingKey
	if override, ok := args["x-dead-letter-routing-key"].(string); ok {
		key = override
	}

	got := d.route(dlx, key)
	if len(got) != 1 || got[0] != DLQName {
		t.Errorf("dead-lettered event routed to %v, want [%s]", got, DLQName)
	}
}
