// Package mqtt exposes registers of devices on a bus over MQTT.
//
// A message on <id>/<register>/get reads the register, and a decimal
// payload on <id>/<register>/set writes it. The result is published on
// <id>/<register> as {"value":N} or {"error":"..."}.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/robotalks/dxl.go/pkg/dxl/bus"
)

// DefaultTimeout bounds a single bus transaction.
const DefaultTimeout = 100 * time.Millisecond

// Publisher publishes results.
type Publisher interface {
	Pub(topic string, payload []byte) paho.Token
}

// Result is the published payload.
type Result struct {
	Value *uint32 `json:"value,omitempty"`
	Error string  `json:"error,omitempty"`
}

// Bridge serves register requests from MQTT on a bus.
type Bridge struct {
	Bus     *bus.Bus
	Table   bus.Table
	Pub     Publisher
	Timeout time.Duration

	// bus has a single owner.
	lock sync.Mutex
}

// New creates a Bridge.
func New(b *bus.Bus, table bus.Table, pub Publisher) *Bridge {
	return &Bridge{Bus: b, Table: table, Pub: pub, Timeout: DefaultTimeout}
}

// Topics are the subscription patterns served by HandleMessage.
var Topics = []string{"+/+/get", "+/+/set"}

// Subscribe subscribes the bridge topics on q.
func (b *Bridge) Subscribe(q *Queue) error {
	for _, pattern := range Topics {
		token := q.Sub(pattern, b.HandleMessage)
		if token.Wait() && token.Error() != nil {
			return token.Error()
		}
	}
	return nil
}

// HandleMessage serves one request.
func (b *Bridge) HandleMessage(topic string, payload []byte) {
	tokens := strings.Split(topic, "/")
	if len(tokens) != 3 {
		return
	}
	resultTopic := tokens[0] + "/" + tokens[1]
	val, err := b.serve(tokens[0], tokens[1], tokens[2], payload)
	var res Result
	if err != nil {
		glog.V(1).Infof("%s %s: %v", tokens[2], resultTopic, err)
		res.Error = err.Error()
	} else {
		res.Value = &val
	}
	out, err := json.Marshal(&res)
	if err != nil {
		glog.Errorf("marshal result of %s: %v", resultTopic, err)
		return
	}
	b.Pub.Pub(resultTopic, out)
}

func (b *Bridge) serve(idStr, name, op string, payload []byte) (uint32, error) {
	id, err := strconv.ParseUint(idStr, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", idStr)
	}
	reg, ok := b.Table.Lookup(name)
	if !ok {
		return 0, fmt.Errorf("unknown register %q", name)
	}
	var val uint32
	if op == "set" {
		v, err := strconv.ParseUint(strings.TrimSpace(string(payload)), 0, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid value %q", payload)
		}
		val = uint32(v)
	}

	b.lock.Lock()
	defer b.lock.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), b.Timeout)
	defer cancel()
	switch op {
	case "get":
		return b.Bus.ReadRegister(ctx, byte(id), reg)
	case "set":
		return val, b.Bus.WriteRegister(ctx, byte(id), reg, val)
	}
	return 0, fmt.Errorf("unknown operation %q", op)
}
