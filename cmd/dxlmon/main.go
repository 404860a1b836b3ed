package main

import (
	"flag"
	"log"

	"github.com/robotalks/dxl.go/pkg/bridge/mqtt"
	"github.com/robotalks/dxl.go/pkg/env"
)

func init() {
	env.SetupFlags()
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	conf := env.NewConfig()
	q, err := mqtt.NewQueueFromURL(conf.MQTTBrokerURL, env.ClientID()+"-mon")
	if err != nil {
		log.Fatalln(err)
	}
	q.Sub("#", func(topic string, payload []byte) {
		log.Printf("%s: %s", topic, payload)
	})
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	<-(chan struct{})(nil)
}
