package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"

	"github.com/robotalks/dxl.go/pkg/bridge/mqtt"
	"github.com/robotalks/dxl.go/pkg/env"
)

func init() {
	env.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf := env.NewConfig()
	e := conf.MustOpen()
	defer e.Close()

	q, err := mqtt.NewQueueFromURL(conf.MQTTBrokerURL, env.ClientID())
	if err != nil {
		log.Fatalln(err)
	}
	if err := mqtt.New(e.Bus, e.Table, q).Subscribe(q); err != nil {
		log.Fatalln(err)
	}
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("connect %s: %v", conf.MQTTBrokerURL, token.Error())
	}
	defer q.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}
