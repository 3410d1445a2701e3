// Package mqtt publishes econet snapshots to an MQTT broker and accepts
// parameter writes from it.
//
// Topic tree per controller:
//
//	econet/<uid>/state               retained JSON snapshot
//	econet/<uid>/status              retained online/offline, offline is the LWT
//	econet/<uid>/set/<param>         plain value, e.g. "55"
//	econet/<uid>/set/<param>/result  {"param","value","success","error","timestamp"}
//
// # Usage
//
//	client, err := mqtt.Connect(mqtt.Config{Broker: "tcp://localhost:1883"}, mqtt.Topics{UID: api.UID()})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	bridge, err := mqtt.Start(ctx, client, srv.Poller())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv.Poller().AddSink(bridge)
//
// Writes go through the poller, which validates against the controller's
// limits and serializes them with polls.
package mqtt
