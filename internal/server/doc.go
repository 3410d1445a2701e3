// Package server implements the econet exporter: a poller that reads an
// ecoNET-300 controller on a fixed interval and publishes each snapshot to
// Prometheus, websocket clients and any other registered sink.
//
// # Endpoints
//
//	/metrics  econet_param_value{uid,param}, econet_scrape_success,
//	          econet_last_success_timestamp_seconds, econet_info{...}
//	/health   "OK"
//	/params   last snapshot as JSON
//	/ws       {"type":"snapshot","uid":...,"timestamp":...,"params":{...}}
//
// # Usage Example
//
//	api, err := econet.Create(ctx, client, memcache.New())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	srv := server.New(&server.Config{Listen: ":9842", Interval: 30 * time.Second}, api)
//
//	// Start blocks until shutdown signal or error
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Concurrency
//
// Polls and parameter writes share one mutex, so the controller never sees
// overlapping requests from the exporter. Sinks are called synchronously on
// the polling goroutine and must not block; the websocket hub drops frames
// for clients whose buffer is full.
//
// # Graceful Shutdown
//
// SIGINT and SIGTERM stop the poller, close websocket clients and shut the
// HTTP server down with a short grace period.
package server
