// Package websocket streams run events to browser clients.
//
// A Hub owns the connected clients and fans out run:log and run:status
// messages. A client that connects with ?run={id} only receives the
// messages of that run; without the parameter it receives every run.
// Publishing never blocks the pipeline: when the broadcast queue is full
// the message is dropped and counted.
package websocket
