// Command flowstatd runs a flowstat Receiver as a standalone process,
// exposing its Meters snapshots over HTTP. It exists to exercise the
// library end-to-end; embedders are expected to call package flowstat
// directly instead.
package main

func main() {
	Execute()
}
