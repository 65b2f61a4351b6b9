// Command mlpsim runs a streaming MLP layer on simulated dataflow hardware and
// reports how many cycles it takes.
package main

func main() {
	Execute()
}
