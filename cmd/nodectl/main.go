// nodectl browses and manipulates a parameter tree served from a node
// file, using the sim connection as backend. It exists to explore node
// listings and to exercise the nodetree package without hardware.
package main

func main() {
	execute()
}
