// Command isrsac runs the ISRSAC signature schemes on a single machine, and reports every intermediate value.
package main

func main() {
	Execute()
}
