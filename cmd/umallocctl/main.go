// Command umallocctl exercises the umalloc allocator from the command line.
package main

func main() {
	execute()
}
