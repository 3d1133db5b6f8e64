// Command threads runs two goroutines that increment a shared counter under a
// mutex and reports how long it took.
//
// Run:
//
//	go run ./threads 3                      — fine-grained locking, 1 s per iteration
//	go run ./threads --variant=slow 3       — lock held across the whole loop
//	go run ./threads --compare -i 100ms 10  — both variants side by side
package main

import "os"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
