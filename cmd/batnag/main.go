// Package main provides the CLI entrypoint for batnag.
package main

func main() {
	Execute()
}
