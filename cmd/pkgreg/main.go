// Package main provides the pkgreg CLI for browsing a package tree,
// building package environments and validating descriptors.
package main

func main() {
	Execute()
}
