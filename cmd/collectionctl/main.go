// Command collectionctl attaches library resources to a collection and
// imports collection hierarchies from CSV files.
package main

func main() {
	Execute()
}
