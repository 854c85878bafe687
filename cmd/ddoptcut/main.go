// Command ddoptcut is the CLI front end of spec.md §6: it builds a relaxed
// BDD for a 0/1 instance and reports its bound and requested cuts. MPS
// parsing and the external MIP solver remain named collaborator interfaces
// only (spec.md §1 non-goals); the DIMACS driver is fully wired.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
