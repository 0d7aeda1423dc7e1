// One-off: go run scripts/genhash.go [password] [cost]
// Prints a bcrypt hash in the format stored in the users collection.
package main

import (
	"fmt"
	"os"
	"strconv"

	"tasktracker/internal/auth"
)

func main() {
	password := "admin"
	if len(os.Args) > 1 {
		password = os.Args[1]
	}
	cost := auth.MinBcryptCost
	if len(os.Args) > 2 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil {
			fmt.Fprintln(os.Stderr, "cost must be a number")
			os.Exit(2)
		}
		cost = n
	}
	h, err := auth.NewBcryptHasher(cost)
	if err != nil {
		panic(err)
	}
	hash, err := h.Hash(password)
	if err != nil {
		panic(err)
	}
	fmt.Print(hash)
}
