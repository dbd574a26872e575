package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/polkiloo/flashrent/internal/pkg/auth"
)

// hashKey reads an API key from the first line of in and prints its bcrypt hash for API_KEY_HASH.
func hashKey(in io.Reader, out, errOut io.Writer) int {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		fmt.Fprintf(errOut, "read key: %v\n", err)
		return 1
	}
	key := strings.TrimSpace(line)
	if key == "" {
		fmt.Fprintln(errOut, "empty key")
		return 1
	}
	hash, err := auth.HashKey(key, 0)
	if err != nil {
		fmt.Fprintf(errOut, "hash key: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, hash)
	return 0
}
