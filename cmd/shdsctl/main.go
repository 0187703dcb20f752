// Command shdsctl - công cụ vận hành: xem danh mục collection, băm token lời mời, phát hành token JWT.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
