// Package gha writes GitHub Actions workflow commands.
package gha

import (
	"fmt"
	"io"
)

// Group runs fn between "::group::title" and "::endgroup::" markers.
// The end marker is written even when fn fails or panics. Group returns fn's error.
func Group(w io.Writer, title string, fn func() error) error {
	defer Start(w, title)()
	return fn()
}

// Start writes the group start marker and returns the function that ends the group.
//
//	defer gha.Start(os.Stdout, "Build queue")()
func Start(w io.Writer, title string) func() {
	fmt.Fprintf(w, "\n::group::%s\n", title)
	return func() {
		fmt.Fprint(w, "::endgroup::\n")
	}
}
