package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// askYesNo writes prompt with a [y/N] or [Y/n] suffix and reads one line from in.
// An empty answer (or EOF) selects the default. Any other answer is yes only
// when it is exactly "y".
func askYesNo(in io.Reader, out io.Writer, prompt string, defaultNo bool) (bool, error) {
	suffix := " [Y/n] "
	if defaultNo {
		suffix = " [y/N] "
	}
	if _, err := fmt.Fprint(out, prompt+suffix); err != nil {
		return false, err
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	answer := strings.TrimSpace(line)
	if answer == "" {
		return !defaultNo, nil
	}
	// not lowercased: "Y" and "yes" are a no
	return answer == "y", nil
}
