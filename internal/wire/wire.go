// Package wire implements the line-oriented message framing shared by the
// server listeners and the client.
//
// Outgoing messages are always length-prefixed: a line carrying the decimal
// byte count of the payload, followed by exactly that many payload bytes.
// Incoming messages may use the same framing or be a bare line (legacy
// senders): if the first line does not parse as an integer, the line itself
// is the whole message.
package wire

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MaxMessageSize caps the declared payload length of a framed message.
// A larger declaration is a framing error and tears the connection down.
const MaxMessageSize = 1 << 20

var ErrMessageTooLarge = errors.New("wire: declared message size exceeds limit")

// ReadMessage reads one message from r.
//
// It reads a single line first. If the line parses as a decimal integer N,
// the next N bytes are the message payload (no terminator is required after
// the payload). Otherwise the line itself, stripped of its terminator, is
// the complete message.
func ReadMessage(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			// a final unterminated line still counts as a legacy message
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")

	n, convErr := strconv.Atoi(strings.TrimSpace(line))
	if convErr != nil {
		// legacy mode: the line is the message
		return line, nil
	}
	if n < 0 || n > MaxMessageSize {
		return "", ErrMessageTooLarge
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return "", io.EOF
		}
		return "", err
	}
	return string(payload), nil
}

// WriteMessage writes one length-prefixed message to w.
func WriteMessage(w io.Writer, msg string) error {
	if len(msg) > MaxMessageSize {
		return ErrMessageTooLarge
	}
	_, err := fmt.Fprintf(w, "%d\n%s", len(msg), msg)
	return err
}
