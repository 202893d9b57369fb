package replaycmder

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/twakeham/pathfinder/pkg/chat"
)

// LoadLog reads a JSONL message log: one JSON message per line, blank
// lines skipped. Order in the file is the chronological order the
// reconstructor relies on.
func LoadLog(r io.Reader) ([]chat.Message, error) {
	var log []chat.Message

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var msg chat.Message
		if err := json.Unmarshal(line, &msg); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		log = append(log, msg)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading log: %w", err)
	}

	return log, nil
}
