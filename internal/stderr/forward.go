package stderr

import (
	"bufio"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// forward logs every non-empty line read from r until EOF.
func forward(r io.Reader, log logrus.FieldLogger) {
	log = log.WithField("source", "stderr")
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		log.Warn(line)
	}
}
