package connection

import (
	"fmt"
	"strings"

	"github.com/nohumanman/descenders-modding/internal/model"
)

// Frames are pipe-separated text: a verb followed by its arguments.
const (
	verbHello      = "HELLO"
	verbReady      = "READY"
	verbRep        = "REP"
	verbWorld      = "WORLD"
	verbTrick      = "TRICK"
	verbBike       = "BIKE"
	verbTrailStart = "TRAIL_START"
	verbTrailEnd   = "TRAIL_END"
)

const separator = "|"

type hello struct {
	ID          model.PlayerID
	DisplayName string
	Version     string
}

// parseHello reads "HELLO|<id>|<name>|<version>"
func parseHello(frame string) (hello, error) {
	parts := strings.Split(frame, separator)
	if len(parts) != 4 || parts[0] != verbHello {
		return hello{}, fmt.Errorf("%w: %q", model.ErrInvalidHandshake, frame)
	}
	id := strings.TrimSpace(parts[1])
	name := strings.TrimSpace(parts[2])
	if id == "" || name == "" {
		return hello{}, fmt.Errorf("%w: id and name are required", model.ErrInvalidHandshake)
	}
	return hello{
		ID:          model.PlayerID(id),
		DisplayName: name,
		Version:     strings.TrimSpace(parts[3]),
	}, nil
}

func splitFrame(frame string) (string, []string) {
	parts := strings.Split(frame, separator)
	return parts[0], parts[1:]
}
