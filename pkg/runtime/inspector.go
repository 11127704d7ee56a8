package runtime

import (
	"encoding/json"
	"strings"

	"github.com/ormasoftchile/tact/pkg/backends"
	"github.com/ormasoftchile/tact/pkg/lane"
)

// ApplyResultMarkers scans command output for backend result marker
// lines and folds their payloads into the inspector data for the given
// lane. Lines that fail to parse are skipped; backends are free to
// print anything and only well-formed markers count.
func (d InspectorData) ApplyResultMarkers(ln lane.Lane, output string) {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, backends.ResultMarker) {
			continue
		}
		payload := line[len(backends.ResultMarker):]
		var fields map[string]any
		if err := json.Unmarshal([]byte(payload), &fields); err != nil {
			continue
		}
		if d[ln] == nil {
			d[ln] = map[string]any{}
		}
		for k, v := range fields {
			d[ln][k] = v
		}
	}
}
