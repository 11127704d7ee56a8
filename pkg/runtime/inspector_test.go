package runtime

import (
	"testing"

	"github.com/ormasoftchile/tact/pkg/lane"
)

func TestApplyResultMarkers(t *testing.T) {
	d := InspectorData{}
	output := "navigating...\n" +
		`RESULT:{"url":"https://example.com","title":"Example"}` + "\n" +
		"done\n"
	d.ApplyResultMarkers(lane.LaneBrowser, output)

	browser := d[lane.LaneBrowser]
	if browser == nil {
		t.Fatal("no browser data recorded")
	}
	if browser["url"] != "https://example.com" || browser["title"] != "Example" {
		t.Errorf("browser data = %v", browser)
	}
}

func TestApplyResultMarkersNewerWins(t *testing.T) {
	d := InspectorData{}
	d.ApplyResultMarkers(lane.LaneBrowser, `RESULT:{"url":"https://a.com","title":"A"}`)
	d.ApplyResultMarkers(lane.LaneBrowser, `RESULT:{"url":"https://b.com"}`)

	browser := d[lane.LaneBrowser]
	if browser["url"] != "https://b.com" {
		t.Errorf("url not replaced: %v", browser["url"])
	}
	if browser["title"] != "A" {
		t.Errorf("untouched key lost: %v", browser["title"])
	}
}

func TestApplyResultMarkersDefensive(t *testing.T) {
	d := InspectorData{}
	d.ApplyResultMarkers(lane.LaneShell, "plain output\nRESULT:not json at all\nRESULT:{broken\nmore output")
	if len(d) != 0 {
		t.Errorf("garbage markers recorded data: %v", d)
	}

	// A bad marker must not poison a good one on another line.
	d.ApplyResultMarkers(lane.LaneShell, "RESULT:{bad}\nRESULT:{\"cwd\":\"/work\"}")
	if d[lane.LaneShell]["cwd"] != "/work" {
		t.Errorf("valid marker after invalid one dropped: %v", d)
	}
}
