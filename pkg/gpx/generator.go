// Package gpx renders an activity's summary polyline as a GPX 1.1 track.
// Point timestamps are interpolated evenly across the activity's elapsed
// time since the summary polyline carries no timing.
package gpx

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/twpayne/go-polyline"

	"github.com/drahdiwaberl/streaktag/pkg/domain/activity"
)

const creator = "StravaGPXExporter"

type gpxDoc struct {
	XMLName xml.Name `xml:"gpx"`
	Version string   `xml:"version,attr"`
	Creator string   `xml:"creator,attr"`
	XMLNS   string   `xml:"xmlns,attr"`
	Trk     trk      `xml:"trk"`
}

type trk struct {
	Name string `xml:"name"`
	Seg  trkSeg `xml:"trkseg"`
}

type trkSeg struct {
	Points []trkPt `xml:"trkpt"`
}

type trkPt struct {
	Lat  float64 `xml:"lat,attr"`
	Lon  float64 `xml:"lon,attr"`
	Time string  `xml:"time"`
}

// Generate renders the activity's track. Activities without a polyline
// (trainer rides, manual entries) yield (nil, nil).
func Generate(act *activity.Activity) ([]byte, error) {
	if act.SummaryPolyline == "" {
		return nil, nil
	}

	coords, _, err := polyline.DecodeCoords([]byte(act.SummaryPolyline))
	if err != nil {
		return nil, fmt.Errorf("decode polyline for activity %d: %w", act.ID, err)
	}
	if len(coords) == 0 {
		return nil, nil
	}

	step := float64(act.ElapsedSec) / float64(len(coords))
	points := make([]trkPt, 0, len(coords))
	for i, c := range coords {
		ts := act.StartDate.Add(time.Duration(float64(i) * step * float64(time.Second)))
		points = append(points, trkPt{
			Lat:  c[0],
			Lon:  c[1],
			Time: ts.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}

	doc := gpxDoc{
		Version: "1.1",
		Creator: creator,
		XMLNS:   "http://www.topografix.com/GPX/1/1",
		Trk: trk{
			Name: act.Name,
			Seg:  trkSeg{Points: points},
		},
	}

	out, err := xml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal gpx for activity %d: %w", act.ID, err)
	}
	return append([]byte(xml.Header), out...), nil
}

// WriteFile generates the track and writes it to dir/<activity_id>.gpx,
// creating dir if needed. Returns the written path, or "" when the activity
// has no track.
func WriteFile(dir string, act *activity.Activity) (string, error) {
	data, err := Generate(act)
	if err != nil || data == nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create gpx dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%d.gpx", act.ID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write gpx: %w", err)
	}
	return path, nil
}
