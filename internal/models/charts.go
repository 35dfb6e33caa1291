package models

// ChartKind tells a renderer how a table is meant to be drawn.
type ChartKind string

const (
	ChartTreemap    ChartKind = "treemap"
	ChartPie        ChartKind = "pie"
	ChartChoropleth ChartKind = "choropleth"
	ChartBar        ChartKind = "bar"
	ChartLine       ChartKind = "line"
)

// ChartHint pairs a table position with its chart kind and title.
type ChartHint struct {
	Kind  ChartKind `json:"kind" yaml:"kind"`
	Title string    `json:"title,omitempty" yaml:"title,omitempty"`
}

var chartHints = map[ReportType][ReportTables]ChartHint{
	Performance: {
		{Kind: ChartTreemap, Title: "Monthly no-show by airline"},
		{Kind: ChartPie, Title: "Average distance by airline"},
		{Kind: ChartChoropleth, Title: "Average passengers by destination state"},
		{Kind: ChartBar, Title: "Average departure delay by airline"},
		{Kind: ChartLine, Title: "Average elapsed time by airline"},
	},
	AverageDelay: {
		{Kind: ChartLine, Title: "Average late aircraft delay time (minutes) by airline"},
		{Kind: ChartLine, Title: "Average carrier delay time (minutes) by airline"},
		{Kind: ChartLine, Title: "Average weather delay time (minutes) by airline"},
		{Kind: ChartLine, Title: "Average NAS delay time (minutes) by airline"},
		{Kind: ChartLine, Title: "Average security delay time (minutes) by airline"},
	},
}

// ChartHintFor returns the chart hint for the table at pos (0-based).
func ChartHintFor(t ReportType, pos int) (ChartHint, bool) {
	hints, ok := chartHints[t]
	if !ok || pos < 0 || pos >= ReportTables {
		return ChartHint{}, false
	}
	return hints[pos], true
}
