package owrates

import (
	"owstats/lib/telemetry"
)

var tracer = telemetry.Tracer("owstats.lib.scrapers.owrates")
