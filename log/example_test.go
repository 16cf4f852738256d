package log_test

import (
	"log/slog"
	"os"

	"github.com/ardnew/stencil/log"
)

func Example() {
	logger := log.Make(os.Stdout,
		log.WithLevel(log.LevelDebug),
		log.WithTimeLayout("none"),
		log.WithPretty(false))

	logger.Trace("dropped")
	logger.Debug("compiled", slog.String("template", "index"), slog.Int("nodes", 4))

	// Output:
	// level=DEBUG msg=compiled template=index nodes=4
}

func Example_json() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatJSON),
		log.WithTimeLayout("none"),
		log.WithPretty(false))

	logger.With(slog.String("kind", "filter")).Warn("unknown name", slog.String("name", "uper"))

	// Output:
	// {"level":"WARN","msg":"unknown name","kind":"filter","name":"uper"}
}
