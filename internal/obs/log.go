package obs

import (
	"encoding/json"
	"log"
	"os"
	"time"
)

// The service logs single-line JSON to stdout. Exposing the
// underlying log.Logger lets tests redirect output.
var jsonLog = log.New(os.Stdout, "", 0)

// Logger returns the shared logger every structured line goes through.
func Logger() *log.Logger {
	return jsonLog
}

// Emit writes one JSON log line, stamping ts and level unless the
// caller already set them.
func Emit(level string, fields map[string]any) {
	entry := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		entry[k] = v
	}
	if _, ok := entry["ts"]; !ok {
		entry["ts"] = time.Now().UTC().Format(time.RFC3339)
	}
	if _, ok := entry["level"]; !ok {
		entry["level"] = level
	}
	data, err := json.Marshal(entry)
	if err != nil {
		jsonLog.Println(`{"level":"error","msg":"log entry not serializable"}`)
		return
	}
	jsonLog.Println(string(data))
}
