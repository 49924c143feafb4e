package report

import (
	"encoding/json"
	"io"

	"github.com/AbdelazizMoustafa10m/kestrel/engine"
)

// JSON is a machine-readable stream reporter: every event, including the
// per-var lifecycle events, is written as one NDJSON line. Suitable for
// CI log aggregation.
type JSON struct {
	enc *json.Encoder
	err error
}

// NewJSON creates a JSON reporter writing to w.
func NewJSON(w io.Writer) *JSON {
	return &JSON{enc: json.NewEncoder(w)}
}

// Install registers the reporter as d's fallback so it observes the full
// event stream.
func (j *JSON) Install(d *engine.Dispatch) {
	d.SetFallback(func(_ *engine.Env, ev engine.Event) {
		if err := j.enc.Encode(ev); err != nil && j.err == nil {
			j.err = err
		}
	})
}

// Err returns the first write error encountered, if any.
func (j *JSON) Err() error { return j.err }
