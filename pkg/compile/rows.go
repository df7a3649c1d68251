package compile

// Row is one result record, keyed by column name.
type Row map[string]any

// Meta carries the execution metadata reported by the warehouse.
type Meta struct {
	RowCount     int   `json:"row_count"`
	BytesScanned int64 `json:"bytes_scanned"`
	CacheHit     bool  `json:"cache_hit"`
	DurationMS   int64 `json:"duration_ms,omitempty"`
}

// Rows is the materialized result of one executed query. Err is set when
// execution failed upstream; the rows slice is then empty but the entry
// still exists so compilation can surface an errored widget instead of a
// missing one.
type Rows struct {
	Columns []string `json:"columns"`
	Records []Row    `json:"records"`
	Meta    Meta     `json:"meta"`
	Err     string   `json:"error,omitempty"`
}

// ResultSet maps query id to its executed rows. Queries that have not
// run yet simply have no entry; the compiler turns those into pending
// widgets.
type ResultSet map[string]*Rows

// Errored returns a Rows value representing a failed execution.
func Errored(err error) *Rows {
	return &Rows{Err: err.Error()}
}
