package table

// Orientation says which axis of the wide table carries the parameters.
type Orientation int

const (
	// ParamsInRows: first column holds parameter labels, remaining columns
	// are stations. The layout of most lab result sheets.
	ParamsInRows Orientation = iota
	// ParamsInColumns: first column holds station IDs, remaining columns
	// are parameters.
	ParamsInColumns
)

// Observation is one cell of the wide table in long form. The cell text is
// kept raw here; numeric coercion happens in the measurement layer.
type Observation struct {
	Station   string
	Parameter string
	Cell      string
}

// Reshape pivots a wide table into long observations, one per data cell.
// Every cell of the grid is emitted, missing ones included, so the count
// of non-empty cells is preserved exactly. Rows whose key cell is blank
// (merged cells in field sheets) are emitted too, with an empty key; the
// measurement layer decides how to attribute them.
func Reshape(t *Table, o Orientation) ([]Observation, error) {
	if len(t.Header) < 2 {
		return nil, &MalformedTableError{
			File:   t.Name,
			Reason: "need one key column and at least one data column (wide layout)",
		}
	}
	if t.Header[0] == "" {
		return nil, &MalformedTableError{
			File:   t.Name,
			Reason: "first header cell is blank; cannot identify the parameter/station axis",
		}
	}
	out := make([]Observation, 0, len(t.Rows)*(len(t.Header)-1))
	for _, row := range t.Rows {
		if len(row) == 0 {
			continue
		}
		key := row[0]
		for j := 1; j < len(t.Header); j++ {
			cell := ""
			if j < len(row) {
				cell = row[j]
			}
			switch o {
			case ParamsInRows:
				out = append(out, Observation{Station: t.Header[j], Parameter: key, Cell: cell})
			case ParamsInColumns:
				out = append(out, Observation{Station: key, Parameter: t.Header[j], Cell: cell})
			}
		}
	}
	return out, nil
}

// Pivot rebuilds a wide table from long observations, the inverse of
// Reshape. keyName labels the first column. Axis values keep their
// encounter order.
func Pivot(obs []Observation, o Orientation, keyName string) *Table {
	var keys, cols []string
	keyIdx := map[string]int{}
	colIdx := map[string]int{}
	keyOf := func(ob Observation) string {
		if o == ParamsInRows {
			return ob.Parameter
		}
		return ob.Station
	}
	colOf := func(ob Observation) string {
		if o == ParamsInRows {
			return ob.Station
		}
		return ob.Parameter
	}
	for _, ob := range obs {
		if _, ok := keyIdx[keyOf(ob)]; !ok {
			keyIdx[keyOf(ob)] = len(keys)
			keys = append(keys, keyOf(ob))
		}
		if _, ok := colIdx[colOf(ob)]; !ok {
			colIdx[colOf(ob)] = len(cols)
			cols = append(cols, colOf(ob))
		}
	}
	t := &Table{Header: append([]string{keyName}, cols...)}
	t.Rows = make([][]string, len(keys))
	for i, k := range keys {
		row := make([]string, len(cols)+1)
		row[0] = k
		t.Rows[i] = row
	}
	for _, ob := range obs {
		t.Rows[keyIdx[keyOf(ob)]][colIdx[colOf(ob)]+1] = ob.Cell
	}
	return t
}
