package datarecording

import "github.com/fatih/structs"

// asTelemetryRow converts a field-compatible struct into the internal row
// shape. Callers hand in their own record types, so conversion goes through
// the field map rather than a hard type assertion.
func asTelemetryRow(entry any) (telemetryRow, bool) {
	if row, ok := entry.(telemetryRow); ok {
		return row, true
	}

	if !structs.IsStruct(entry) {
		return telemetryRow{}, false
	}

	m := structs.Map(entry)

	tick, ok := m["Tick"].(uint64)
	if !ok {
		return telemetryRow{}, false
	}

	ppCO2, ok := m["PpCO2"].(float64)
	if !ok {
		return telemetryRow{}, false
	}

	caution, ok := m["Caution"].(bool)
	if !ok {
		return telemetryRow{}, false
	}

	warning, ok := m["Warning"].(bool)
	if !ok {
		return telemetryRow{}, false
	}

	valid, ok := m["Valid"].(bool)
	if !ok {
		return telemetryRow{}, false
	}

	timestamp, ok := m["Timestamp"].(string)
	if !ok {
		return telemetryRow{}, false
	}

	return telemetryRow{
		Tick:      tick,
		PpCO2:     ppCO2,
		Caution:   caution,
		Warning:   warning,
		Valid:     valid,
		Timestamp: timestamp,
	}, true
}
