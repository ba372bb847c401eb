// Package filter builds table-store filter expressions. The filter language
// has no parameterized-query alternative, so every caller- or tenant-supplied
// value is routed through EscapeStringValue before interpolation. Filter
// construction for the registry and activity tables lives only here; building
// filter strings anywhere else is a defect.
package filter

import (
	"fmt"
	"strings"
)

// EscapeStringValue escapes a string for safe use inside a single-quoted
// filter literal. Single quotes are doubled; all other characters pass
// through unchanged.
func EscapeStringValue(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}

// ByPartition matches every row of a partition.
func ByPartition(partition string) string {
	return fmt.Sprintf("PartitionKey eq '%s'", EscapeStringValue(partition))
}

// ByPartitionAndProp matches rows of a partition whose property equals value.
func ByPartitionAndProp(partition, prop, value string) string {
	return fmt.Sprintf("PartitionKey eq '%s' and %s eq '%s'",
		EscapeStringValue(partition), prop, EscapeStringValue(value))
}
