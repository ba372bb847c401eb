package tablestore

import (
	"fmt"
	"strings"
)

// condition is a single `Prop eq 'value'` comparison.
type condition struct {
	prop  string
	value string
}

// parseFilter parses a conjunction of equality comparisons:
//
//	PartitionKey eq 'ThirdParty' and ContainerName eq 'sft-acme'
//
// Values are single-quoted with '' as the escaped quote. Only `eq` and `and`
// are supported; that is all the registry and activity queries use.
func parseFilter(filter string) ([]condition, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil, nil
	}

	var conds []condition
	rest := filter
	for {
		cond, remainder, err := parseCondition(rest)
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)

		remainder = strings.TrimLeft(remainder, " ")
		if remainder == "" {
			return conds, nil
		}
		after, ok := strings.CutPrefix(remainder, "and ")
		if !ok {
			return nil, fmt.Errorf("expected 'and' near %q", remainder)
		}
		rest = strings.TrimLeft(after, " ")
	}
}

func parseCondition(s string) (condition, string, error) {
	prop, rest, found := strings.Cut(s, " eq ")
	if !found {
		return condition{}, "", fmt.Errorf("expected 'eq' comparison near %q", s)
	}
	prop = strings.TrimSpace(prop)
	if prop == "" || strings.ContainsAny(prop, " '") {
		return condition{}, "", fmt.Errorf("invalid property name %q", prop)
	}

	value, remainder, err := parseQuoted(strings.TrimLeft(rest, " "))
	if err != nil {
		return condition{}, "", err
	}
	return condition{prop: prop, value: value}, remainder, nil
}

// parseQuoted consumes a single-quoted literal, treating '' as an escaped
// quote, and returns the decoded value plus the unconsumed remainder.
func parseQuoted(s string) (string, string, error) {
	if !strings.HasPrefix(s, "'") {
		return "", "", fmt.Errorf("expected quoted value near %q", s)
	}
	var b strings.Builder
	i := 1
	for i < len(s) {
		if s[i] != '\'' {
			b.WriteByte(s[i])
			i++
			continue
		}
		if i+1 < len(s) && s[i+1] == '\'' {
			b.WriteByte('\'')
			i += 2
			continue
		}
		return b.String(), s[i+1:], nil
	}
	return "", "", fmt.Errorf("unterminated quoted value near %q", s)
}

// matches reports whether the row satisfies every condition. PartitionKey and
// RowKey are addressable alongside ordinary properties.
func matches(row Row, conds []condition) bool {
	for _, c := range conds {
		var got string
		switch c.prop {
		case "PartitionKey":
			got = row.PartitionKey
		case "RowKey":
			got = row.RowKey
		default:
			got = row.Props[c.prop]
		}
		if got != c.value {
			return false
		}
	}
	return true
}
