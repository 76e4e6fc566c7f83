package group

import "strings"

// ParseConfigLine parses the classic `custom_proxy_group` grammar: a
// backtick-separated `name`type`member`member...` line. The group
// type token is kept for parity with the original format but this
// resolver does not itself interpret url-test/fallback timing
// parameters, only the member list; the generator layer consumes Type.
func ParseConfigLine(line string) (Config, bool) {
	fields := strings.Split(line, "`")
	if len(fields) < 3 {
		return Config{}, false
	}
	cfg := Config{Name: fields[0], Type: fields[1]}
	members := fields[2:]
	for _, m := range members {
		if m == "" {
			continue
		}
		// url-test/fallback groups carry trailing timing parameters
		// (interval, tolerance) as bare numeric tokens; these aren't
		// member expressions.
		if isNumeric(m) {
			continue
		}
		cfg.Members = append(cfg.Members, m)
	}
	return cfg, true
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
