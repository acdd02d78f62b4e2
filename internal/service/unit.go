package service

import "strings"

// serviceUnitName appends ".service" unless unit already has a type suffix.
func serviceUnitName(unit string) string {
	for _, suffix := range []string{".service", ".target", ".socket", ".scope"} {
		if strings.HasSuffix(unit, suffix) {
			return unit
		}
	}
	return unit + ".service"
}
