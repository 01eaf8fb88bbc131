package canvass

import (
	"strings"

	"golang.org/x/text/cases"
)

var keyFolder = cases.Fold()

// BuildingKey derives the stable identifier that keys canvassing status
// entries: the case-folded, whitespace-collapsed address, or the coordinate
// string prefixed with "@" when the address is blank.
func BuildingKey(address, coordinate string) string {
	folded := keyFolder.String(strings.TrimSpace(address))
	key := strings.Join(strings.Fields(folded), " ")
	if key == "" {
		return "@" + strings.TrimSpace(coordinate)
	}
	return key
}

// buildingKeys enumerates the valid keys for a zone's current index.
func buildingKeys(z *Zone) map[string]struct{} {
	keys := make(map[string]struct{}, len(z.Addresses))
	for i, addr := range z.Addresses {
		coord := ""
		if i < len(z.Coordinates) {
			coord = z.Coordinates[i]
		}
		keys[BuildingKey(addr, coord)] = struct{}{}
	}
	return keys
}
