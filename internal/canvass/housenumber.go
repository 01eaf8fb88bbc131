package canvass

import "strings"

// BuildingIndex is the derived route-planning view of a zone's address list.
// It is recomputed in full from the inputs, never hand-edited.
type BuildingIndex struct {
	TotalBuildings   int      `json:"total_buildings"`
	ResidentialHomes int      `json:"residential_homes"`
	Addresses        []string `json:"addresses"`
	Coordinates      []string `json:"coordinates"`
	OddHouseNumbers  []int64  `json:"odd_house_numbers"`
	EvenHouseNumbers []int64  `json:"even_house_numbers"`
}

// Range is a min/max pair over one parity partition.
type Range struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// HouseNumberStats summarizes a zone's parity partitions for route planning.
// Range fields are present only when the respective partition is non-empty.
type HouseNumberStats struct {
	Total     int    `json:"total"`
	OddCount  int    `json:"odd_count"`
	EvenCount int    `json:"even_count"`
	OddRange  *Range `json:"odd_range,omitempty"`
	EvenRange *Range `json:"even_range,omitempty"`
}

// ExtractHouseNumber takes the leading run of decimal digits of a trimmed
// address string. ok is false when the string is empty or does not start
// with a digit.
func ExtractHouseNumber(address string) (n int64, ok bool) {
	s := strings.TrimSpace(address)
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		n = n*10 + int64(s[i]-'0')
		i++
	}
	if i == 0 {
		return 0, false
	}
	return n, true
}

// CategorizeHouseNumbers extracts a house number per address, drops addresses
// without one, and partitions the rest by parity. Order within each partition
// follows input order.
func CategorizeHouseNumbers(addresses []string) (odd, even []int64) {
	for _, addr := range addresses {
		n, ok := ExtractHouseNumber(addr)
		if !ok {
			continue
		}
		if n%2 == 1 {
			odd = append(odd, n)
		} else {
			even = append(even, n)
		}
	}
	return odd, even
}

// ProcessBuildingData builds the full index for a zone's address list.
// Addresses and coordinates are echoed 1:1; keeping them the same length is
// the caller's responsibility.
func ProcessBuildingData(addresses, coordinates []string) BuildingIndex {
	odd, even := CategorizeHouseNumbers(addresses)
	return BuildingIndex{
		TotalBuildings:   len(addresses),
		ResidentialHomes: len(odd) + len(even),
		Addresses:        addresses,
		Coordinates:      coordinates,
		OddHouseNumbers:  odd,
		EvenHouseNumbers: even,
	}
}

// GetHouseNumberStats summarizes the parity partitions produced by
// CategorizeHouseNumbers.
func GetHouseNumberStats(odd, even []int64) HouseNumberStats {
	stats := HouseNumberStats{
		Total:     len(odd) + len(even),
		OddCount:  len(odd),
		EvenCount: len(even),
	}
	if len(odd) > 0 {
		stats.OddRange = rangeOf(odd)
	}
	if len(even) > 0 {
		stats.EvenRange = rangeOf(even)
	}
	return stats
}

func rangeOf(nums []int64) *Range {
	r := &Range{Min: nums[0], Max: nums[0]}
	for _, n := range nums[1:] {
		if n < r.Min {
			r.Min = n
		}
		if n > r.Max {
			r.Max = n
		}
	}
	return r
}
