package committees

// WeightThresholdToBuildQuorum returns the weight minimally required to
// certify a session output, i.e. the smallest integer t with 2 * totalWeight / 3 < t.
func WeightThresholdToBuildQuorum(totalWeight uint64) uint64 {
	// t = 2 * Floor(totalWeight/3) + max(1, totalWeight mod 3)
	floorOneThird := totalWeight / 3
	res := 2 * floorOneThird
	divRemainder := totalWeight % 3
	if divRemainder <= 1 {
		res = res + 1
	} else {
		res += divRemainder
	}
	return res
}

