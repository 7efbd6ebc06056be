package repository

import "strconv"

// nextSerial mimics a SERIAL column over string ids.
func nextSerial(ids []string) string {
	max := 0
	for _, id := range ids {
		if n, err := strconv.Atoi(id); err == nil && n > max {
			max = n
		}
	}
	return strconv.Itoa(max + 1)
}
