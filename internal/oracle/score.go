package oracle

// NormalizeScore maps a raw similarity score onto [0,1] regardless of the
// scale the service reports in (0-1, 0-100, or 0-1000). It is idempotent:
// a score already in [0,1] passes through unchanged, so applying it twice
// cannot shrink a value. This is the single normalization point; nothing
// downstream of the oracle boundary re-normalizes.
func NormalizeScore(raw float64) float64 {
	switch {
	case raw <= 0:
		return 0
	case raw <= 1:
		return raw
	case raw <= 100:
		return raw / 100
	case raw <= 1000:
		return raw / 1000
	default:
		return 1
	}
}
