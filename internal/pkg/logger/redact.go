package logger

// RedactToken masks a credential for safe logging.
// "EAABsbCS1iHgBAxyz" → "EAAB***"
// Short values (≤8 chars) are fully masked: "abc123" → "***"
func RedactToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) > 8 {
		return token[:4] + "***"
	}
	return "***"
}
