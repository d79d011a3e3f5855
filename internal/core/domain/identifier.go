package domain

import "strings"

// MaskIdentifier hides a login identifier for logging.
//
//	all digits  -> first 3 + "******" + last 2
//	email       -> first 2 of the local part + "****@" + domain
//	anything else -> "****"
func MaskIdentifier(id string) string {
	if id == "" {
		return ""
	}
	if isDigits(id) {
		if len(id) <= 5 {
			return "******"
		}
		return id[:3] + "******" + id[len(id)-2:]
	}

	local, domain, ok := strings.Cut(id, "@")
	if !ok || domain == "" {
		return "****"
	}
	if len(local) > 2 {
		local = local[:2]
	}
	return local + "****@" + domain
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
