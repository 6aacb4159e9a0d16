package validation

import "strings"

var (
	gmailDomains = map[string]bool{
		"gmail.com":      true,
		"googlemail.com": true,
	}

	plusTagDomains = map[string]bool{
		"hotmail.com":   true,
		"hotmail.co.uk": true,
		"hotmail.de":    true,
		"hotmail.es":    true,
		"hotmail.fr":    true,
		"live.com":      true,
		"live.co.uk":    true,
		"msn.com":       true,
		"outlook.com":   true,
		"outlook.es":    true,
		"outlook.de":    true,
		"icloud.com":    true,
		"me.com":        true,
		"mac.com":       true,
	}

	dashTagDomains = map[string]bool{
		"yahoo.com":      true,
		"yahoo.co.uk":    true,
		"yahoo.es":       true,
		"yahoo.fr":       true,
		"ymail.com":      true,
		"rocketmail.com": true,
	}
)

// NormalizeEmail canonicalizes an address that already passed validation.
// The address is lowercased, and for well-known providers the sub-address
// tag is dropped; gmail also ignores dots in the local part.
func NormalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))

	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return email
	}
	local, domain := email[:at], email[at+1:]

	switch {
	case gmailDomains[domain]:
		domain = "gmail.com"
		local = cutTag(local, "+")
		local = strings.ReplaceAll(local, ".", "")
	case plusTagDomains[domain]:
		local = cutTag(local, "+")
	case dashTagDomains[domain]:
		if i := strings.LastIndex(local, "-"); i > 0 {
			local = local[:i]
		}
	}

	if local == "" {
		return email
	}
	return local + "@" + domain
}

func cutTag(local, sep string) string {
	before, _, _ := strings.Cut(local, sep)
	return before
}
