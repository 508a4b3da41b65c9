package gateway

import (
	"strings"
)

// ===========================================================================
// Identity resolution
// Extracts a canonical phone number and a storable channel id from a
// message payload. The provider obfuscates some senders behind opaque
// "@lid" identifiers; those must never be mistaken for phone numbers or
// they corrupt contact identity permanently.
// ===========================================================================

// lidSuffix marks an opaque, anonymized channel identifier
const lidSuffix = "@lid"

// phoneSuffix is the jid suffix for regular phone-number identities
const phoneSuffix = "@s.whatsapp.net"

// Identity is the result of resolving a payload's sender
type Identity struct {
	// Phone canonical phone (digits with country code), empty when the
	// payload carried no resolvable number
	Phone string

	// RemoteJID best-effort storable channel id; never empty when the
	// payload carried any identifier at all
	RemoteJID string
}

// ResolveIdentity extracts the sender identity from a message payload.
// Candidate fields are tried in fixed priority order: the primary remote
// identifier (unless opaque), then the alternate phone jid, then the group
// participant, then the envelope-level sender. The first candidate that
// normalizes to a valid phone wins. Opaque ids are skipped as phone
// candidates but still serve as the storable channel id when nothing
// better exists.
func ResolveIdentity(key *MessageKey, sender, defaultCC string) Identity {
	var candidates []string
	if key != nil {
		candidates = append(candidates, key.RemoteJid, key.SenderPn, key.Participant)
	}
	candidates = append(candidates, sender)

	var phone, jid string
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if jid == "" {
			jid = c
		}
		if phone != "" {
			continue
		}
		if strings.HasSuffix(c, lidSuffix) {
			// opaque id: usable as channel id, never as a phone
			continue
		}
		phone = NormalizePhone(c, defaultCC)
	}

	if jid == "" && phone != "" {
		jid = phone + phoneSuffix
	}

	return Identity{Phone: phone, RemoteJID: jid}
}

// NormalizePhone reduces a raw identifier to a canonical phone number.
// Returns "" when the input cannot be a phone: fewer than 10 digits, or
// the digit pattern of an opaque id that slipped through (leading "1"
// with more than 13 digits). Valid numbers without a country code gain
// the default prefix.
func NormalizePhone(raw, defaultCC string) string {
	// jid form: keep only the user part
	if at := strings.Index(raw, "@"); at >= 0 {
		raw = raw[:at]
	}
	// group/device suffixes ("5511...:12") end the number
	if colon := strings.Index(raw, ":"); colon >= 0 {
		raw = raw[:colon]
	}

	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if len(digits) < 10 {
		return ""
	}
	if strings.HasPrefix(digits, "1") && len(digits) > 13 {
		// opaque id masquerading as a number
		return ""
	}
	if !strings.HasPrefix(digits, defaultCC) {
		digits = defaultCC + digits
	}
	return digits
}

// ChannelDigits returns the raw digits of a jid's user part without any
// phone validation. Last-resort lookup key for contacts stored before
// their phone could be resolved.
func ChannelDigits(jid string) string {
	if at := strings.Index(jid, "@"); at >= 0 {
		jid = jid[:at]
	}
	if colon := strings.Index(jid, ":"); colon >= 0 {
		jid = jid[:colon]
	}
	var b strings.Builder
	for _, r := range jid {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PhoneVariants returns the lookup variants for a canonical phone, in
// priority order: as-is, country code stripped, "+"-prefixed. Older rows
// were written before normalization settled, so lookups try all three.
func PhoneVariants(phone, defaultCC string) []string {
	if phone == "" {
		return nil
	}
	variants := []string{phone}
	if strings.HasPrefix(phone, defaultCC) && len(phone) > len(defaultCC) {
		variants = append(variants, phone[len(defaultCC):])
	}
	variants = append(variants, "+"+phone)
	return variants
}
