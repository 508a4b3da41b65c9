package gateway

import "testing"

const cc = "55"

func TestResolveIdentityPhoneJid(t *testing.T) {
	key := &MessageKey{RemoteJid: "5511999887766@s.whatsapp.net", ID: "M1"}

	id := ResolveIdentity(key, "", cc)
	if id.Phone != "5511999887766" {
		t.Fatalf("Phone = %q, want 5511999887766", id.Phone)
	}
	if id.RemoteJID != "5511999887766@s.whatsapp.net" {
		t.Fatalf("RemoteJID = %q", id.RemoteJID)
	}
}

func TestResolveIdentityLidWithSenderPn(t *testing.T) {
	// anonymized primary id, alternate phone jid attached
	key := &MessageKey{
		RemoteJid: "123456789012345678@lid",
		SenderPn:  "5511988776655@s.whatsapp.net",
		ID:        "M2",
	}

	id := ResolveIdentity(key, "", cc)
	if id.Phone != "5511988776655" {
		t.Fatalf("Phone = %q, want phone from senderPn", id.Phone)
	}
	// opaque id stays the channel id even when the phone came from elsewhere
	if id.RemoteJID != "123456789012345678@lid" {
		t.Fatalf("RemoteJID = %q, want the lid", id.RemoteJID)
	}
}

func TestResolveIdentityLidOnly(t *testing.T) {
	key := &MessageKey{RemoteJid: "123456789012345678@lid", ID: "M3"}

	id := ResolveIdentity(key, "", cc)
	if id.Phone != "" {
		t.Fatalf("Phone = %q, an opaque id must never resolve to a phone", id.Phone)
	}
	if id.RemoteJID != "123456789012345678@lid" {
		t.Fatalf("RemoteJID = %q", id.RemoteJID)
	}
}

func TestResolveIdentityEnvelopeSenderFallback(t *testing.T) {
	key := &MessageKey{RemoteJid: "987654321098765432@lid", ID: "M4"}

	id := ResolveIdentity(key, "5521977665544@s.whatsapp.net", cc)
	if id.Phone != "5521977665544" {
		t.Fatalf("Phone = %q, want phone from envelope sender", id.Phone)
	}
}

func TestResolveIdentityGroupParticipant(t *testing.T) {
	key := &MessageKey{
		RemoteJid:   "120363041234567890@g.us",
		Participant: "5531966554433@s.whatsapp.net",
		ID:          "M5",
	}

	id := ResolveIdentity(key, "", cc)
	if id.Phone != "5531966554433" {
		t.Fatalf("Phone = %q, want the group participant's phone", id.Phone)
	}
}

func TestResolveIdentityNothing(t *testing.T) {
	id := ResolveIdentity(&MessageKey{ID: "M6"}, "", cc)
	if id.Phone != "" || id.RemoteJID != "" {
		t.Fatalf("got %+v, want empty identity", id)
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain number", "5511999887766", "5511999887766"},
		{"jid suffix stripped", "5511999887766@s.whatsapp.net", "5511999887766"},
		{"device suffix stripped", "5511999887766:12@s.whatsapp.net", "5511999887766"},
		{"formatting removed", "+55 (11) 99988-7766", "5511999887766"},
		{"country code added", "1199988776", "551199988776"},
		{"too short", "12345", ""},
		{"lid digit pattern rejected", "123456789012345678", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePhone(tt.raw, cc); got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestPhoneVariants(t *testing.T) {
	variants := PhoneVariants("5511999887766", cc)
	want := []string{"5511999887766", "11999887766", "+5511999887766"}
	if len(variants) != len(want) {
		t.Fatalf("got %d variants %v, want %d", len(variants), variants, len(want))
	}
	for i := range want {
		if variants[i] != want[i] {
			t.Errorf("variant[%d] = %q, want %q", i, variants[i], want[i])
		}
	}
}

func TestPhoneVariantsEmpty(t *testing.T) {
	if got := PhoneVariants("", cc); got != nil {
		t.Fatalf("PhoneVariants(\"\") = %v, want nil", got)
	}
}

func TestChannelDigits(t *testing.T) {
	if got := ChannelDigits("123456789012345678@lid"); got != "123456789012345678" {
		t.Fatalf("ChannelDigits = %q", got)
	}
	if got := ChannelDigits("5511999887766:3@s.whatsapp.net"); got != "5511999887766" {
		t.Fatalf("ChannelDigits = %q", got)
	}
}
