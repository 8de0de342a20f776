package wifi

import (
	"errors"
	"testing"
)

func TestParsePayload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		ssid    string
		psk     string
	}{
		{
			name:    "Full payload",
			payload: "WIFI:S:test-ssid;T:WPA;P:00000000000000000;H:false;;",
			ssid:    "test-ssid",
			psk:     "00000000000000000",
		},
		{
			name:    "No prefix",
			payload: "S:test-ssid;P:hunter22",
			ssid:    "test-ssid",
			psk:     "hunter22",
		},
		{
			name:    "Reversed order",
			payload: "WIFI:P:hunter22;S:test-ssid;;",
			ssid:    "test-ssid",
			psk:     "hunter22",
		},
		{
			name:    "Colon in value",
			payload: "WIFI:S:cafe:5g;P:a:b:c;;",
			ssid:    "cafe:5g",
			psk:     "a:b:c",
		},
		{
			name:    "Tokens without colon are dropped",
			payload: "WIFI:garbage;S:net;;;P:pass;nonsense;;",
			ssid:    "net",
			psk:     "pass",
		},
		{
			name:    "Duplicate key last wins",
			payload: "WIFI:S:first;S:second;P:pass;;",
			ssid:    "second",
			psk:     "pass",
		},
		{
			name:    "Non-ASCII SSID",
			payload: "WIFI:S:Café ☕;P:pass;;",
			ssid:    "Café ☕",
			psk:     "pass",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePayload(tt.payload)
			if err != nil {
				t.Fatalf("ParsePayload(%q) failed: %v", tt.payload, err)
			}
			if string(p.SSID()) != tt.ssid {
				t.Errorf("SSID = %q, want %q", p.SSID(), tt.ssid)
			}
			if p.ID() != tt.ssid {
				t.Errorf("ID = %q, want %q", p.ID(), tt.ssid)
			}
			if p.Passphrase() != tt.psk {
				t.Errorf("Passphrase = %q, want %q", p.Passphrase(), tt.psk)
			}
			if p.UUID() == "" {
				t.Error("UUID was not assigned")
			}
		})
	}
}

func TestParsePayload_Scenario(t *testing.T) {
	p, err := ParsePayload("WIFI:S:test-ssid;T:WPA;P:00000000000000000;H:false;;")
	if err != nil {
		t.Fatalf("ParsePayload failed: %v", err)
	}
	if string(p.SSID()) != "test-ssid" {
		t.Errorf("SSID = %q", p.SSID())
	}
	if p.Passphrase() != "00000000000000000" {
		t.Errorf("Passphrase = %q", p.Passphrase())
	}
	if p.KeyMgmt() != "wpa-psk" {
		t.Errorf("KeyMgmt = %q", p.KeyMgmt())
	}
	if p.IPv4Method() != "auto" {
		t.Errorf("IPv4Method = %q", p.IPv4Method())
	}
	if p.IPv6Method() != "ignore" {
		t.Errorf("IPv6Method = %q", p.IPv6Method())
	}
}

func TestParsePayload_MissingField(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		field   string
	}{
		{"Empty", "", "SSID"},
		{"Prefix only", "WIFI:;;", "SSID"},
		{"No SSID", "WIFI:T:WPA;P:pass;;", "SSID"},
		{"No SSID or passphrase", "WIFI:T:WPA;H:false;;", "SSID"},
		{"Empty SSID", "WIFI:S:;P:pass;;", "SSID"},
		{"No passphrase", "WIFI:S:net;T:WPA;;", "Passphrase"},
		{"Empty passphrase", "WIFI:S:net;P:;;", "Passphrase"},
		{"Lowercase keys", "WIFI:s:net;p:pass;;", "SSID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePayload(tt.payload)
			if err == nil {
				t.Fatalf("ParsePayload(%q) should have failed", tt.payload)
			}
			if !errors.Is(err, ErrMissingField) {
				t.Errorf("expected ErrMissingField, got %v", err)
			}
			var mf *MissingFieldError
			if !errors.As(err, &mf) {
				t.Fatalf("expected *MissingFieldError, got %T", err)
			}
			if mf.Field != tt.field {
				t.Errorf("Field = %q, want %q", mf.Field, tt.field)
			}
		})
	}
}

func TestParsePayload_FreshUUID(t *testing.T) {
	const payload = "WIFI:S:test-ssid;T:WPA;P:00000000000000000;H:false;;"
	a, err := ParsePayload(payload)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ParsePayload(payload)
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) {
		t.Errorf("profiles from the same payload differ: %+v vs %+v", a, b)
	}
	if a.UUID() == b.UUID() {
		t.Errorf("UUID reused across parses: %s", a.UUID())
	}
}

func TestPayloadFields_IgnoredKeys(t *testing.T) {
	fields := PayloadFields("WIFI:S:net;T:WPA;P:pass;H:true;;")
	if fields["T"] != "WPA" {
		t.Errorf("T = %q", fields["T"])
	}
	if fields["H"] != "true" {
		t.Errorf("H = %q", fields["H"])
	}
	if len(fields) != 4 {
		t.Errorf("expected 4 fields, got %d: %v", len(fields), fields)
	}
}

func TestEncodePayload(t *testing.T) {
	payload, err := EncodePayload("my net", "p:ss")
	if err != nil {
		t.Fatalf("EncodePayload failed: %v", err)
	}
	if payload != "WIFI:S:my net;T:WPA;P:p:ss;;" {
		t.Errorf("unexpected payload %q", payload)
	}

	p, err := ParsePayload(payload)
	if err != nil {
		t.Fatalf("ParsePayload(%q) failed: %v", payload, err)
	}
	if p.ID() != "my net" || p.Passphrase() != "p:ss" {
		t.Errorf("round trip changed values: %q / %q", p.ID(), p.Passphrase())
	}

	if _, err := EncodePayload("a;b", "pass"); !errors.Is(err, ErrUnencodable) {
		t.Errorf("expected ErrUnencodable, got %v", err)
	}
	if _, err := EncodePayload("net", ""); !errors.Is(err, ErrMissingField) {
		t.Errorf("expected ErrMissingField, got %v", err)
	}
}
