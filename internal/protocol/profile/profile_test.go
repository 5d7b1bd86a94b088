package profile_test

import (
	"testing"
	"time"

	"otr4/internal/crypto"
	"otr4/internal/domain/types"
	"otr4/internal/protocol/profile"
)

func makeIdentity(t *testing.T) types.Identity {
	t.Helper()
	lt, err := crypto.GenerateSigningKey()
	if err != nil {
		t.Fatalf("GenerateSigningKey(long-term): %v", err)
	}
	fk, err := crypto.GenerateSigningKey()
	if err != nil {
		t.Fatalf("GenerateSigningKey(forging): %v", err)
	}
	var seed [57]byte
	seed[0] = 0x7a

	return types.Identity{
		InstanceTag: 0x12345678,
		LongTerm:    lt,
		Forging:     fk,
		PrekeySeed:  seed,
	}
}

func TestClientProfile_RoundTrip(t *testing.T) {
	id := makeIdentity(t)
	now := time.Unix(1_700_000_000, 0)
	mask := types.VersionMask(0).WithVersion(types.Version4)

	p, err := profile.BuildClientProfile(id, mask, now, profile.DefaultLifetime)
	if err != nil {
		t.Fatalf("BuildClientProfile: %v", err)
	}
	if err := profile.VerifyClientProfile(p, id.InstanceTag, now); err != nil {
		t.Fatalf("VerifyClientProfile: %v", err)
	}
	if p.Versions != "4" {
		t.Fatalf("versions = %q, want %q", p.Versions, "4")
	}
}

func TestClientProfile_RejectsExpired(t *testing.T) {
	id := makeIdentity(t)
	now := time.Unix(1_700_000_000, 0)
	mask := types.VersionMask(0).WithVersion(types.Version4)

	p, err := profile.BuildClientProfile(id, mask, now, time.Hour)
	if err != nil {
		t.Fatalf("BuildClientProfile: %v", err)
	}
	future := now.Add(2 * time.Hour)
	if err := profile.VerifyClientProfile(p, id.InstanceTag, future); err == nil {
		t.Fatal("VerifyClientProfile accepted an expired profile")
	}
}

func TestClientProfile_RejectsWrongInstanceTag(t *testing.T) {
	id := makeIdentity(t)
	now := time.Unix(1_700_000_000, 0)
	mask := types.VersionMask(0).WithVersion(types.Version4)

	p, err := profile.BuildClientProfile(id, mask, now, profile.DefaultLifetime)
	if err != nil {
		t.Fatalf("BuildClientProfile: %v", err)
	}
	if err := profile.VerifyClientProfile(p, id.InstanceTag+1, now); err == nil {
		t.Fatal("VerifyClientProfile accepted a mismatched instance tag")
	}
}

func TestClientProfile_RejectsTamperedSignature(t *testing.T) {
	id := makeIdentity(t)
	now := time.Unix(1_700_000_000, 0)
	mask := types.VersionMask(0).WithVersion(types.Version4)

	p, err := profile.BuildClientProfile(id, mask, now, profile.DefaultLifetime)
	if err != nil {
		t.Fatalf("BuildClientProfile: %v", err)
	}
	p.Versions = "34"
	if err := profile.VerifyClientProfile(p, id.InstanceTag, now); err == nil {
		t.Fatal("VerifyClientProfile accepted a tampered body")
	}
}

func TestPrekeyProfile_RoundTrip(t *testing.T) {
	id := makeIdentity(t)
	now := time.Unix(1_700_000_000, 0)

	p, err := profile.BuildPrekeyProfile(id, now, profile.DefaultLifetime)
	if err != nil {
		t.Fatalf("BuildPrekeyProfile: %v", err)
	}
	if err := profile.VerifyPrekeyProfile(p, id.LongTerm.Pub, id.InstanceTag, now); err != nil {
		t.Fatalf("VerifyPrekeyProfile: %v", err)
	}
}
