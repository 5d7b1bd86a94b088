package wire_test

import (
	"bytes"
	"testing"

	"otr4/internal/domain/types"
	"otr4/internal/wire"
)

func TestBuildQueryMessage_V4Only(t *testing.T) {
	var mask types.VersionMask
	mask = mask.WithVersion(types.Version4)

	got := wire.BuildQueryMessage(mask, "And some random invitation text.")
	want := "?OTRv4? And some random invitation text."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestBuildQueryMessage_V34PrefersV4(t *testing.T) {
	var mask types.VersionMask
	mask = mask.WithVersion(types.Version3).WithVersion(types.Version4)

	got := wire.BuildQueryMessage(mask, "And some random invitation text.")
	want := "?OTRv43? And some random invitation text."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestParseQueryMessage_RoundTrip(t *testing.T) {
	var mask types.VersionMask
	mask = mask.WithVersion(types.Version3).WithVersion(types.Version4)

	built := wire.BuildQueryMessage(mask, "hello")
	got, ok := wire.ParseQueryMessage(built)
	if !ok {
		t.Fatal("ParseQueryMessage: no tag found")
	}
	if !got.Allows(types.Version3) || !got.Allows(types.Version4) {
		t.Fatalf("got mask %v, want {3,4}", got)
	}
}

func TestParseQueryMessage_NoTag(t *testing.T) {
	if _, ok := wire.ParseQueryMessage("just some plaintext"); ok {
		t.Fatal("expected no tag found")
	}
}

func TestBuildWhitespaceTag_V4Only(t *testing.T) {
	var mask types.VersionMask
	mask = mask.WithVersion(types.Version4)

	got := []byte(wire.BuildWhitespaceTag(mask, "And some random invitation text."))
	want := []byte{
		0x20, 0x09, 0x20, 0x20, 0x09, 0x09, 0x09, 0x09,
		0x20, 0x09, 0x20, 0x09, 0x20, 0x09, 0x20, 0x20,
		0x20, 0x09, 0x20, 0x09, 0x09, 0x20, 0x09, 0x20,
	}
	if !bytes.HasPrefix(got, want) {
		t.Fatalf("got prefix %x, want %x", got[:len(want)], want)
	}
	if string(got[len(want):]) != "And some random invitation text." {
		t.Fatalf("trailing text = %q, want original text", got[len(want):])
	}
}

func TestDetectWhitespaceTag_RoundTrip(t *testing.T) {
	var mask types.VersionMask
	mask = mask.WithVersion(types.Version4)

	built := wire.BuildWhitespaceTag(mask, "hello")
	got, ok := wire.DetectWhitespaceTag(built)
	if !ok {
		t.Fatal("DetectWhitespaceTag: no tag found")
	}
	if !got.Allows(types.Version4) {
		t.Fatalf("got mask %v, want v4", got)
	}
}

func TestDetectWhitespaceTag_NoTag(t *testing.T) {
	if _, ok := wire.DetectWhitespaceTag("just some plaintext"); ok {
		t.Fatal("expected no tag found")
	}
}

func TestArmor_RoundTrip(t *testing.T) {
	frame := []byte{0x00, 0x04, 0x01, 0x02, 0x03}
	armored := wire.Armor(frame)
	if armored[:5] != "?OTR:" || armored[len(armored)-1] != '.' {
		t.Fatalf("armored = %q, want ?OTR:...  envelope", armored)
	}

	got, err := wire.Unarmor(armored)
	if err != nil {
		t.Fatalf("Unarmor: %v", err)
	}
	if !bytes.Equal(got, frame) {
		t.Fatalf("got %x, want %x", got, frame)
	}
}

func TestUnarmor_RejectsMalformed(t *testing.T) {
	if _, err := wire.Unarmor("not an armor record"); err == nil {
		t.Fatal("expected error for malformed record")
	}
}
