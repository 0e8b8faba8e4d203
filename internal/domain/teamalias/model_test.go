package teamalias

import "testing"

func TestNormalizeRawName(t *testing.T) {
	t.Parallel()

	if got := NormalizeRawName("  Bayern   MÜNIH "); got != "bayern münih" {
		t.Fatalf("unexpected key: %q", got)
	}
}

func TestAliasValidate(t *testing.T) {
	t.Parallel()

	valid := Alias{RawName: "Dortmund", CanonicalTeamID: "sportmonks:68", Confidence: 0.95}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	invalid := valid
	invalid.Confidence = 1.2
	if err := invalid.Validate(); err == nil {
		t.Fatalf("expected confidence validation error")
	}

	invalid = valid
	invalid.RawName = "  "
	if err := invalid.Validate(); err == nil {
		t.Fatalf("expected raw name validation error")
	}
}
