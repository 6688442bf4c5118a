package services

import "testing"

func TestSeverityTierFor(t *testing.T) {
	tests := []struct {
		total int
		want  SeverityTier
	}{
		{total: 0, want: SeverityLow},
		{total: 10, want: SeverityLow},
		{total: 11, want: SeverityModerate},
		{total: 20, want: SeverityModerate},
		{total: 21, want: SeverityHigh},
		{total: 37, want: SeverityHigh},
	}

	for _, tt := range tests {
		if got := SeverityTierFor(tt.total); got != tt.want {
			t.Fatalf("SeverityTierFor(%d) = %q, want %q", tt.total, got, tt.want)
		}
	}
}

func TestSeverityTierColor(t *testing.T) {
	if SeverityLow.Color() != "#22c55e" || SeverityModerate.Color() != "#eab308" || SeverityHigh.Color() != "#ef4444" {
		t.Fatal("unexpected tier colours")
	}
}
