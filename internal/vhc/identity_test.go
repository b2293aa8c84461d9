package vhc

import "testing"

func TestDisplayID(t *testing.T) {
	tests := []struct {
		name    string
		section string
		heading string
		index   int
		want    string
	}{
		{
			name:    "simple section and heading",
			section: "Brakes",
			heading: "Front pads",
			index:   0,
			want:    "brakes-front_pads-0",
		},
		{
			name:    "punctuation replaced",
			section: "Wheels & Tyres",
			heading: "N/S/F tyre",
			index:   2,
			want:    "wheels___tyres-n_s_f_tyre-2",
		},
		{
			name:    "already lower case",
			section: "underside",
			heading: "exhaust",
			index:   1,
			want:    "underside-exhaust-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DisplayID(tt.section, tt.heading, tt.index)
			if got != tt.want {
				t.Errorf("DisplayID() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveCanonicalID(t *testing.T) {
	aliases := map[string]string{
		"brakes-front_pads-0": "chk-123",
	}

	tests := []struct {
		name    string
		vhcID   string
		section string
		heading string
		index   int
		want    string
	}{
		{
			name:    "explicit vhc_id wins over alias",
			vhcID:   "chk-999",
			section: "Brakes",
			heading: "Front pads",
			index:   0,
			want:    "chk-999",
		},
		{
			name:    "alias map translates display id",
			section: "Brakes",
			heading: "Front pads",
			index:   0,
			want:    "chk-123",
		},
		{
			name:    "unaliased display id is its own canonical id",
			section: "Brakes",
			heading: "Rear pads",
			index:   1,
			want:    "brakes-rear_pads-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveCanonicalID(tt.vhcID, tt.section, tt.heading, tt.index, aliases)
			if got != tt.want {
				t.Errorf("ResolveCanonicalID() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveCanonicalIDDeterministic(t *testing.T) {
	aliases := map[string]string{"brakes-discs-0": "chk-7"}
	first := ResolveCanonicalID("", "Brakes", "Discs", 0, aliases)
	second := ResolveCanonicalID("", "Brakes", "Discs", 0, aliases)
	if first != second {
		t.Errorf("resolution not deterministic: %v vs %v", first, second)
	}
}
