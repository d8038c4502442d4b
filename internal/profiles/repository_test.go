package profiles

import "testing"

func strPtr(s string) *string { return &s }

func TestFullAddress(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    string
	}{
		{
			name: "complete address",
			profile: Profile{
				Address:    strPtr("12 Pine St"),
				City:       strPtr("Halifax"),
				Province:   strPtr("NS"),
				PostalCode: strPtr("B3J 1A1"),
			},
			want: "12 Pine St, Halifax, NS B3J 1A1",
		},
		{
			name: "street only",
			profile: Profile{
				Address: strPtr("12 Pine St"),
			},
			want: "12 Pine St",
		},
		{
			name: "missing postal code",
			profile: Profile{
				Address:  strPtr("12 Pine St"),
				City:     strPtr("Halifax"),
				Province: strPtr("NS"),
			},
			want: "12 Pine St, Halifax, NS",
		},
		{
			name:    "no address on file",
			profile: Profile{City: strPtr("Halifax")},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.profile.FullAddress(); got != tt.want {
				t.Errorf("FullAddress() = %q, want %q", got, tt.want)
			}
		})
	}
}
