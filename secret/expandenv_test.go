package secret

import (
	"strings"
	"testing"
)

func TestExpandEnvStrict(t *testing.T) {
	t.Setenv("GATE_HOST", "gate.internal")

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "no variables",
			input: "plain",
			want:  "plain",
		},
		{
			name:  "braced variable",
			input: "https://${GATE_HOST}/jwks",
			want:  "https://gate.internal/jwks",
		},
		{
			name:  "escaped dollar",
			input: "pa$$word",
			want:  "pa$word",
		},
		{
			name:    "missing braced variable",
			input:   "${GATE_UNSET_VAR}",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandEnvStrict(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExpandEnvStrict() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ExpandEnvStrict() = %q, want %q", got, tt.want)
			}
			if err != nil && !strings.Contains(err.Error(), "GATE_UNSET_VAR") {
				t.Errorf("error %q does not name the missing variable", err)
			}
		})
	}
}
