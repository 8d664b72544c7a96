package redis

import (
	"context"
	"testing"
)

func TestConnect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		wantNil bool
		wantErr bool
	}{
		{name: "empty url disables redis", url: "", wantNil: true},
		{name: "malformed url", url: "not-a-url://", wantNil: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client, err := Connect(context.Background(), tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Connect() error = %v, wantErr %v", err, tt.wantErr)
			}
			if (client == nil) != tt.wantNil {
				t.Errorf("Connect() client = %v, wantNil %v", client, tt.wantNil)
			}
		})
	}
}
