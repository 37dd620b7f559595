package clientip

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRealClientIP(t *testing.T) {
	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{name: "public remote", remote: "203.0.113.7:5000", want: "203.0.113.7"},
		{
			name:    "public remote ignores forwarded header",
			remote:  "203.0.113.7:5000",
			headers: map[string]string{"X-Forwarded-For": "198.51.100.1"},
			want:    "203.0.113.7",
		},
		{
			name:    "proxy uses right-most forwarded hop",
			remote:  "127.0.0.1:5000",
			headers: map[string]string{"X-Forwarded-For": "1.1.1.1, 198.51.100.9"},
			want:    "198.51.100.9",
		},
		{
			name:    "proxy skips garbage hops",
			remote:  "10.0.0.2:5000",
			headers: map[string]string{"X-Forwarded-For": "198.51.100.9, unknown"},
			want:    "198.51.100.9",
		},
		{
			name:    "proxy falls back to x-real-ip",
			remote:  "10.0.0.2:5000",
			headers: map[string]string{"X-Real-IP": "198.51.100.3"},
			want:    "198.51.100.3",
		},
		{name: "proxy without headers", remote: "10.0.0.2:5000", want: "10.0.0.2"},
		{name: "no port", remote: "203.0.113.7", want: "203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, RealClientIP(r))
		})
	}
}
