package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEndpoint(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"https", "https://sync.example.com/api/v1/sync", false},
		{"http", "http://localhost:8080/api/v1/sync", false},
		{"empty", "", true},
		{"whitespace", "   ", true},
		{"no scheme", "sync.example.com", true},
		{"bad scheme", "ftp://sync.example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Endpoint(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOwnerLogin(t *testing.T) {
	assert.NoError(t, OwnerLogin("acme"))
	assert.Error(t, OwnerLogin(""))
	assert.Error(t, OwnerLogin("acme/repo"))
}

func TestRepoName(t *testing.T) {
	assert.NoError(t, RepoName("design-sync"))
	assert.Error(t, RepoName(""))
	assert.Error(t, RepoName("acme/design-sync"))
}
