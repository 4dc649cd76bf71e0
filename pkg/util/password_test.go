package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordWithCost(t *testing.T) {
	tests := []struct {
		name     string
		password string
		cost     int
		wantCost int
	}{
		{
			name:     "Minimum cost",
			password: "Password123",
			cost:     bcrypt.MinCost,
			wantCost: bcrypt.MinCost,
		},
		{
			name:     "Cost below range falls back to default",
			password: "Password123",
			cost:     1,
			wantCost: DefaultBcryptCost,
		},
		{
			name:     "Long password",
			password: "this-is-a-long-password-with-special-chars!@#$%^&*()",
			cost:     bcrypt.MinCost,
			wantCost: bcrypt.MinCost,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPasswordWithCost(tt.password, tt.cost)

			assert.NoError(t, err)
			assert.NotEqual(t, tt.password, hash)
			assert.Contains(t, hash, "$2a$")

			cost, err := bcrypt.Cost([]byte(hash))
			assert.NoError(t, err)
			assert.Equal(t, tt.wantCost, cost)
		})
	}
}

func TestVerifyPassword(t *testing.T) {
	password := "MySecurePassword123"
	hash, err := HashPasswordWithCost(password, bcrypt.MinCost)
	assert.NoError(t, err)

	tests := []struct {
		name           string
		hashedPassword string
		password       string
		want           bool
	}{
		{
			name:           "Correct password",
			hashedPassword: hash,
			password:       password,
			want:           true,
		},
		{
			name:           "Incorrect password",
			hashedPassword: hash,
			password:       "WrongPassword1",
			want:           false,
		},
		{
			name:           "Empty password",
			hashedPassword: hash,
			password:       "",
			want:           false,
		},
		{
			name:           "Invalid hash",
			hashedPassword: "invalid-hash",
			password:       password,
			want:           false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyPassword(tt.hashedPassword, tt.password))
		})
	}
}

func TestHashPasswordConsistency(t *testing.T) {
	password := "TestPassword1"

	hash1, err1 := HashPasswordWithCost(password, bcrypt.MinCost)
	hash2, err2 := HashPasswordWithCost(password, bcrypt.MinCost)

	assert.NoError(t, err1)
	assert.NoError(t, err2)

	// Hashes should be different (bcrypt uses salt)
	assert.NotEqual(t, hash1, hash2)

	assert.True(t, VerifyPassword(hash1, password))
	assert.True(t, VerifyPassword(hash2, password))
}
